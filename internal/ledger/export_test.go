package ledger

// WithReceiptNumbers replaces the receipt number generator.
func (s *Service) WithReceiptNumbers(next func() string) *Service {
	s.numbers = next
	return s
}

var NewReceiptNumber = newReceiptNumber
