package domain

import (
	"strings"
	"time"
)

// Notification is one outbound message to a tenant or operator.
type Notification struct {
	Kind      string    `json:"kind"`
	To        string    `json:"to"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NewNotification fills blank fields with placeholders and stamps the time.
func NewNotification(kind, to, message string) *Notification {
	n := &Notification{
		Kind:      strings.TrimSpace(kind),
		To:        strings.TrimSpace(to),
		Message:   strings.TrimSpace(message),
		Timestamp: time.Now().UTC(),
	}
	if n.Kind == "" {
		n.Kind = "generic"
	}
	if n.To == "" {
		n.To = "unknown"
	}
	if n.Message == "" {
		n.Message = "No message"
	}
	return n
}
