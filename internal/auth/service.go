package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/leasedesk/internal/domain"
)

// Sentinel errors for the auth package.
var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrEmailTaken         = errors.New("auth: email already exists")
)

// Service signs users up and in, and resolves request identities.
type Service struct {
	users      domain.UserRepository
	sessions   domain.SessionStore
	jwtSecret  string
	tokenTTL   time.Duration
	sessionTTL time.Duration
}

// NewService creates a new auth service.
func NewService(users domain.UserRepository, sessions domain.SessionStore, jwtSecret string, tokenTTL, sessionTTL time.Duration) *Service {
	return &Service{
		users:      users,
		sessions:   sessions,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
		sessionTTL: sessionTTL,
	}
}

// SessionTTL is the lifetime of sessions started by the service.
func (s *Service) SessionTTL() time.Duration { return s.sessionTTL }

type SignupRequest struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// Signup creates a user. Choosing the admin role requires an admin caller,
// except for the very first account.
func (s *Service) Signup(ctx context.Context, caller *domain.Principal, req SignupRequest) (*domain.User, error) {
	user, err := domain.NewUser(req.Name, req.Email, req.Role)
	if err != nil {
		return nil, fmt.Errorf("auth.Signup: %w", err)
	}
	if len(req.Password) < minPasswordLen {
		return nil, fmt.Errorf("auth.Signup: %w", domain.Invalid("password", "must be at least 6 characters"))
	}

	existing, err := s.users.GetByEmail(ctx, user.Email)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("auth.Signup: %w", ErrEmailTaken)
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("auth.Signup: %w", err)
	}

	user.PasswordHash, err = HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("auth.Signup: %w", err)
	}

	if user.Role == domain.RoleAdmin && !caller.HasRole(domain.RoleAdmin) {
		created, err := s.users.CreateIfEmpty(ctx, user)
		if err != nil {
			return nil, fmt.Errorf("auth.Signup: %w", signupError(err))
		}
		if !created {
			return nil, fmt.Errorf("auth.Signup: admin role: %w", domain.ErrForbidden)
		}
		return user, nil
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("auth.Signup: %w", signupError(err))
	}

	return user, nil
}

// signupError reports a unique violation on insert as a taken email.
func signupError(err error) error {
	if errors.Is(err, domain.ErrConflict) {
		return ErrEmailTaken
	}
	return err
}

// LoginResult is a successful login: the user, a bearer token and a new
// server-side session id.
type LoginResult struct {
	User      *domain.User
	Token     string
	SessionID string
}

// Login validates email/password, issues a JWT and starts a session.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("auth.Login: %w", err)
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return nil, fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	token, err := IssueToken(s.jwtSecret, user.Principal(), s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth.Login: %w", err)
	}

	sessionID, err := s.StartSession(ctx, user.Principal())
	if err != nil {
		return nil, fmt.Errorf("auth.Login: %w", err)
	}

	return &LoginResult{User: user, Token: token, SessionID: sessionID}, nil
}

// StartSession stores p under a fresh session id and returns the id.
func (s *Service) StartSession(ctx context.Context, p *domain.Principal) (string, error) {
	id := uuid.NewString()
	if err := s.sessions.Save(ctx, id, p, s.sessionTTL); err != nil {
		return "", fmt.Errorf("auth.StartSession: %w", err)
	}
	return id, nil
}

// Logout destroys the session. Unknown ids are not an error.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("auth.Logout: %w", err)
	}
	return nil
}

// EndUserSessions ends every session held by the user. Callers use it when a
// user's role or email changes or the account is deleted.
func (s *Service) EndUserSessions(ctx context.Context, userID int64) error {
	if err := s.sessions.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("auth.EndUserSessions: %w", err)
	}
	return nil
}

// Resolve identifies the caller from a session id or, failing that, a
// bearer token. It returns nil for anonymous or unverifiable requests and
// never fails the request itself.
func (s *Service) Resolve(ctx context.Context, sessionID, bearer string) *domain.Principal {
	if sessionID != "" {
		p, err := s.sessions.Get(ctx, sessionID)
		if err == nil {
			return p
		}
		if !errors.Is(err, domain.ErrNotFound) {
			log.Debug().Err(err).Msg("auth: session lookup failed")
		}
	}

	bearer = strings.TrimSpace(bearer)
	if bearer == "" {
		return nil
	}

	claims, err := ValidateToken(s.jwtSecret, bearer)
	if err != nil {
		log.Debug().Err(err).Msg("auth: bearer rejected")
		return nil
	}

	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(claims.Email))
	if err != nil {
		log.Debug().Err(err).Str("email", claims.Email).Msg("auth: bearer user lookup failed")
		return nil
	}

	return user.Principal()
}
