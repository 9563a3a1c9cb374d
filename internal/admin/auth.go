// Package admin drives the staff panel: login, the paginated appointment
// list with filters and stats, and confirmed mutations.
package admin

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wolfman30/sly-barbershop/internal/session"
	"github.com/wolfman30/sly-barbershop/pkg/logging"
)

var (
	ErrInvalidCredentials = errors.New("admin: invalid credentials")
	ErrAuthDisabled       = errors.New("admin: login is not configured")
)

const adminSubject = "admin"

// Authenticator turns a password into a bearer token and checks tokens it
// issued earlier.
type Authenticator interface {
	Authenticate(ctx context.Context, password string) (string, error)
	Validate(token string) error
}

// SharedSecretAuthenticator compares the password against one configured
// secret and issues a signed session token. It is a placeholder for a real
// identity provider.
type SharedSecretAuthenticator struct {
	secret []byte
	issuer *session.Issuer
}

func NewSharedSecretAuthenticator(secret string, issuer *session.Issuer) *SharedSecretAuthenticator {
	return &SharedSecretAuthenticator{secret: []byte(secret), issuer: issuer}
}

func (a *SharedSecretAuthenticator) Authenticate(_ context.Context, password string) (string, error) {
	if len(a.secret) == 0 || a.issuer == nil {
		return "", ErrAuthDisabled
	}
	if subtle.ConstantTimeCompare([]byte(password), a.secret) != 1 {
		return "", ErrInvalidCredentials
	}
	return a.issuer.Issue(adminSubject)
}

func (a *SharedSecretAuthenticator) Validate(token string) error {
	if a.issuer == nil {
		return ErrAuthDisabled
	}
	claims, err := a.issuer.Verify(token)
	if err != nil {
		return err
	}
	if claims.Subject != adminSubject {
		return session.ErrInvalidToken
	}
	return nil
}

// SessionPhase is where a visitor is in the login flow.
type SessionPhase int

const (
	LoggedOut SessionPhase = iota
	LoggingIn
	LoggedIn
)

func (p SessionPhase) String() string {
	switch p {
	case LoggingIn:
		return "logging_in"
	case LoggedIn:
		return "logged_in"
	default:
		return "logged_out"
	}
}

// SessionState is a snapshot of the login form.
type SessionState struct {
	Phase SessionPhase
	// LoginError is shown inline under the password field.
	LoginError string
	// FocusPassword asks the view to focus the (cleared) password field.
	FocusPassword bool
}

// Session is one visitor's admin login. The token lives in the store, not
// in the struct, so it survives visitor eviction when the store is Redis.
type Session struct {
	visitorID string
	auth      Authenticator
	store     session.Store
	ttl       time.Duration
	logger    *logging.Logger

	mu    sync.Mutex
	state SessionState
	token string
}

// NewSession binds a visitor to an authenticator and token store. Stored
// tokens expire after ttl.
func NewSession(visitorID string, auth Authenticator, store session.Store, ttl time.Duration, logger *logging.Logger) *Session {
	if logger == nil {
		logger = logging.Default()
	}
	return &Session{
		visitorID: visitorID,
		auth:      auth,
		store:     store,
		ttl:       ttl,
		logger:    logger.Component("admin_session"),
	}
}

func (s *Session) Snapshot() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Token returns the bearer token of a logged-in session.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// LoggedIn reports whether the session holds a valid token.
func (s *Session) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Phase == LoggedIn
}

// Restore picks up a token stored by an earlier request.
func (s *Session) Restore(ctx context.Context) bool {
	token, err := s.store.Load(ctx, s.visitorID)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			s.logger.Warn("failed to load admin token", "error", err)
		}
		s.setLoggedOut()
		return false
	}
	if err := s.auth.Validate(token); err != nil {
		_ = s.store.Delete(ctx, s.visitorID)
		s.setLoggedOut()
		return false
	}
	s.mu.Lock()
	s.token = token
	s.state = SessionState{Phase: LoggedIn}
	s.mu.Unlock()
	return true
}

func (s *Session) setLoggedOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	if s.state.Phase == LoggedIn {
		s.state = SessionState{Phase: LoggedOut}
	}
}

// Login checks password and, on success, stores the issued token. A wrong
// password leaves the session logged out with an inline error.
func (s *Session) Login(ctx context.Context, password string) (SessionState, error) {
	s.mu.Lock()
	if s.state.Phase == LoggingIn {
		out := s.state
		s.mu.Unlock()
		return out, errors.New("admin: login already in progress")
	}
	s.state = SessionState{Phase: LoggingIn}
	s.mu.Unlock()

	token, err := s.auth.Authenticate(ctx, password)
	if err == nil {
		if serr := s.store.Save(ctx, s.visitorID, token, s.ttl); serr != nil {
			err = fmt.Errorf("admin: persist session: %w", serr)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		msg := "Incorrect password"
		if !errors.Is(err, ErrInvalidCredentials) {
			msg = "Login is unavailable right now. Please try again."
			s.logger.Error("admin login failed", "error", err)
		} else {
			s.logger.Info("admin login rejected")
		}
		s.token = ""
		s.state = SessionState{Phase: LoggedOut, LoginError: msg, FocusPassword: true}
		return s.state, err
	}
	s.token = token
	s.state = SessionState{Phase: LoggedIn}
	s.logger.Info("admin logged in")
	return s.state, nil
}

// Logout forgets the token.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.state = SessionState{Phase: LoggedOut}
	s.mu.Unlock()
	if err := s.store.Delete(ctx, s.visitorID); err != nil {
		return fmt.Errorf("admin: logout: %w", err)
	}
	return nil
}
