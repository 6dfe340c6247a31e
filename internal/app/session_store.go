// Package app holds the portal's application services: the session store,
// the view router and the desks that drive each dashboard.
package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"wellmatch/internal/domain"
)

// LogoutReason records why a session ended.
type LogoutReason int

const (
	ReasonRequested LogoutReason = iota
	ReasonUnauthorized
	ReasonExpired
)

// SessionChange is delivered to subscribers whenever the session is set or
// cleared. Session is nil for a logout.
type SessionChange struct {
	Session *domain.Session
	Reason  LogoutReason
}

// Strategy is the credential transport variant behind the store: a
// persisted bearer token or an HttpOnly cookie. Exactly one is in use.
type Strategy interface {
	Mode() domain.AuthMode
	// Restore recovers a session at startup. It returns nil, nil when no
	// credential exists.
	Restore(ctx context.Context, auth domain.AuthAPI) (*domain.Session, error)
	// Build turns a login response into a session without persisting it.
	Build(ctx context.Context, res domain.LoginResult) (*domain.Session, error)
	// Persist makes an accepted session durable and active for requests.
	Persist(ctx context.Context, s *domain.Session) error
	// Clear drops the credential from memory and durable storage.
	Clear(ctx context.Context) error
}

// Authorizer runs authenticated calls. Any 401/403 ends the session.
type Authorizer interface {
	Authorized(ctx context.Context, fn func(ctx context.Context) error) error
}

// SessionStore is the single owner of the current session.
type SessionStore struct {
	auth     domain.AuthAPI
	strategy Strategy
	log      *zap.Logger
	now      func() time.Time

	mu        sync.RWMutex
	current   *domain.Session
	listeners []func(SessionChange)
}

// NewSessionStore creates a store using the given auth endpoints and
// credential strategy.
func NewSessionStore(auth domain.AuthAPI, strategy Strategy, log *zap.Logger) *SessionStore {
	return &SessionStore{
		auth:     auth,
		strategy: strategy,
		log:      log.Named("session"),
		now:      time.Now,
	}
}

// Mode reports the credential transport in use.
func (s *SessionStore) Mode() domain.AuthMode { return s.strategy.Mode() }

// Current returns a copy of the active session, or nil.
func (s *SessionStore) Current() *domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

// Subscribe registers fn for session changes. Callbacks run synchronously
// after the store's lock is released.
func (s *SessionStore) Subscribe(fn func(SessionChange)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Restore recovers a session at startup. All failures yield a nil session;
// the returned error only explains why, for the user-facing message.
func (s *SessionStore) Restore(ctx context.Context) (*domain.Session, error) {
	sess, err := s.strategy.Restore(ctx, s.auth)
	if err == nil && sess != nil {
		switch {
		case sess.Expired(s.now()):
			err = domain.ErrSessionExpired
		default:
			err = sess.Identity.Authorize()
		}
	}
	if err != nil {
		s.log.Warn("restore failed", zap.Error(err))
		if cerr := s.strategy.Clear(ctx); cerr != nil {
			s.log.Warn("clear credential", zap.Error(cerr))
		}
		return nil, err
	}
	if sess == nil {
		s.log.Debug("no stored credential")
		return nil, nil
	}

	s.set(sess, ReasonRequested)
	s.log.Info("session restored",
		zap.String("mode", string(sess.Mode)),
		zap.String("role", string(sess.Identity.Role)),
		zap.Int64("user_id", sess.Identity.UserID))
	return sess, nil
}

// Login authenticates against the backend. A successful HTTP response whose
// identity may not use the portal is rejected and nothing is persisted.
func (s *SessionStore) Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	res, err := s.auth.Login(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	sess, err := s.strategy.Build(ctx, res)
	if err == nil {
		switch {
		case sess.Expired(s.now()):
			err = domain.ErrSessionExpired
		default:
			err = sess.Identity.Authorize()
		}
	}
	if err != nil {
		s.log.Warn("login rejected", zap.Error(err), zap.String("role", string(res.Identity.Role)))
		if cerr := s.strategy.Clear(ctx); cerr != nil {
			s.log.Warn("clear credential", zap.Error(cerr))
		}
		return nil, err
	}

	if err := s.strategy.Persist(ctx, sess); err != nil {
		return nil, fmt.Errorf("persist credential: %w", err)
	}

	s.set(sess, ReasonRequested)
	s.log.Info("logged in",
		zap.String("role", string(sess.Identity.Role)),
		zap.Int64("user_id", sess.Identity.UserID))
	return sess, nil
}

// Register creates a professional account. It never logs the user in.
func (s *SessionStore) Register(ctx context.Context, reg domain.Registration) (domain.RegistrationResult, error) {
	if err := reg.Validate(); err != nil {
		return domain.RegistrationResult{}, err
	}
	res, err := s.auth.Register(ctx, reg)
	if err != nil {
		return domain.RegistrationResult{}, fmt.Errorf("register: %w", err)
	}
	s.log.Info("registered", zap.Bool("requires_approval", res.RequiresApproval))
	return res, nil
}

// Logout ends the session. It cannot fail: the server-side invalidation is
// best effort and local state is always cleared.
func (s *SessionStore) Logout(ctx context.Context, reason LogoutReason) {
	if s.Current() != nil {
		if err := s.auth.Logout(ctx); err != nil {
			s.log.Warn("server logout failed", zap.Error(err))
		}
	}
	if err := s.strategy.Clear(ctx); err != nil {
		s.log.Warn("clear credential", zap.Error(err))
	}
	s.set(nil, reason)
	s.log.Info("logged out", zap.Int("reason", int(reason)))
}

// Authorized runs fn on behalf of the current session. An expired token or
// an authorization failure from fn ends the session; there is no refresh.
func (s *SessionStore) Authorized(ctx context.Context, fn func(ctx context.Context) error) error {
	sess := s.Current()
	if sess == nil {
		return domain.ErrNoSession
	}
	if sess.Expired(s.now()) {
		s.Logout(ctx, ReasonExpired)
		return domain.ErrSessionExpired
	}
	err := fn(ctx)
	if errors.Is(err, domain.ErrUnauthorized) {
		s.Logout(ctx, ReasonUnauthorized)
	}
	return err
}

func (s *SessionStore) set(sess *domain.Session, reason LogoutReason) {
	s.mu.Lock()
	s.current = sess
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	var cp *domain.Session
	if sess != nil {
		c := *sess
		cp = &c
	}
	for _, fn := range listeners {
		fn(SessionChange{Session: cp, Reason: reason})
	}
}
