package posts

import (
	"context"
	"reflect"
	"time"

	"github.com/goliatone/go-errors"
)

// Auther is the session issuer: it turns verified credentials into signed
// tokens and tokens back into identities.
type Auther struct {
	provider     IdentityProvider
	users        UserFinder
	logger       Logger
	activity     ActivitySink
	tokenService TokenService
	timeout      time.Duration
}

// NewAuthenticator returns a new Authenticator. The signing secret is read
// from opts once and owned by the TokenService from then on.
func NewAuthenticator(provider IdentityProvider, users UserFinder, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		provider:     provider,
		users:        users,
		logger:       defLogger{},
		activity:     noopActivitySink{},
		tokenService: tokenService,
		timeout:      DefaultStoreTimeout,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = resolveLogger(logger)
	return s
}

// WithActivitySink sets the sink receiving login events
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activity = normalizeActivitySink(sink)
	return s
}

// WithStoreTimeout bounds credential and user lookups, zero disables it
func (s *Auther) WithStoreTimeout(d time.Duration) *Auther {
	s.timeout = d
	return s
}

// WithTokenService replaces the token service, mostly useful in tests
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login validates the payload shape, verifies the credentials and mints a token
func (s *Auther) Login(ctx context.Context, email, password string) (string, error) {
	req := LoginRequest{Email: email, Password: password}
	if err := req.Validate(); err != nil {
		return "", err
	}

	var identity Identity
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		identity, err = s.provider.VerifyIdentity(ctx, req.Email, req.Password)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.logger.Info("login rejected", "reason", "invalid credentials")
			recordActivity(ctx, s.activity, s.logger, ActivityEvent{
				EventType: ActivityEventLoginFailure,
				Metadata:  map[string]any{"email": normalizeEmail(req.Email)},
			})
			return "", ErrInvalidCredentials
		}
		if isTimeout(err) {
			s.logger.Error("login verify identity timed out", "error", err, "timeout", s.timeout)
			return "", ErrServerError
		}
		s.logger.Error("login verify identity error", "error", err)
		return "", err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("login identity is nil or zero value")
		return "", ErrInvalidCredentials
	}

	token, err := s.tokenService.Generate(identity)
	if err != nil {
		s.logger.Error("login token generation failed", "error", err)
		return "", err
	}

	s.logger.Debug("login succeeded", "user_id", identity.ID())
	recordActivity(ctx, s.activity, s.logger, ActivityEvent{
		EventType: ActivityEventLoginSuccess,
		ActorID:   identity.ID(),
	})

	return token, nil
}

// SessionFromToken validates a raw token
func (s *Auther) SessionFromToken(raw string) (AuthClaims, error) {
	return s.tokenService.Validate(raw)
}

// IdentityFromClaims loads the user referenced by verified claims
func (s *Auther) IdentityFromClaims(ctx context.Context, claims AuthClaims) (*User, error) {
	if claims == nil {
		return nil, ErrUnauthenticated
	}

	uid, err := parseID(claims.UserID(), ErrInvalidToken)
	if err != nil {
		return nil, err
	}

	var user *User
	err = s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.users.GetByID(ctx, uid)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		if isTimeout(err) {
			s.logger.Error("identity from claims lookup timed out", "error", err, "timeout", s.timeout)
			return nil, ErrServerError
		}
		s.logger.Error("identity from claims lookup failed", "error", err)
		return nil, err
	}

	return user, nil
}

func (s *Auther) withTimeout(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return fn(ctx)
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

var _ Authenticator = (*Auther)(nil)
