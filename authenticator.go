package blog

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LoginResult is returned by a successful login
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}

// AuthService registers users, exchanges credentials for tokens and
// resolves tokens back to users.
type AuthService struct {
	activityRecorder
	users  UserStore
	hasher PasswordHasher
	tokens TokenService
	logger Logger
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService returns a new AuthService
func NewAuthService(users UserStore, cfg Config) *AuthService {
	return &AuthService{
		activityRecorder: newActivityRecorder(),
		users:            users,
		hasher:           NewBcryptHasher(cfg.GetSaltRounds()),
		tokens: NewTokenService(
			[]byte(cfg.GetSigningKey()),
			cfg.GetTokenExpiration(),
			cfg.GetIssuer(),
			defLogger{},
		),
		logger: defLogger{},
		now:    time.Now,
	}
}

func (s *AuthService) WithLogger(logger Logger) *AuthService {
	if logger != nil {
		s.logger = logger
		s.activityRecorder.logger = logger
		if tokens, ok := s.tokens.(*TokenServiceImpl); ok {
			tokens.WithLogger(logger)
		}
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *AuthService) WithActivitySink(sink ActivitySink) *AuthService {
	s.sink = normalizeActivitySink(sink)
	return s
}

func (s *AuthService) WithPasswordHasher(hasher PasswordHasher) *AuthService {
	if hasher != nil {
		s.hasher = hasher
	}
	return s
}

func (s *AuthService) WithTokenService(tokens TokenService) *AuthService {
	if tokens != nil {
		s.tokens = tokens
	}
	return s
}

// TokenService returns the TokenService instance used by this service
func (s *AuthService) TokenService() TokenService {
	return s.tokens
}

// Register creates a new account. Username and email must both be unused.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*User, error) {
	input.normalize()
	if err := validationError(input.Validate()); err != nil {
		return nil, err
	}

	_, err := s.users.FindByUsernameOrEmail(ctx, input.Username, input.Email)
	switch {
	case err == nil:
		return nil, ErrUserConflict
	case !errors.Is(err, ErrRecordNotFound):
		return nil, storeError(err, nil, nil, "find user")
	}

	hash, err := s.hasher.HashPassword(input.Password)
	if errors.Is(err, ErrPasswordTooLong) {
		return nil, NewFieldsError(err.Error(), map[string]string{"password": err.Error()})
	}
	if err != nil {
		return nil, NewInternalError(err, "hash password")
	}

	now := s.now().UTC()
	user, err := s.users.Create(ctx, &User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// a concurrent registration won the unique index
		return nil, storeError(err, nil, ErrUserConflict, "create user")
	}

	s.emit(ctx, ActivityEventUserRegistered, user.ID.String(), user.ID.String(), nil)

	return user.Public(), nil
}

// Login verifies credentials and issues a bearer token. Unknown emails
// and wrong passwords fail with the same error.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	input.Email = NormalizeEmail(input.Email)
	if err := validationError(input.Validate()); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if !errors.Is(err, ErrRecordNotFound) {
			return nil, storeError(err, nil, nil, "find user by email")
		}
		// keep the response time close to the known user path
		_ = s.hasher.ComparePasswordAndHash(input.Password, s.fakeHash())
		s.emit(ctx, ActivityEventLoginFailure, "", "", map[string]any{"reason": "unknown_email"})
		return nil, ErrInvalidCredentials
	}

	if err := s.hasher.ComparePasswordAndHash(input.Password, user.PasswordHash); err != nil {
		if !errors.Is(err, ErrMismatchedHashAndPassword) {
			s.logger.Error("Login compare password hash error: %v", err)
		}
		s.emit(ctx, ActivityEventLoginFailure, user.ID.String(), user.ID.String(), map[string]any{"reason": "password_mismatch"})
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Generate(user)
	if err != nil {
		s.logger.Error("Login generate token error: %v", err)
		return nil, NewInternalError(err, "generate token")
	}

	s.emit(ctx, ActivityEventLoginSuccess, user.ID.String(), user.ID.String(), nil)

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.Public(),
	}, nil
}

// VerifyToken validates token and returns the user id it carries
func (s *AuthService) VerifyToken(token string) (uuid.UUID, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return uuid.Nil, err
	}

	id, err := uuid.Parse(claims.UserID())
	if err != nil {
		return uuid.Nil, ErrTokenMalformed
	}
	return id, nil
}

// ResolveUser loads the user a token refers to. A user deleted after
// the token was issued is reported as ErrUserNotFound.
func (s *AuthService) ResolveUser(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, ErrUserNotFound, nil, "find user by id")
	}
	return user.Public(), nil
}

// Authenticate runs VerifyToken and ResolveUser in one call
func (s *AuthService) Authenticate(ctx context.Context, token string) (*User, error) {
	id, err := s.VerifyToken(token)
	if err != nil {
		return nil, err
	}
	return s.ResolveUser(ctx, id)
}

func (s *AuthService) fakeHash() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.HashPassword(uuid.NewString())
		if err != nil {
			s.logger.Warn("unable to build placeholder hash: %v", err)
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}
