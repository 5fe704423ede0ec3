package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/monocle-dev/taskboard/internal/models"
	"github.com/monocle-dev/taskboard/internal/store"
)

// CredentialStore is the subset of the user table the service needs.
type CredentialStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// Revoker records logged-out token ids.
type Revoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
}

// Session is a freshly issued login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// Service verifies credentials, issues session tokens and ends sessions.
type Service struct {
	users   CredentialStore
	hasher  Hasher
	tokens  *TokenCodec
	revoker Revoker // nil keeps logout stateless

	decoyOnce sync.Once
	decoyHash string
}

func NewService(users CredentialStore, hasher Hasher, tokens *TokenCodec, revoker Revoker) *Service {
	return &Service{users: users, hasher: hasher, tokens: tokens, revoker: revoker}
}

func (s *Service) Tokens() *TokenCodec {
	return s.tokens
}

// Authenticate checks email and password and mints a session token.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, email)

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Unknown emails pay the same hashing cost as wrong passwords.
			_, _ = s.hasher.Verify(s.decoy(), password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	ok, err := s.hasher.Verify(user.PasswordHash, password)

	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !ok {
		return nil, ErrInvalidCredentials
	}

	token, expires, err := s.tokens.Sign(user.ID)

	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &Session{Token: token, ExpiresAt: expires, User: user}, nil
}

// decoy returns a hash of a fixed password at the configured cost. It is
// computed on first use.
func (s *Service) decoy() string {
	s.decoyOnce.Do(func() {
		hash, err := s.hasher.Hash("decoy-password-never-matches")
		if err != nil {
			log.Printf("Failed to prepare decoy hash: %v", err)
			return
		}
		s.decoyHash = hash
	})
	return s.decoyHash
}

// IssueCredential creates a new account. Callers must already be
// authorized as Admin.
func (s *Service) IssueCredential(ctx context.Context, name, email, password string, role models.Role) (*models.User, error) {
	if role == "" {
		role = models.RoleUser
	}

	if !role.Valid() {
		return nil, fmt.Errorf("invalid role %q", role)
	}

	_, err := s.users.FindByEmail(ctx, email)

	if err == nil {
		return nil, ErrDuplicateEmail
	}

	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	hash, err := s.hasher.Hash(password)

	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// EndSession revokes the presented token when a revoker is configured.
// Without one, logout is purely client-side and the token stays valid
// until it expires.
func (s *Service) EndSession(ctx context.Context, claims *Claims) error {
	if s.revoker == nil || claims == nil || claims.ID == "" {
		return nil
	}

	var expires time.Time
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}

	return s.revoker.Revoke(ctx, claims.ID, expires)
}

func (s *Service) CurrentProfile(ctx context.Context, id string) (*models.User, error) {
	return s.users.FindByID(ctx, id)
}

// EnsureAdmin creates the bootstrap Admin account unless the email is
// already taken. It reports whether an account was created.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	_, err := s.IssueCredential(ctx, name, email, password, models.RoleAdmin)

	if errors.Is(err, ErrDuplicateEmail) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}
