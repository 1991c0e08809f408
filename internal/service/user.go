package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/raahi/backend/internal/domain"
	"github.com/raahi/backend/internal/repo"
)

// PasswordHasher hashes and checks passwords. auth.PasswordHasher satisfies it.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenIssuer signs access tokens. *auth.TokenService satisfies it.
type TokenIssuer interface {
	Issue(userID uuid.UUID, email, fullName string) (string, error)
}

// Session is a user together with a freshly issued access token.
type Session struct {
	User  domain.User
	Token string
}

// UserService implements registration and login.
type UserService struct {
	users  repo.UserRepo
	hasher PasswordHasher
	tokens TokenIssuer
}

// NewUserService constructs a UserService.
func NewUserService(users repo.UserRepo, hasher PasswordHasher, tokens TokenIssuer) *UserService {
	return &UserService{users: users, hasher: hasher, tokens: tokens}
}

// Register creates an account and returns it with a token.
// Returns domain.ErrConflict if the email is already registered and
// domain.ErrValidation for an empty password or name.
func (s *UserService) Register(ctx context.Context, email, password, fullName string) (Session, error) {
	email = domain.NormalizeEmail(email)
	fullName = strings.TrimSpace(fullName)
	switch {
	case email == "":
		return Session{}, fmt.Errorf("%w: email is required", domain.ErrValidation)
	case password == "":
		return Session{}, fmt.Errorf("%w: password is required", domain.ErrValidation)
	case fullName == "":
		return Session{}, fmt.Errorf("%w: full_name is required", domain.ErrValidation)
	}

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return Session{}, fmt.Errorf("%w: email already registered", domain.ErrConflict)
	case !errors.Is(err, domain.ErrNotFound):
		return Session{}, fmt.Errorf("service.UserService.Register: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return Session{}, fmt.Errorf("service.UserService.Register: %w", err)
	}

	// The unique index still guards against a concurrent registration.
	user, err := s.users.Create(ctx, domain.User{Email: email, PasswordHash: hash, FullName: fullName})
	if err != nil {
		return Session{}, fmt.Errorf("service.UserService.Register: %w", err)
	}
	return s.session(user)
}

// Login checks credentials and returns the user with a new token.
// An unknown email and a wrong password both return domain.ErrUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Session{}, domain.ErrUnauthorized
		}
		return Session{}, fmt.Errorf("service.UserService.Login: %w", err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return Session{}, domain.ErrUnauthorized
	}
	return s.session(user)
}

func (s *UserService) session(user domain.User) (Session, error) {
	token, err := s.tokens.Issue(user.ID, user.Email, user.FullName)
	if err != nil {
		return Session{}, fmt.Errorf("service.UserService: issue token: %w", err)
	}
	return Session{User: user, Token: token}, nil
}

// Me reloads the authenticated user so that a token outliving its account is
// rejected. Returns domain.ErrUnauthorized when the user no longer exists.
func (s *UserService) Me(ctx context.Context, current domain.CurrentUser) (domain.CurrentUser, error) {
	user, err := s.users.GetByID(ctx, current.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.CurrentUser{}, domain.ErrUnauthorized
		}
		return domain.CurrentUser{}, fmt.Errorf("service.UserService.Me: %w", err)
	}
	return domain.CurrentUser{UserID: user.ID, Email: user.Email, FullName: user.FullName}, nil
}
