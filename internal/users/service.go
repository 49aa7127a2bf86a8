package users

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	CreateUser(ctx context.Context, username, passwordHash string, role Role) (*User, error)
}

// Service handles user business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// GetUser returns one user.
func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

// CreateUser hashes the password and stores the account.
func (s *Service) CreateUser(ctx context.Context, input CreateInput) (*User, error) {
	if input.Username == "" {
		return nil, errors.New("users: username required")
	}
	if len(input.Password) < 8 {
		return nil, errors.New("users: password must be at least 8 characters")
	}
	if !knownRoles[input.Role] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, input.Role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateUser(ctx, input.Username, string(hash), input.Role)
}
