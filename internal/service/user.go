// Package service provides the business logic behind the profile API,
// delegating persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/atinyakov/ProfileDesk/internal/models"
)

var (
	// ErrInvalidRole is returned when registering with an unknown role.
	ErrInvalidRole = errors.New("invalid role")
	// ErrRoleNotAllowed is returned when a role cannot be self-registered.
	ErrRoleNotAllowed = errors.New("role cannot be self-registered")
	// ErrUserNotFound is returned when the addressed user does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// UserRepository defines the persistence operations required by the user service.
type UserRepository interface {
	// UserExists returns true if a user with the given ID exists.
	UserExists(ctx context.Context, userID string) (bool, error)
	// CreateUser stores a new user.
	CreateUser(ctx context.Context, user models.User) error
}

// UserService registers dashboard accounts.
type UserService struct {
	repo  UserRepository
	newID func() string
}

// NewUserService constructs a UserService using the provided repository.
func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo, newID: uuid.NewString}
}

// Register creates a user with a fresh UUID and the given role.
// Admin accounts are never self-registered; see EnsureAdmin.
func (s *UserService) Register(ctx context.Context, role models.Role) (models.User, error) {
	if !role.Valid() {
		return models.User{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	if role == models.RoleAdmin {
		return models.User{}, fmt.Errorf("%w: %q", ErrRoleNotAllowed, role)
	}
	user := models.User{ID: s.newID(), Role: role}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// EnsureAdmin creates the operator-configured admin account when it does
// not exist yet.
func (s *UserService) EnsureAdmin(ctx context.Context, userID string) (models.User, error) {
	if userID == "" {
		return models.User{}, errors.New("admin user ID is empty")
	}
	admin := models.User{ID: userID, Role: models.RoleAdmin}
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	if exists {
		return admin, nil
	}
	if err := s.repo.CreateUser(ctx, admin); err != nil {
		return models.User{}, err
	}
	return admin, nil
}

// UserExists checks whether a user with the specified ID exists.
func (s *UserService) UserExists(ctx context.Context, userID string) (bool, error) {
	return s.repo.UserExists(ctx, userID)
}
