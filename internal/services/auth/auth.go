// Package auth implements registration, login and role management on top of
// bcrypt password hashing and JWT tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/greenspire/plant-rental/internal/lib/jwt"
	"github.com/greenspire/plant-rental/internal/lib/password"
	"github.com/greenspire/plant-rental/internal/models"
	"github.com/greenspire/plant-rental/internal/storage"
)

var (
	// ErrUserExists marks a registration with an already taken e-mail.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials marks a failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidRole marks a role value outside the allowed set.
	ErrInvalidRole = errors.New("invalid role")
)

// AuthRepository defines the storage methods used by the service.
type AuthRepository interface {
	RegisterUser(ctx context.Context, user models.User) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, uid string) (*models.User, error)
	ListUsersByRole(ctx context.Context, role string) ([]*models.User, error)
	UpdateUserRole(ctx context.Context, uid, role string) (int, error)
}

// AuthService carries registration, login and role management.
type AuthService struct {
	repo  AuthRepository
	maker jwt.Maker
	log   *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo AuthRepository, maker jwt.Maker, log *slog.Logger) *AuthService {
	return &AuthService{
		repo:  repo,
		maker: maker,
		log:   log,
	}
}

// Register creates a new customer account and returns its uid. E-mails are
// unique; a duplicate registration fails with ErrUserExists.
func (s *AuthService) Register(ctx context.Context, name, email, plain string) (string, error) {
	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return "", ErrUserExists
	} else if !errors.Is(err, storage.ErrNotFound) {
		return "", err
	}

	hash, err := password.GetHash(plain)
	if err != nil {
		return "", err
	}

	user := models.User{
		UID:          uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleCustomer,
	}
	uid, err := s.repo.RegisterUser(ctx, user)
	if err != nil {
		return "", err
	}
	s.log.Info("user registered", slog.String("user_uid", uid))
	return uid, nil
}

// Login verifies the credentials and returns a signed JWT plus the user.
func (s *AuthService) Login(ctx context.Context, email, plain string) (string, *models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := password.CompareHash(user.PasswordHash, plain); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.maker.GenerateToken(user.Name, user.Role, user.UID)
	if err != nil {
		return "", nil, err
	}
	s.log.Info("user logged in", slog.String("user_uid", user.UID))
	return token, user, nil
}

// ChangeRole sets the role of a user. Admin only; the caller is checked by
// the route guard.
func (s *AuthService) ChangeRole(ctx context.Context, uid, role string) error {
	switch role {
	case models.RoleCustomer, models.RoleWorker, models.RoleAdmin:
	default:
		return fmt.Errorf("%q: %w", role, ErrInvalidRole)
	}

	rows, err := s.repo.UpdateUserRole(ctx, uid, role)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("user %s: %w", uid, storage.ErrNotFound)
	}
	s.log.Info("user role changed", slog.String("user_uid", uid), slog.String("role", role))
	return nil
}

// ListWorkers returns every user carrying the worker role, for the admin
// assignment dropdown.
func (s *AuthService) ListWorkers(ctx context.Context) ([]*models.User, error) {
	return s.repo.ListUsersByRole(ctx, models.RoleWorker)
}
