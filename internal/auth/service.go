package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/reading-tracker/internal/config"
	"github.com/mrlokans/reading-tracker/internal/entities"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("user already exists")
	ErrInvalidToken    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token expired")
	ErrUsernameInvalid = errors.New("username must be 3-64 characters, alphanumeric and underscore/hyphen only")
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	CreateUser(ctx context.Context, username, email string) (*entities.User, error)
	SetTokenHash(ctx context.Context, userID uint, hash string) error
	GetUserByID(ctx context.Context, id uint) (*entities.User, error)
	GetUserByUsername(ctx context.Context, username string) (*entities.User, error)
	GetUserByTokenHash(ctx context.Context, hash string) (*entities.User, error)
}

// Service issues and validates API tokens.
type Service struct {
	users  UserRepository
	config config.Auth
	now    func() time.Time
}

// NewService creates a new authentication service.
func NewService(users UserRepository, cfg config.Auth) *Service {
	return &Service{
		users:  users,
		config: cfg,
		now:    time.Now,
	}
}

// CreateUser creates a user and issues its first token. The plaintext token
// is returned once and never stored.
func (s *Service) CreateUser(ctx context.Context, username, email string) (*entities.User, string, error) {
	if !usernamePattern.MatchString(username) {
		return nil, "", ErrUsernameInvalid
	}

	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return nil, "", ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("failed to check username: %w", err)
	}

	user, err := s.users.CreateUser(ctx, username, email)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", ErrUserExists
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GenerateToken creates a new API token for a user, replacing any previous one.
// Returns the plaintext token (show to user once) - only the hash is stored in DB.
func (s *Service) GenerateToken(ctx context.Context, userID uint) (string, error) {
	plaintext, hash, err := GenerateAPIToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	if err := s.users.SetTokenHash(ctx, userID, hash); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to save token: %w", err)
	}
	return plaintext, nil
}

// ValidateToken checks a plaintext token and returns the associated user.
// Returns ErrTokenExpired if the token is past its expiry time.
func (s *Service) ValidateToken(ctx context.Context, token string) (*entities.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetUserByTokenHash(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if s.config.TokenExpiry > 0 && user.TokenCreatedAt != nil {
		if s.now().Sub(*user.TokenCreatedAt) > s.config.TokenExpiry {
			return nil, ErrTokenExpired
		}
	}
	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(ctx context.Context, id uint) (*entities.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// IsAuthEnabled reports whether requests need a token.
func (s *Service) IsAuthEnabled() bool {
	return s.config.Mode == config.AuthModeToken
}
