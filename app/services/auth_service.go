package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/pkg/auth"
)

var (
	// ErrEmailTaken is returned when the email or username already has an account.
	ErrEmailTaken = errors.New("account already exists")
	// ErrInvalidCredentials is returned on a failed login. Deliberately the
	// same for unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidRole is returned when registration asks for an unknown role.
	ErrInvalidRole = errors.New("invalid role")
)

// TokenPair is what a successful login yields.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService handles registration and login.
type AuthService struct {
	users *repositories.UserRepository
}

func NewAuthService(users *repositories.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// Register creates an account with the given role. The password is stored
// as a bcrypt hash, never in clear.
func (s *AuthService) Register(username, email, password, role string) (models.User, error) {
	if role == "" {
		role = models.RoleCustomer
	}
	if !models.ValidRole(role) {
		return models.User{}, fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}

	if _, err := s.users.FindByEmail(email); err == nil {
		return models.User{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, err
	}
	if _, err := s.users.FindByUsername(username); err == nil {
		return models.User{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: hash,
		Role:     role,
	}
	if err := s.users.Create(&user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Login verifies credentials and issues a token pair.
func (s *AuthService) Login(email, password string) (models.User, TokenPair, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, TokenPair{}, ErrInvalidCredentials
		}
		return models.User{}, TokenPair{}, err
	}

	if !auth.CheckPassword(user.Password, password) {
		return models.User{}, TokenPair{}, ErrInvalidCredentials
	}

	access, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		return models.User{}, TokenPair{}, fmt.Errorf("issue token: %w", err)
	}
	refresh, err := auth.GenerateRefreshToken(user.ID, user.Role)
	if err != nil {
		return models.User{}, TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}

	return user, TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
