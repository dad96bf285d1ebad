package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sonorus-backend/internal/apperr"
	"sonorus-backend/internal/entity"
	"sonorus-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	jwtExpDays        = 30
	minPasswordLength = 8
)

// UserAccounts is the account persistence surface consumed by AuthService.
type UserAccounts interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, email string, displayName, avatarURL *string) error
}

// AuthService handles account and session business logic
type AuthService struct {
	userRepo  UserAccounts
	jwtSecret string
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo UserAccounts, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
	}
}

// SignUp registers a new account with role "user"
func (s *AuthService) SignUp(ctx context.Context, email, password, displayName string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.Authf("invalid email address")
	}
	if len(password) < minPasswordLength {
		return nil, apperr.Authf("password must be at least %d characters", minPasswordLength)
	}

	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Authf("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		Role:         "user",
		DisplayName:  displayName,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SignIn verifies credentials and issues a session token
func (s *AuthService) SignIn(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", nil, apperr.Authf("invalid credentials")
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, apperr.Authf("invalid credentials")
	}

	token, err := s.GenerateJWT(user.Email, user.Role)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// GenerateJWT generates a session token carrying the actor identity
func (s *AuthService) GenerateJWT(email, role string) (string, error) {
	claims := jwt.MapClaims{
		"email": email,
		"role":  role,
		"exp":   time.Now().AddDate(0, 0, jwtExpDays).Unix(),
		"iat":   time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateJWT validates a session token and returns the acting user
func (s *AuthService) ValidateJWT(tokenString string) (*entity.Actor, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, apperr.Authf("failed to parse token: %v", err)
	}
	if !token.Valid {
		return nil, apperr.Authf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperr.Authf("invalid token claims")
	}
	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return nil, apperr.Authf("email not found in token")
	}
	role, _ := claims["role"].(string)
	if role == "" {
		role = "user"
	}

	return &entity.Actor{Email: email, Role: role}, nil
}

// GetProfile retrieves the account behind an email
func (s *AuthService) GetProfile(ctx context.Context, email string) (*models.User, error) {
	return s.userRepo.GetByEmail(ctx, email)
}

// UpdateProfile updates the display name and avatar URL of an account
func (s *AuthService) UpdateProfile(ctx context.Context, email string, displayName, avatarURL *string) error {
	return s.userRepo.UpdateProfile(ctx, email, displayName, avatarURL)
}
