package repository

import (
	"context"
	"errors"
	"fmt"

	"sonorus-backend/internal/apperr"
	"sonorus-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles database operations for accounts
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new account
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, role, display_name, avatar_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Role,
		user.DisplayName, user.AvatarURL, user.CreatedAt,
	)
	if err != nil {
		return apperr.Store(fmt.Errorf("failed to create user: %w", err))
	}
	return nil
}

// GetByEmail retrieves an account by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, role, display_name, avatar_url, created_at
		FROM users
		WHERE email = $1
	`
	var user models.User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Role,
		&user.DisplayName, &user.AvatarURL, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("user %s not found", email)
		}
		return nil, apperr.Store(fmt.Errorf("failed to get user: %w", err))
	}
	return &user, nil
}

// EmailExists checks if an email is already registered
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, apperr.Store(fmt.Errorf("failed to check email existence: %w", err))
	}
	return exists, nil
}

// UpdateProfile updates the display name and avatar URL for an account.
// Nil fields are left unchanged.
func (r *UserRepository) UpdateProfile(ctx context.Context, email string, displayName, avatarURL *string) error {
	query := `
		UPDATE users
		SET display_name = COALESCE($1, display_name),
		    avatar_url = COALESCE($2, avatar_url)
		WHERE email = $3
	`
	result, err := r.db.Exec(ctx, query, displayName, avatarURL, email)
	if err != nil {
		return apperr.Store(fmt.Errorf("failed to update profile: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFoundf("user %s not found", email)
	}
	return nil
}
