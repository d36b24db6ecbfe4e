// internal/membership/implementation.go
package membership

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/time/rate"

	"libris/internal/apperr"
)

// service implements the Service interface.
type service struct {
	db          *sqlx.DB
	rateLimiter *rate.Limiter
}

// NewService creates a new membership service instance. Registrations are
// rate-limited to perMinute with the given burst.
func NewService(db *sqlx.DB, perMinute, burst int) Service {
	if perMinute < 1 {
		perMinute = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &service{
		db:          db,
		rateLimiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst),
	}
}

// ListUsers returns all users, newest members first.
func (s *service) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := s.db.SelectContext(ctx, &users, `
		SELECT id, username, email, full_name, member_since, status
		FROM users
		ORDER BY member_since DESC, id DESC
	`)
	if err != nil {
		return nil, apperr.Classify("list users", err)
	}
	return users, nil
}

// GetUser retrieves a user by their ID.
func (s *service) GetUser(ctx context.Context, id int64) (*User, error) {
	var user User
	err := s.db.GetContext(ctx, &user, `
		SELECT id, username, email, full_name, member_since, status
		FROM users
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("user")
	}
	if err != nil {
		return nil, apperr.Classify("get user", err)
	}
	return &user, nil
}

// RegisterUser creates an active user with membership starting today.
func (s *service) RegisterUser(ctx context.Context, input RegisterInput) (*User, error) {
	if !s.rateLimiter.Allow() {
		return nil, apperr.Conflict("registration rate limit exceeded")
	}

	if input.Username == "" || input.Email == "" || input.FullName == "" {
		return nil, apperr.Validation("username, email and full_name are required")
	}

	var user User
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO users (username, email, full_name, member_since, status)
		VALUES ($1, $2, $3, CURRENT_DATE, $4)
		RETURNING id, username, email, full_name, member_since, status
	`, input.Username, input.Email, input.FullName, StatusActive).StructScan(&user)
	if err != nil {
		return nil, apperr.Classify("insert user", err)
	}
	return &user, nil
}
