// internal/reviews/implementation.go
package reviews

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"libris/internal/apperr"
)

// service implements the Service interface.
type service struct {
	db *sqlx.DB
}

// NewService creates a new reviews service instance.
func NewService(db *sqlx.DB) Service {
	return &service{db: db}
}

func validRating(rating int) bool { return rating >= 1 && rating <= 5 }

// ListByBook returns a book's reviews with reviewer names, newest first.
func (s *service) ListByBook(ctx context.Context, bookID int64) ([]Review, error) {
	if bookID < 1 {
		return nil, apperr.Validation("book_id is required")
	}

	var list []Review
	err := s.db.SelectContext(ctx, &list, `
		SELECT r.id, r.book_id, r.user_id, r.rating, r.comment, r.review_date,
		       u.username, u.full_name
		FROM reviews r
		JOIN users u ON r.user_id = u.id
		WHERE r.book_id = $1
		ORDER BY r.review_date DESC, r.id DESC
	`, bookID)
	if err != nil {
		return nil, apperr.Classify("list reviews", err)
	}
	return list, nil
}

// AddReview records a rating for a book. Missing book or user surfaces as
// not found through the foreign keys.
func (s *service) AddReview(ctx context.Context, input ReviewInput) (*Review, error) {
	if input.BookID < 1 || input.UserID < 1 {
		return nil, apperr.Validation("book_id and user_id are required")
	}
	if !validRating(input.Rating) {
		return nil, apperr.Validation("rating must be between 1 and 5")
	}

	var review Review
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO reviews (book_id, user_id, rating, comment, review_date)
		VALUES ($1, $2, $3, $4, CURRENT_DATE)
		RETURNING id, book_id, user_id, rating, comment, review_date
	`, input.BookID, input.UserID, input.Rating, input.Comment).StructScan(&review)
	if err != nil {
		return nil, apperr.Classify("insert review", err)
	}
	return &review, nil
}

// UpdateReview changes a review's rating and comment.
func (s *service) UpdateReview(ctx context.Context, id int64, rating int, comment *string) (*Review, error) {
	if !validRating(rating) {
		return nil, apperr.Validation("rating must be between 1 and 5")
	}

	var review Review
	err := s.db.QueryRowxContext(ctx, `
		UPDATE reviews
		SET rating = $1, comment = $2
		WHERE id = $3
		RETURNING id, book_id, user_id, rating, comment, review_date
	`, rating, comment, id).StructScan(&review)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("review")
	}
	if err != nil {
		return nil, apperr.Classify("update review", err)
	}
	return &review, nil
}

// DeleteReview removes a review.
func (s *service) DeleteReview(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return apperr.Classify("delete review", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return apperr.Classify("delete review", err)
	}
	if affected == 0 {
		return apperr.NotFound("review")
	}
	return nil
}
