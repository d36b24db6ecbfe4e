// internal/reviews/domain.go
package reviews

import "time"

// Review is a user's rating of a book, 1 through 5.
type Review struct {
	ID         int64     `json:"id" db:"id"`
	BookID     int64     `json:"book_id" db:"book_id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	Rating     int       `json:"rating" db:"rating"`
	Comment    *string   `json:"comment,omitempty" db:"comment"`
	ReviewDate time.Time `json:"review_date" db:"review_date"`

	// Reviewer display columns, present on listings.
	Username *string `json:"username,omitempty" db:"username"`
	FullName *string `json:"full_name,omitempty" db:"full_name"`
}

// ReviewInput carries the writable review fields.
type ReviewInput struct {
	BookID  int64   `json:"book_id"`
	UserID  int64   `json:"user_id"`
	Rating  int     `json:"rating"`
	Comment *string `json:"comment"`
}
