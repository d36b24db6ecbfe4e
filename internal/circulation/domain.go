// internal/circulation/domain.go
package circulation

import "time"

// Borrowing statuses. A borrowing moves borrowed -> returned, nothing else.
const (
	StatusBorrowed = "borrowed"
	StatusReturned = "returned"
)

// Borrowing represents one book lent to one user for a bounded period.
// ReturnedDate is set exactly when Status is returned.
//
// Borrow carries no idempotency key: a caller that loses the response to a
// borrow request cannot tell whether it committed, and retrying may lend a
// second copy (or surface a conflict if none is left). Deduplication is a
// caller concern.
type Borrowing struct {
	ID           int64      `json:"id" db:"id"`
	BookID       int64      `json:"book_id" db:"book_id"`
	UserID       int64      `json:"user_id" db:"user_id"`
	BorrowedDate time.Time  `json:"borrowed_date" db:"borrowed_date"`
	DueDate      time.Time  `json:"due_date" db:"due_date"`
	ReturnedDate *time.Time `json:"returned_date,omitempty" db:"returned_date"`
	Status       string     `json:"status" db:"status"`
}

// Record is a Borrowing joined with the book and user display columns the
// listing endpoints return. Fields absent from a given query stay nil.
type Record struct {
	Borrowing
	Title      string  `json:"title" db:"title"`
	Author     string  `json:"author" db:"author"`
	CoverImage *string `json:"cover_image,omitempty" db:"cover_image"`
	Username   *string `json:"username,omitempty" db:"username"`
	FullName   *string `json:"full_name,omitempty" db:"full_name"`
	Email      *string `json:"email,omitempty" db:"email"`
}
