// internal/circulation/service.go
package circulation

import "context"

// Service defines the interface for the circulation service.
//
// Borrow and Return each run as one atomic transaction against the store;
// on any precondition failure or fault all partial writes are rolled back
// before the error returns. Neither is retried internally.
type Service interface {
	Borrow(ctx context.Context, bookID, userID int64) (*Borrowing, error)
	Return(ctx context.Context, borrowingID int64) error

	List(ctx context.Context) ([]Record, error)
	History(ctx context.Context, userID int64) ([]Record, error)
	Overdue(ctx context.Context) ([]Record, error)
}
