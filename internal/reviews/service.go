// internal/reviews/service.go
package reviews

import "context"

// Service defines the interface for the reviews service.
type Service interface {
	ListByBook(ctx context.Context, bookID int64) ([]Review, error)
	AddReview(ctx context.Context, input ReviewInput) (*Review, error)
	UpdateReview(ctx context.Context, id int64, rating int, comment *string) (*Review, error)
	DeleteReview(ctx context.Context, id int64) error
}
