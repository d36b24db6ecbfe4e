// internal/stats/service.go
package stats

import (
	"context"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/singleflight"

	"libris/internal/apperr"
)

// Summary holds the library-wide aggregate counts.
type Summary struct {
	TotalBooks       int `json:"total_books" db:"total_books"`
	TotalUsers       int `json:"total_users" db:"total_users"`
	ActiveBorrowings int `json:"active_borrowings" db:"active_borrowings"`
	TotalReviews     int `json:"total_reviews" db:"total_reviews"`
	OverdueBooks     int `json:"overdue_books" db:"overdue_books"`
}

// Service computes the stats summary. Concurrent identical requests share
// one query round trip.
type Service struct {
	db *sqlx.DB
	sf singleflight.Group
}

func NewService(db *sqlx.DB) *Service {
	return &Service{db: db}
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	v, err, _ := s.sf.Do("summary", func() (any, error) {
		var summary Summary
		err := s.db.GetContext(ctx, &summary, `
			SELECT
				(SELECT COUNT(*) FROM books) AS total_books,
				(SELECT COUNT(*) FROM users WHERE status = 'active') AS total_users,
				(SELECT COUNT(*) FROM borrowings WHERE status = 'borrowed') AS active_borrowings,
				(SELECT COUNT(*) FROM reviews) AS total_reviews,
				(SELECT COUNT(*) FROM borrowings WHERE status = 'borrowed' AND due_date < CURRENT_DATE) AS overdue_books
		`)
		if err != nil {
			return nil, apperr.Classify("load stats", err)
		}
		return &summary, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Summary), nil
}
