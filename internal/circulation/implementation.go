// internal/circulation/implementation.go
package circulation

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"libris/internal/apperr"
	"libris/internal/observability"
)

// service implements the Service interface.
type service struct {
	db       *sqlx.DB
	tracer   trace.Tracer
	metrics  *observability.LendingMetrics
	loanDays int
}

// NewService creates a new circulation service instance. loanPeriodDays is
// the number of days between the borrow date and the due date.
func NewService(db *sqlx.DB, metrics *observability.LendingMetrics, loanPeriodDays int) Service {
	return &service{
		db:       db,
		tracer:   otel.Tracer("libris/circulation"),
		metrics:  metrics,
		loanDays: loanPeriodDays,
	}
}

// Borrow lends a copy of a book to a user. All preconditions are checked
// against locked rows inside the same transaction that writes the effects,
// so two concurrent borrows of a last copy serialize on the book row and
// exactly one commits.
func (s *service) Borrow(ctx context.Context, bookID, userID int64) (*Borrowing, error) {
	ctx, span := s.tracer.Start(ctx, "circulation.borrow",
		trace.WithAttributes(
			attribute.Int64("book.id", bookID),
			attribute.Int64("user.id", userID),
		),
	)
	defer span.End()

	if bookID <= 0 || userID <= 0 {
		s.metrics.RecordBorrow(ctx, "validation")
		return nil, apperr.Validation("book_id and user_id are required")
	}

	borrowing, err := s.borrowTx(ctx, bookID, userID)
	if err != nil {
		span.SetAttributes(attribute.String("error.kind", apperr.KindOf(err).String()))
		s.metrics.RecordBorrow(ctx, apperr.KindOf(err).String())
		return nil, err
	}

	span.SetAttributes(attribute.Int64("borrowing.id", borrowing.ID))
	s.metrics.RecordBorrow(ctx, "success")
	return borrowing, nil
}

func (s *service) borrowTx(ctx context.Context, bookID, userID int64) (*Borrowing, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperr.Transient("begin borrow transaction", err)
	}
	defer tx.Rollback()

	// Lock order is book row then user row; Return locks borrowing then
	// book, which cannot form a cycle with this.
	var book bookState
	err = tx.QueryRowContext(ctx, `
		SELECT available_copies
		FROM books
		WHERE id = $1
		FOR UPDATE
	`, bookID).Scan(&book.Available)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("book")
	}
	if err != nil {
		return nil, apperr.Classify("lock book row", err)
	}
	if err := checkAvailability(book); err != nil {
		return nil, err
	}

	var user userState
	err = tx.QueryRowContext(ctx, `
		SELECT status
		FROM users
		WHERE id = $1
		FOR UPDATE
	`, userID).Scan(&user.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("user")
	}
	if err != nil {
		return nil, apperr.Classify("lock user row", err)
	}
	if err := checkBorrower(user); err != nil {
		return nil, err
	}

	borrowed := today()
	borrowing := &Borrowing{
		BookID:       bookID,
		UserID:       userID,
		BorrowedDate: borrowed,
		DueDate:      dueDate(borrowed, s.loanDays),
		Status:       StatusBorrowed,
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO borrowings (book_id, user_id, borrowed_date, due_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, borrowing.BookID, borrowing.UserID, borrowing.BorrowedDate, borrowing.DueDate, borrowing.Status).Scan(&borrowing.ID)
	if err != nil {
		return nil, apperr.Classify("insert borrowing", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE books
		SET available_copies = available_copies - 1, updated_at = NOW()
		WHERE id = $1
	`, bookID)
	if err != nil {
		return nil, apperr.Classify("decrement available copies", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Transient("commit borrow transaction", err)
	}

	return borrowing, nil
}

// Return closes a borrowing and credits the book's availability. The
// borrowing row is locked first so a concurrent second return observes the
// committed returned status and fails the precondition.
func (s *service) Return(ctx context.Context, borrowingID int64) error {
	ctx, span := s.tracer.Start(ctx, "circulation.return",
		trace.WithAttributes(attribute.Int64("borrowing.id", borrowingID)),
	)
	defer span.End()

	if borrowingID <= 0 {
		s.metrics.RecordReturn(ctx, "validation")
		return apperr.Validation("borrowing_id is required")
	}

	if err := s.returnTx(ctx, borrowingID); err != nil {
		span.SetAttributes(attribute.String("error.kind", apperr.KindOf(err).String()))
		s.metrics.RecordReturn(ctx, apperr.KindOf(err).String())
		return err
	}

	s.metrics.RecordReturn(ctx, "success")
	return nil
}

func (s *service) returnTx(ctx context.Context, borrowingID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperr.Transient("begin return transaction", err)
	}
	defer tx.Rollback()

	var borrowing borrowingState
	err = tx.QueryRowContext(ctx, `
		SELECT book_id, status
		FROM borrowings
		WHERE id = $1
		FOR UPDATE
	`, borrowingID).Scan(&borrowing.BookID, &borrowing.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("borrowing")
	}
	if err != nil {
		return apperr.Classify("lock borrowing row", err)
	}

	if err := checkReturn(borrowing); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE borrowings
		SET returned_date = $1, status = $2
		WHERE id = $3
	`, today(), StatusReturned, borrowingID)
	if err != nil {
		return apperr.Classify("close borrowing", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE books
		SET available_copies = available_copies + 1, updated_at = NOW()
		WHERE id = $1
	`, borrowing.BookID)
	if err != nil {
		return apperr.Classify("increment available copies", err)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Transient("commit return transaction", err)
	}

	return nil
}

// List returns every borrowing with book and user display columns, newest
// first.
func (s *service) List(ctx context.Context) ([]Record, error) {
	var records []Record
	err := s.db.SelectContext(ctx, &records, `
		SELECT b.id, b.book_id, b.user_id, b.borrowed_date, b.due_date,
		       b.returned_date, b.status,
		       bk.title, bk.author, u.username, u.full_name
		FROM borrowings b
		JOIN books bk ON b.book_id = bk.id
		JOIN users u ON b.user_id = u.id
		ORDER BY b.borrowed_date DESC, b.id DESC
	`)
	if err != nil {
		return nil, apperr.Classify("list borrowings", err)
	}
	return records, nil
}

// History returns one user's borrowings, newest first.
func (s *service) History(ctx context.Context, userID int64) ([]Record, error) {
	if userID <= 0 {
		return nil, apperr.Validation("user_id is required")
	}

	var records []Record
	err := s.db.SelectContext(ctx, &records, `
		SELECT b.id, b.book_id, b.user_id, b.borrowed_date, b.due_date,
		       b.returned_date, b.status,
		       bk.title, bk.author, bk.cover_image
		FROM borrowings b
		JOIN books bk ON b.book_id = bk.id
		WHERE b.user_id = $1
		ORDER BY b.borrowed_date DESC, b.id DESC
	`, userID)
	if err != nil {
		return nil, apperr.Classify("list borrowing history", err)
	}
	return records, nil
}

// Overdue returns open borrowings whose due date has passed, most overdue
// first.
func (s *service) Overdue(ctx context.Context) ([]Record, error) {
	var records []Record
	err := s.db.SelectContext(ctx, &records, `
		SELECT b.id, b.book_id, b.user_id, b.borrowed_date, b.due_date,
		       b.returned_date, b.status,
		       bk.title, bk.author, u.username, u.full_name, u.email
		FROM borrowings b
		JOIN books bk ON b.book_id = bk.id
		JOIN users u ON b.user_id = u.id
		WHERE b.due_date < $1 AND b.status = $2
		ORDER BY b.due_date ASC
	`, today(), StatusBorrowed)
	if err != nil {
		return nil, apperr.Classify("list overdue borrowings", err)
	}
	return records, nil
}
