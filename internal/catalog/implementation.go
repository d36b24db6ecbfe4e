// internal/catalog/implementation.go
package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"libris/internal/apperr"
)

var dialect = goqu.Dialect("postgres")

var bookColumns = []any{
	"id", "title", "author", "isbn", "publisher", "published_year", "genre",
	"description", "cover_image", "pages", "available_copies", "total_copies",
	"created_at", "updated_at",
}

// service implements the Service interface.
type service struct {
	db *sqlx.DB
}

// NewService creates a new catalog service instance.
func NewService(db *sqlx.DB) Service {
	return &service{db: db}
}

// ListBooks returns books matching the filter, ordered by title.
func (s *service) ListBooks(ctx context.Context, filter ListFilter) ([]Book, error) {
	ds := dialect.From("books").Select(bookColumns...).Order(goqu.I("title").Asc())

	if filter.Genre != "" {
		ds = ds.Where(goqu.C("genre").Eq(filter.Genre))
	}
	if filter.Author != "" {
		ds = ds.Where(goqu.C("author").ILike("%" + filter.Author + "%"))
	}
	if filter.AvailableOnly {
		ds = ds.Where(goqu.C("available_copies").Gt(0))
	}

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, apperr.Classify("build list query", err)
	}

	var books []Book
	if err := s.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, apperr.Classify("list books", err)
	}
	return books, nil
}

// GetBook retrieves a single book by its ID.
func (s *service) GetBook(ctx context.Context, id int64) (*Book, error) {
	var book Book
	err := s.db.GetContext(ctx, &book, `
		SELECT id, title, author, isbn, publisher, published_year, genre,
		       description, cover_image, pages, available_copies, total_copies,
		       created_at, updated_at
		FROM books
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("book")
	}
	if err != nil {
		return nil, apperr.Classify("get book", err)
	}
	return &book, nil
}

// AddBook creates a book; every copy starts available.
func (s *service) AddBook(ctx context.Context, input BookInput) (*Book, error) {
	if input.Title == "" || input.Author == "" || input.ISBN == "" ||
		input.PublishedYear == 0 || input.Genre == "" {
		return nil, apperr.Validation("title, author, isbn, published_year and genre are required")
	}

	total := input.TotalCopies
	if total < 1 {
		total = 1
	}

	var book Book
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO books (title, author, isbn, publisher, published_year, genre,
		                   description, cover_image, pages, available_copies, total_copies)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING id, title, author, isbn, publisher, published_year, genre,
		          description, cover_image, pages, available_copies, total_copies,
		          created_at, updated_at
	`, input.Title, input.Author, input.ISBN, input.Publisher, input.PublishedYear,
		input.Genre, input.Description, input.CoverImage, input.Pages, total,
	).StructScan(&book)
	if err != nil {
		return nil, apperr.Classify("insert book", err)
	}
	return &book, nil
}

// UpdateBook rewrites a book's descriptive fields and total copy count.
// Lowering total_copies below the currently available count trips the
// availability check and surfaces as a conflict.
func (s *service) UpdateBook(ctx context.Context, id int64, input BookInput) (*Book, error) {
	var book Book
	err := s.db.QueryRowxContext(ctx, `
		UPDATE books
		SET title = $1, author = $2, publisher = $3, published_year = $4,
		    genre = $5, description = $6, cover_image = $7, pages = $8,
		    total_copies = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING id, title, author, isbn, publisher, published_year, genre,
		          description, cover_image, pages, available_copies, total_copies,
		          created_at, updated_at
	`, input.Title, input.Author, input.Publisher, input.PublishedYear,
		input.Genre, input.Description, input.CoverImage, input.Pages,
		input.TotalCopies, id,
	).StructScan(&book)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("book")
	}
	if err != nil {
		return nil, apperr.Classify("update book", err)
	}
	return &book, nil
}

// DeleteBook removes a book. Books with borrowing history cannot be
// deleted; the reference keeps the ledger intact.
func (s *service) DeleteBook(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return apperr.Conflict("book has borrowings")
		}
		return apperr.Classify("delete book", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return apperr.Classify("delete book", err)
	}
	if affected == 0 {
		return apperr.NotFound("book")
	}
	return nil
}

// SearchBooks matches the query against title, author and description.
func (s *service) SearchBooks(ctx context.Context, query string) ([]Book, error) {
	if query == "" {
		return nil, apperr.Validation("search query is required")
	}

	pattern := "%" + query + "%"
	ds := dialect.From("books").Select(bookColumns...).Where(goqu.Or(
		goqu.C("title").ILike(pattern),
		goqu.C("author").ILike(pattern),
		goqu.C("description").ILike(pattern),
	)).Order(goqu.I("title").Asc())

	sqlQuery, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, apperr.Classify("build search query", err)
	}

	var books []Book
	if err := s.db.SelectContext(ctx, &books, sqlQuery, args...); err != nil {
		return nil, apperr.Classify("search books", err)
	}
	return books, nil
}
