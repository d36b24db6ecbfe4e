// internal/catalog/service.go
package catalog

import "context"

// Service defines the interface for the catalog service.
type Service interface {
	ListBooks(ctx context.Context, filter ListFilter) ([]Book, error)
	GetBook(ctx context.Context, id int64) (*Book, error)
	AddBook(ctx context.Context, input BookInput) (*Book, error)
	UpdateBook(ctx context.Context, id int64, input BookInput) (*Book, error)
	DeleteBook(ctx context.Context, id int64) error
	SearchBooks(ctx context.Context, query string) ([]Book, error)
}
