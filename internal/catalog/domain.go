// internal/catalog/domain.go
package catalog

import "time"

// Book represents a title in the catalog with its copy counts.
// AvailableCopies stays within [0, TotalCopies]; the circulation service
// is the only writer of AvailableCopies after creation.
type Book struct {
	ID              int64     `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Author          string    `json:"author" db:"author"`
	ISBN            string    `json:"isbn" db:"isbn"`
	Publisher       *string   `json:"publisher,omitempty" db:"publisher"`
	PublishedYear   int       `json:"published_year" db:"published_year"`
	Genre           string    `json:"genre" db:"genre"`
	Description     *string   `json:"description,omitempty" db:"description"`
	CoverImage      *string   `json:"cover_image,omitempty" db:"cover_image"`
	Pages           *int      `json:"pages,omitempty" db:"pages"`
	AvailableCopies int       `json:"available_copies" db:"available_copies"`
	TotalCopies     int       `json:"total_copies" db:"total_copies"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// BookInput carries the writable fields for creating or updating a book.
type BookInput struct {
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	ISBN          string  `json:"isbn"`
	Publisher     *string `json:"publisher"`
	PublishedYear int     `json:"published_year"`
	Genre         string  `json:"genre"`
	Description   *string `json:"description"`
	CoverImage    *string `json:"cover_image"`
	Pages         *int    `json:"pages"`
	TotalCopies   int     `json:"total_copies"`
}

// ListFilter narrows the catalog listing.
type ListFilter struct {
	Genre         string
	Author        string
	AvailableOnly bool
}
