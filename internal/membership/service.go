// internal/membership/service.go
package membership

import "context"

// Service defines the interface for the membership service.
type Service interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	RegisterUser(ctx context.Context, input RegisterInput) (*User, error)
}
