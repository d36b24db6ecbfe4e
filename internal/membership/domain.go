// internal/membership/domain.go
package membership

import "time"

// StatusActive is the only status allowed to borrow books.
const StatusActive = "active"

// User represents a registered library member.
type User struct {
	ID          int64     `json:"id" db:"id"`
	Username    string    `json:"username" db:"username"`
	Email       string    `json:"email" db:"email"`
	FullName    string    `json:"full_name" db:"full_name"`
	MemberSince time.Time `json:"member_since" db:"member_since"`
	Status      string    `json:"status" db:"status"`
}

// RegisterInput carries the fields required to register a user.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}
