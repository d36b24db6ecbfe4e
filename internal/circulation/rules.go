// internal/circulation/rules.go
package circulation

import (
	"time"

	"libris/internal/apperr"
)

// userStatusActive is the only user status allowed to borrow.
const userStatusActive = "active"

// bookState is the slice of a book row the lending rules read.
type bookState struct {
	Available int
}

// userState is the slice of a user row the lending rules read.
type userState struct {
	Status string
}

// borrowingState is the slice of a borrowing row the return rules read.
type borrowingState struct {
	BookID int64
	Status string
}

// checkAvailability rejects borrowing a book with no free copies. It runs
// as soon as the book row is locked, before the borrower is looked up, so
// an unavailable book reports the conflict no matter who asks.
func checkAvailability(book bookState) error {
	if book.Available <= 0 {
		return apperr.Conflict("book unavailable")
	}
	return nil
}

// checkBorrower rejects borrowers that are not active members.
func checkBorrower(user userState) error {
	if user.Status != userStatusActive {
		return apperr.Conflict("user inactive")
	}
	return nil
}

// checkReturn rejects a second return of the same borrowing. The conflict
// is surfaced, not silently accepted, so callers never double-credit
// availability.
func checkReturn(b borrowingState) error {
	if b.Status == StatusReturned {
		return apperr.Conflict("already returned")
	}
	return nil
}

// today returns the current calendar date in UTC. Days are UTC dates
// everywhere so the due date cannot shift near midnight.
func today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}

// dueDate computes the due date as the borrow date plus the loan period.
func dueDate(borrowed time.Time, loanPeriodDays int) time.Time {
	return borrowed.AddDate(0, 0, loanPeriodDays)
}
