// internal/apperr/apperr_test.go
package apperr

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validation("book_id is required")))
	assert.Equal(t, KindNotFound, KindOf(NotFound("book")))
	assert.Equal(t, KindConflict, KindOf(Conflict("book unavailable")))
	assert.Equal(t, KindTransient, KindOf(Transient("borrow", errors.New("boom"))))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("handle request: %w", NotFound("user"))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, IsKind(err, KindNotFound))
}

func TestClassifyNil(t *testing.T) {
	assert.NoError(t, Classify("borrow", nil))
}

func TestClassifyPassesThroughClassified(t *testing.T) {
	orig := Conflict("already returned")
	assert.Equal(t, orig, Classify("return", orig))
}

func TestClassifyPqCodes(t *testing.T) {
	tests := []struct {
		name string
		code pq.ErrorCode
		want Kind
	}{
		{"unique violation", "23505", KindConflict},
		{"foreign key violation", "23503", KindNotFound},
		{"check violation", "23514", KindConflict},
		{"serialization failure", "40001", KindConflict},
		{"deadlock detected", "40P01", KindConflict},
		{"connection failure", "08006", KindTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify("op", &pq.Error{Code: tt.code})
			assert.Equal(t, tt.want, KindOf(err))
		})
	}
}

func TestClassifyTransientFaults(t *testing.T) {
	for _, cause := range []error{
		context.DeadlineExceeded,
		context.Canceled,
		sql.ErrConnDone,
		sql.ErrTxDone,
	} {
		err := Classify("borrow", cause)
		require.Error(t, err)
		assert.Equal(t, KindTransient, KindOf(err), "cause: %v", cause)
		assert.ErrorIs(t, err, cause)
	}
}

func TestClassifyUnknownWraps(t *testing.T) {
	cause := errors.New("scan failed")
	err := Classify("list books", cause)
	assert.Equal(t, KindUnknown, KindOf(err))
	assert.ErrorIs(t, err, cause)
}
