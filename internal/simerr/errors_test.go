package simerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrorCollects(t *testing.T) {
	var ve ValidationError
	assert.NoError(t, ve.Err())

	ve.Add("quantity must be positive, got %d", 0)
	ve.Add("insufficient cash")
	err := ve.Err()
	assert.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Len(t, ve.Problems, 2)
	assert.Contains(t, err.Error(), "insufficient cash")
}

func TestKindsSurviveWrapping(t *testing.T) {
	nf := fmt.Errorf("assign: %w", &NotFoundError{Entity: "buddy", ID: 3})
	assert.True(t, IsNotFound(nf))
	assert.False(t, IsStateConflict(nf))

	sc := fmt.Errorf("collect: %w", &StateConflictError{Entity: "buddy", ID: 3, State: "holding", Reason: "nothing to collect"})
	assert.True(t, IsStateConflict(sc))
	assert.Equal(t, "collect: buddy 3 is holding: nothing to collect", sc.Error())
}

func TestPersistenceWrapping(t *testing.T) {
	assert.NoError(t, Persistence("save", nil))

	base := errors.New("disk full")
	err := Persistence("save state", base)
	assert.True(t, IsPersistence(err))
	assert.ErrorIs(t, err, base)

	// Domain kinds pass through untouched.
	nf := &NotFoundError{Entity: "session", ID: "x"}
	assert.Same(t, nf, Persistence("load", nf))
}
