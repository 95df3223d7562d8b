package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	err := NotFound("Item %d not found", 7)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrBadRequest)
	assert.Equal(t, "Item 7 not found", err.Error())

	wrapped := fmt.Errorf("approve: %w", BadRequest("Booking %d is already approved", 3))
	assert.ErrorIs(t, wrapped, ErrBadRequest)
	assert.Equal(t, "Booking 3 is already approved", Message(wrapped))

	assert.Equal(t, "", Message(errors.New("boom")))
}
