package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Clone(ErrScheduleConflict, "room busy"))
	appErr := FromError(wrapped)
	assert.Equal(t, ErrScheduleConflict.Code, appErr.Code)
	assert.Equal(t, http.StatusConflict, appErr.Status)
	assert.Equal(t, "room busy", appErr.Message)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	cause := errors.New("boom")
	appErr := FromError(cause)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.ErrorIs(t, appErr, cause)
	assert.Nil(t, FromError(nil))
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrNotFound, "room not found")
	assert.Equal(t, "room not found", clone.Message)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}
