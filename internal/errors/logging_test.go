package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldsForAppError(t *testing.T) {
	err := Wrap(errors.New("disk full"), ErrCodeStoreMutation, "failed to add admin").
		WithContext("operation", "addAdmin")

	fields := Fields(err)
	require.NotNil(t, fields)
	assert.Equal(t, ErrCodeStoreMutation, fields["error_code"])
	assert.Equal(t, false, fields["retryable"])
	assert.Equal(t, "addAdmin", fields["operation"])
}

func TestFieldsForPlainError(t *testing.T) {
	assert.Nil(t, Fields(errors.New("plain")))
}
