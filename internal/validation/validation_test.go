package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhoneNumber(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		wantErr bool
	}{
		{"valid E.164", "+15551234567", false},
		{"valid without plus", "15551234567", false},
		{"valid minimum length", "+1234567", false},
		{"valid maximum length", "+123456789012345", false},
		{"empty", "", true},
		{"too short", "+123456", true},
		{"too long", "+1234567890123456", true},
		{"letters", "+1555call-now", true},
		{"internal spaces", "+1 555 123 4567", true},
		{"double plus", "++15551234567", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePhoneNumber(tt.phone)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsValidPhoneNumber(t *testing.T) {
	assert.True(t, IsValidPhoneNumber("+15551234567"))
	assert.False(t, IsValidPhoneNumber("foo"))
	assert.False(t, IsValidPhoneNumber(""))
}

func TestValidateNumericRange(t *testing.T) {
	assert.NoError(t, ValidateNumericRange(5, "count", 1, 10))
	assert.Error(t, ValidateNumericRange(0, "count", 1, 10))
	assert.Error(t, ValidateNumericRange(11, "count", 1, 10))
}
