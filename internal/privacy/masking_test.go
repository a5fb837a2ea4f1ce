package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskPhoneNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"standard E.164", "+15551234567", "+*******4567"},
		{"without plus", "15551234567", "*******4567"},
		{"empty", "", ""},
		{"just plus", "+", "+"},
		{"short with plus", "+1234", "+****"},
		{"short without plus", "123", "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MaskPhoneNumber(tt.input))
		})
	}
}

func TestMaskMessageHash(t *testing.T) {
	assert.Equal(t, "deadbeef", MaskMessageHash("deadbeefdeadbeefdeadbeefdeadbeefdeadbeef"))
	assert.Equal(t, "abc", MaskMessageHash("abc"))
}
