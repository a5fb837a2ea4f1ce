package dispatch

import (
	"testing"

	"sigcast/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	r, err := NewRegistry([]models.ChannelConfig{
		{PhoneNumber: "+15550001111", Name: "alerts"},
		{PhoneNumber: "+15550002222", Name: "updates"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, r.Count())
	assert.True(t, r.IsChannel("+15550001111"))
	assert.False(t, r.IsChannel("+15559999999"))
	assert.Equal(t, []string{"+15550001111", "+15550002222"}, r.Numbers())

	ch, ok := r.Get("+15550002222")
	require.True(t, ok)
	assert.Equal(t, "updates", ch.Name)
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry([]models.ChannelConfig{
		{PhoneNumber: "+15550001111", Name: "alerts"},
		{PhoneNumber: "+15550001111", Name: "alerts again"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestNewRegistryRejectsInvalidNumber(t *testing.T) {
	_, err := NewRegistry([]models.ChannelConfig{
		{PhoneNumber: "not-a-number", Name: "alerts"},
	})
	require.Error(t, err)
}

func TestNewRegistryRejectsEmpty(t *testing.T) {
	_, err := NewRegistry(nil)
	require.Error(t, err)
}
