package dispatch

import (
	"fmt"
	"sync"

	"sigcast/internal/models"
	"sigcast/internal/validation"
)

// Registry holds the broadcast channels operated by this instance.
type Registry struct {
	channels map[string]models.ChannelConfig
	ordered  []string // preserves config order
	mu       sync.RWMutex
}

// NewRegistry creates a registry from configuration, rejecting duplicate
// or malformed channel numbers.
func NewRegistry(channels []models.ChannelConfig) (*Registry, error) {
	r := &Registry{
		channels: make(map[string]models.ChannelConfig),
		ordered:  make([]string, 0, len(channels)),
	}

	for _, channel := range channels {
		if channel.PhoneNumber == "" {
			return nil, fmt.Errorf("empty phone number in channel configuration")
		}
		if err := validation.ValidatePhoneNumber(channel.PhoneNumber); err != nil {
			return nil, fmt.Errorf("invalid channel number %q: %w", channel.PhoneNumber, err)
		}
		if _, exists := r.channels[channel.PhoneNumber]; exists {
			return nil, fmt.Errorf("duplicate channel number: %s", channel.PhoneNumber)
		}

		r.channels[channel.PhoneNumber] = channel
		r.ordered = append(r.ordered, channel.PhoneNumber)
	}

	if len(r.channels) == 0 {
		return nil, fmt.Errorf("no channels configured")
	}

	return r, nil
}

// Get returns the configuration for a channel number.
func (r *Registry) Get(phoneNumber string) (models.ChannelConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	channel, exists := r.channels[phoneNumber]
	return channel, exists
}

// IsChannel checks whether a number is an operated channel.
func (r *Registry) IsChannel(phoneNumber string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.channels[phoneNumber]
	return exists
}

// Numbers returns all channel numbers in configuration order.
func (r *Registry) Numbers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	numbers := make([]string, len(r.ordered))
	copy(numbers, r.ordered)
	return numbers
}

// Count returns the number of operated channels.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.channels)
}
