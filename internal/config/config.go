package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"sigcast/internal/constants"
	"sigcast/internal/models"
	"sigcast/internal/validation"
)

var (
	ErrMissingSignalURL = models.ConfigError{Message: "missing Signal RPC URL"}
	ErrMissingDBPath    = models.ConfigError{Message: "missing database path"}
	ErrMissingChannels  = models.ConfigError{Message: "channels array is required and must contain at least one channel"}
)

func LoadConfig(path string) (*models.Config, error) {
	file, err := os.ReadFile(path) // #nosec G304 - path comes from the operator's -config flag
	if err != nil {
		return nil, err
	}

	var config models.Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	applyEnvironmentOverrides(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	applyDefaults(&config)

	return &config, nil
}

func validate(c *models.Config) error {
	if c.Signal.RPCURL == "" {
		return ErrMissingSignalURL
	}
	if c.Database.Path == "" {
		return ErrMissingDBPath
	}
	if len(c.Channels) == 0 {
		return ErrMissingChannels
	}

	numbers := make(map[string]bool)
	for i, channel := range c.Channels {
		if channel.PhoneNumber == "" {
			return models.ConfigError{Message: fmt.Sprintf("empty phone number in channel %d", i)}
		}
		if err := validation.ValidatePhoneNumber(channel.PhoneNumber); err != nil {
			return models.ConfigError{Message: fmt.Sprintf("invalid phone number in channel %d: %v", i, err)}
		}
		if numbers[channel.PhoneNumber] {
			return models.ConfigError{Message: fmt.Sprintf("duplicate channel number: %s", channel.PhoneNumber)}
		}
		numbers[channel.PhoneNumber] = true

		for _, admin := range channel.Admins {
			if err := validation.ValidatePhoneNumber(admin); err != nil {
				return models.ConfigError{Message: fmt.Sprintf("invalid admin number %q in channel %d: %v", admin, i, err)}
			}
		}
	}

	if c.Resend.MinIntervalMs < 0 || c.Resend.MaxIntervalMs < 0 {
		return models.ConfigError{Message: "resend intervals must not be negative"}
	}
	if c.Resend.MinIntervalMs > 0 && c.Resend.MaxIntervalMs > 0 && c.Resend.MinIntervalMs > c.Resend.MaxIntervalMs {
		return models.ConfigError{Message: "resend minIntervalMs must not exceed maxIntervalMs"}
	}

	return nil
}

func applyDefaults(c *models.Config) {
	if c.Resend.MinIntervalMs == 0 {
		c.Resend.MinIntervalMs = constants.DefaultMinResendIntervalMs
	}
	if c.Resend.MaxIntervalMs == 0 {
		c.Resend.MaxIntervalMs = constants.DefaultMaxResendIntervalMs
	}

	if c.Retry.InitialBackoffMs == 0 {
		c.Retry.InitialBackoffMs = constants.DefaultRetryBackoffMs
	}
	if c.Retry.MaxBackoffMs == 0 {
		c.Retry.MaxBackoffMs = constants.DefaultMaxBackoffMs
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = constants.DefaultMaxAttempts
	}

	if c.Signal.PollIntervalSec == 0 {
		c.Signal.PollIntervalSec = constants.DefaultSignalPollIntervalSec
	}
	if c.Signal.PollTimeoutSec == 0 {
		c.Signal.PollTimeoutSec = constants.DefaultSignalPollTimeoutSec
	}
	if c.Signal.HTTPTimeoutSec == 0 {
		c.Signal.HTTPTimeoutSec = constants.DefaultSignalHTTPTimeoutSec
	}

	if c.Server.Port == 0 {
		c.Server.Port = constants.DefaultServerPort
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func applyEnvironmentOverrides(c *models.Config) {
	if url := os.Getenv("SIGCAST_SIGNAL_RPC_URL"); url != "" {
		c.Signal.RPCURL = url
	}

	// The API token should come from the environment, not the config file
	if token := os.Getenv("SIGCAST_SIGNAL_AUTH_TOKEN"); token != "" {
		c.Signal.AuthToken = token
	}

	if path := os.Getenv("SIGCAST_DATABASE_PATH"); path != "" {
		c.Database.Path = path
	}

	if port := os.Getenv("SIGCAST_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 {
			c.Server.Port = p
		}
	}

	if level := os.Getenv("SIGCAST_LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
}
