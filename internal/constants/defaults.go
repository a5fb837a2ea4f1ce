package constants

// Default resend queue configuration values
const (
	DefaultMinResendIntervalMs = 2000
	DefaultMaxResendIntervalMs = 256000
)

// Default polling configuration values
const (
	DefaultSignalPollIntervalSec = 5
	DefaultSignalPollTimeoutSec  = 10
	DefaultRetryBackoffMs        = 1000
	DefaultMaxBackoffMs          = 60000
	DefaultMaxAttempts           = 5
	DefaultServerPort            = 8082
)

// Default timeout values
const (
	DefaultSignalHTTPTimeoutSec  = 60
	DefaultDatabaseRetryAttempts = 3
	DefaultGracefulShutdownSec   = 30
	DefaultServerReadTimeoutSec  = 15
	DefaultServerWriteTimeoutSec = 15
	DefaultServerIdleTimeoutSec  = 60
	ServerErrorChannelSize       = 1
)

// Circuit breaker settings for outbound Signal API calls
const (
	DefaultBreakerMaxFailures = 5
	DefaultBreakerCooldownSec = 30
)

// Phone number validation bounds
const (
	MinPhoneNumberDigits = 7
	MaxPhoneNumberDigits = 15
)

// Encryption settings for the membership store
const (
	EncryptionSalt       = "sigcast-membership-salt-v1"
	EncryptionLookupSalt = "sigcast-lookup-salt-v1"
)
