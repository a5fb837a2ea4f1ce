package models

// Config holds the application configuration
type Config struct {
	Signal   SignalConfig   `json:"signal"`
	Database DatabaseConfig `json:"database"`
	Resend   ResendConfig   `json:"resend"`
	Retry    RetryConfig    `json:"retry"`
	Server   ServerConfig   `json:"server"`
	Tracing  TracingConfig  `json:"tracing"`
	Channels []ChannelConfig `json:"channels"`
	LogLevel string         `json:"log_level"`
}

// SignalConfig holds signal-cli REST API related configuration
type SignalConfig struct {
	RPCURL          string `json:"rpc_url"`
	AuthToken       string `json:"auth_token"`
	AttachmentsDir  string `json:"attachments_dir"`
	HTTPTimeoutSec  int    `json:"httpTimeoutSec"`
	PollIntervalSec int    `json:"pollIntervalSec"`
	PollTimeoutSec  int    `json:"pollTimeoutSec"`
	PollingEnabled  bool   `json:"pollingEnabled"`
}

// DatabaseConfig holds membership store related configuration
type DatabaseConfig struct {
	Path string `json:"path"`
}

// ResendConfig bounds the delivery-retry schedule
type ResendConfig struct {
	MinIntervalMs int `json:"minIntervalMs"`
	MaxIntervalMs int `json:"maxIntervalMs"`
}

// RetryConfig holds transient-failure backoff configuration
type RetryConfig struct {
	InitialBackoffMs int `json:"initialBackoffMs"`
	MaxBackoffMs     int `json:"maxBackoffMs"`
	MaxAttempts      int `json:"maxAttempts"`
}

// ServerConfig holds control-plane HTTP server configuration
type ServerConfig struct {
	Port int `json:"port"`
}

// TracingConfig holds OpenTelemetry configuration
type TracingConfig struct {
	ServiceName    string  `json:"service_name"`
	ServiceVersion string  `json:"service_version"`
	Environment    string  `json:"environment"`
	OTLPEndpoint   string  `json:"otlp_endpoint"`
	SampleRate     float64 `json:"sample_rate"`
	Enabled        bool    `json:"enabled"`
	UseStdout      bool    `json:"use_stdout"`
}

// ChannelConfig declares a broadcast channel operated by this instance
type ChannelConfig struct {
	PhoneNumber string   `json:"phoneNumber"`
	Name        string   `json:"name"`
	Admins      []string `json:"admins,omitempty"`
}

type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string {
	return e.Message
}
