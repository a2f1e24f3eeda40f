package config

// Config is the top-level application configuration.
type Config struct {
	Oracle  OracleConfig  `mapstructure:"oracle" yaml:"oracle"`
	Build   BuildConfig   `mapstructure:"build" yaml:"build"`
	LedgerP string        `mapstructure:"ledger_path" yaml:"ledger_path"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// OracleConfig configures the generative fixer client. An empty APIKey is
// valid and produces a client that declines every request.
type OracleConfig struct {
	APIKey            string `mapstructure:"api_key" yaml:"api_key"`
	Model             string `mapstructure:"model" yaml:"model"`
	BaseURL           string `mapstructure:"base_url" yaml:"base_url"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
}

// BuildConfig bounds toolchain invocations.
type BuildConfig struct {
	BuildTimeoutMinutes int `mapstructure:"build_timeout_minutes" yaml:"build_timeout_minutes"`
	CheckTimeoutSeconds int `mapstructure:"check_timeout_seconds" yaml:"check_timeout_seconds"`
}

// LoggingConfig controls diagnostic logging.
type LoggingConfig struct {
	Verbose bool `mapstructure:"verbose" yaml:"verbose"`
}
