package model

import "time"

// CLIOptions holds user-configurable runtime options as resolved from flags,
// environment and config file.
type CLIOptions struct {
	APIURL      string `mapstructure:"api_url"`
	ProjectPath string `mapstructure:"project"`
	OutDir      string `mapstructure:"out_dir"`
	Verbose     bool   `mapstructure:"verbose"`
	LogFormat   string `mapstructure:"log_format"` // text | json

	PollInterval time.Duration `mapstructure:"poll_interval"`
	PollTimeout  time.Duration `mapstructure:"poll_timeout"` // 0 disables the ceiling.
	MaxPolls     int           `mapstructure:"max_polls"`    // 0 = unlimited.
	PollRetries  int           `mapstructure:"poll_retries"` // Consecutive transient failures tolerated.

	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`

	NoUI bool `mapstructure:"-"` // Disable TUI when true
}
