package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bookfoundry/internal/dirs"
	"bookfoundry/internal/model"
	"bookfoundry/internal/util"
)

// EnvPrefix prefixes every environment override, e.g. BOOKFOUNDRY_API_URL.
const EnvPrefix = "BOOKFOUNDRY"

// Defaults applied before config files, environment and flags.
const (
	DefaultAPIURL            = "http://localhost:8000"
	DefaultProject           = "book.toml"
	DefaultPollInterval      = 1500 * time.Millisecond
	DefaultPollTimeout       = 30 * time.Minute
	DefaultPollRetries       = 3
	DefaultRequestTimeout    = 2 * time.Minute
	DefaultRequestsPerSecond = 5.0
)

// flagKeys maps persistent flag names to config keys.
var flagKeys = map[string]string{
	"api-url":       "api_url",
	"project":       "project",
	"out-dir":       "out_dir",
	"verbose":       "verbose",
	"log-format":    "log_format",
	"poll-interval": "poll_interval",
	"poll-timeout":  "poll_timeout",
	"max-polls":     "max_polls",
	"poll-retries":  "poll_retries",
}

// Init wires Viper with config paths, env, defaults, and flag bindings.
// It is non-fatal: any errors are returned for optional handling by caller.
func Init(root *cobra.Command) error {
	// A missing .env is normal.
	_ = godotenv.Load()

	if cfgDir, err := dirs.ConfigDir(); err == nil {
		viper.AddConfigPath(cfgDir)
	}
	viper.SetConfigName("config") // supports config.{yaml|yml|json|toml}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	setDefaults(viper.GetViper())

	var errs []error
	for flag, key := range flagKeys {
		if f := root.PersistentFlags().Lookup(flag); f != nil {
			if err := viper.BindPFlag(key, f); err != nil {
				errs = append(errs, fmt.Errorf("bind %s: %w", flag, err))
			}
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			errs = append(errs, fmt.Errorf("read config: %w", err))
		}
	}
	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("project", DefaultProject)
	v.SetDefault("out_dir", ".")
	v.SetDefault("verbose", false)
	v.SetDefault("log_format", "text")
	v.SetDefault("poll_interval", DefaultPollInterval)
	v.SetDefault("poll_timeout", DefaultPollTimeout)
	v.SetDefault("max_polls", 0)
	v.SetDefault("poll_retries", DefaultPollRetries)
	v.SetDefault("request_timeout", DefaultRequestTimeout)
	v.SetDefault("requests_per_second", DefaultRequestsPerSecond)
}

// Load resolves the effective options from the global Viper instance.
func Load() (model.CLIOptions, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom resolves and validates options from v.
func LoadFrom(v *viper.Viper) (model.CLIOptions, error) {
	var o model.CLIOptions
	if err := v.Unmarshal(&o); err != nil {
		return o, fmt.Errorf("decode config: %w", err)
	}
	if err := validate(&o); err != nil {
		return o, err
	}
	return o, nil
}

func validate(o *model.CLIOptions) error {
	var errs []error
	base, err := util.NormalizeBaseURL(o.APIURL)
	if err != nil {
		errs = append(errs, fmt.Errorf("api_url: %w", err))
	}
	o.APIURL = base
	if o.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("poll_interval must be positive, got %s", o.PollInterval))
	}
	if o.PollTimeout < 0 {
		errs = append(errs, fmt.Errorf("poll_timeout must not be negative, got %s", o.PollTimeout))
	}
	if o.MaxPolls < 0 {
		errs = append(errs, fmt.Errorf("max_polls must not be negative, got %d", o.MaxPolls))
	}
	if o.PollRetries < 0 {
		errs = append(errs, fmt.Errorf("poll_retries must not be negative, got %d", o.PollRetries))
	}
	if o.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("requests_per_second must not be negative, got %g", o.RequestsPerSecond))
	}
	switch strings.ToLower(o.LogFormat) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", o.LogFormat))
	}
	if strings.TrimSpace(o.ProjectPath) == "" {
		o.ProjectPath = DefaultProject
	}
	return errors.Join(errs...)
}
