package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional config
// file. Environment variables take precedence over values from the file, and
// both override the built-in defaults.
//
// Environment variables use the LABELPRESS_ prefix with underscores for
// nesting, e.g. LABELPRESS_SERVER_PORT or LABELPRESS_JOBS_MAX_PARALLEL.
// The config file (labelpress.yaml) is searched for in the working directory.
//
// Returns a populated Config or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("labelpress")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("LABELPRESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults still apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers the default value for every config key. The defaults
// match a small single-host deployment; production overrides via env.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("jobs.max_parallel", 0)
	v.SetDefault("jobs.queue_size", 1024)
	v.SetDefault("jobs.retention_hours", 24)
	v.SetDefault("jobs.cleanup_interval", time.Hour)

	v.SetDefault("glabels.binary", "glabels-3-batch")
	v.SetDefault("glabels.timeout", 10*time.Minute)
	v.SetDefault("glabels.max_labels_per_batch", 300)
	v.SetDefault("glabels.keep_csv", false)
	v.SetDefault("glabels.output_poll_attempts", 5)
	v.SetDefault("glabels.output_poll_interval", 100*time.Millisecond)

	v.SetDefault("limits.max_request_bytes", 5_000_000)
	v.SetDefault("limits.max_labels_per_job", 2000)
	v.SetDefault("limits.max_fields_per_label", 50)
	v.SetDefault("limits.max_field_length", 2048)

	v.SetDefault("paths.templates_dir", "templates")
	v.SetDefault("paths.output_dir", "output")
	v.SetDefault("paths.temp_dir", "temp")
}
