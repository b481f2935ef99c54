package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"  validate:"required"`
	Jobs    JobsConfig    `mapstructure:"jobs"    validate:"required"`
	Glabels GlabelsConfig `mapstructure:"glabels" validate:"required"`
	Limits  LimitsConfig  `mapstructure:"limits"  validate:"required"`
	Paths   PathsConfig   `mapstructure:"paths"   validate:"required"`
}

// ServerConfig contains all HTTP server related settings.
type ServerConfig struct {
	Host     string `mapstructure:"host"      validate:"required"`
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// ShutdownTimeout bounds the queue-drain grace period during shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// JobsConfig contains scheduler and retention settings.
type JobsConfig struct {
	// MaxParallel is the worker pool size. Zero means auto: available CPU
	// count (cgroup-aware) minus one, floored at one.
	MaxParallel int `mapstructure:"max_parallel" validate:"gte=0"`

	// QueueSize is the submission queue capacity.
	QueueSize int `mapstructure:"queue_size" validate:"gt=0"`

	// RetentionHours is how long finished job records and output PDFs are
	// kept before the reclaimer removes them.
	RetentionHours int `mapstructure:"retention_hours" validate:"gt=0"`

	// CleanupInterval is how often the periodic reclaim sweep runs.
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" validate:"gt=0"`
}

// GlabelsConfig contains settings for the external glabels-3-batch tool.
type GlabelsConfig struct {
	Binary string `mapstructure:"binary" validate:"required"`

	// Timeout bounds a single glabels invocation. On expiry the process is
	// killed and the job fails with a timeout error.
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`

	// MaxLabelsPerBatch is the auto-split threshold. Zero disables splitting.
	MaxLabelsPerBatch int `mapstructure:"max_labels_per_batch" validate:"gte=0"`

	// KeepCSV retains intermediate CSV files for debugging.
	KeepCSV bool `mapstructure:"keep_csv"`

	// OutputPollAttempts and OutputPollInterval configure the wait for the
	// output file to appear after a zero exit code. The tool occasionally
	// reports success before the file is flushed to disk.
	OutputPollAttempts int           `mapstructure:"output_poll_attempts" validate:"gte=0"`
	OutputPollInterval time.Duration `mapstructure:"output_poll_interval" validate:"gte=0"`
}

// LimitsConfig bounds accepted print requests.
type LimitsConfig struct {
	MaxRequestBytes   int64 `mapstructure:"max_request_bytes"    validate:"gt=0"`
	MaxLabelsPerJob   int   `mapstructure:"max_labels_per_job"   validate:"gte=0"`
	MaxFieldsPerLabel int   `mapstructure:"max_fields_per_label" validate:"gte=0"`
	MaxFieldLength    int   `mapstructure:"max_field_length"     validate:"gte=0"`
}

// PathsConfig contains filesystem locations used by the service.
type PathsConfig struct {
	TemplatesDir string `mapstructure:"templates_dir" validate:"required"`
	OutputDir    string `mapstructure:"output_dir"    validate:"required"`
	TempDir      string `mapstructure:"temp_dir"      validate:"required"`
}

// Retention returns the job retention window as a duration.
func (c JobsConfig) Retention() time.Duration {
	return time.Duration(c.RetentionHours) * time.Hour
}
