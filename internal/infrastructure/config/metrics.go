package config

// MetricsConfig controls the Prometheus endpoint. When enabled the CLI serves
// placement counters and per-command outcomes for as long as it runs.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Binds to localhost unless told otherwise
	Host string `mapstructure:"host" validate:"required_if=Enabled true"`
	Port int    `mapstructure:"port" validate:"omitempty,min=1024,max=65535"`
	Path string `mapstructure:"path" validate:"omitempty,startswith=/"`
}
