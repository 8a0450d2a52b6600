package config

import "time"

// DatabaseConfig is where history events and saved placement steps live.
// A URL wins over the individual postgres fields.
type DatabaseConfig struct {
	Type string `mapstructure:"type" validate:"required,oneof=postgres sqlite"`
	URL  string `mapstructure:"url"`

	Host     string `mapstructure:"host" validate:"required_without=URL"`
	Port     int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode" validate:"omitempty,oneof=disable require verify-ca verify-full"`

	// SQLite file, or ":memory:" for a throwaway step
	Path string `mapstructure:"path" validate:"required_if=Type sqlite"`

	// Only applied to postgres; sqlite runs on a single connection
	Pool PoolConfig `mapstructure:"pool"`
}

// PoolConfig sizes the postgres connection pool
type PoolConfig struct {
	MaxOpen     int           `mapstructure:"max_open" validate:"min=1"`
	MaxIdle     int           `mapstructure:"max_idle" validate:"min=1,ltefield=MaxOpen"`
	MaxLifetime time.Duration `mapstructure:"max_lifetime"`
}
