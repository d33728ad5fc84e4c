// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/jacentio/roster/store"
)

// Config holds everything the service binaries read from the environment.
type Config struct {
	// HTTPAddr is the listen address of the HTTP server.
	HTTPAddr string `env:"ROSTER_HTTP_ADDR" envDefault:":8080"`

	// Debug exposes internal error text in 500 responses.
	Debug bool `env:"ROSTER_DEBUG" envDefault:"false"`

	// ShutdownTimeout bounds the graceful HTTP shutdown.
	ShutdownTimeout time.Duration `env:"ROSTER_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	SchoolsTable       string `env:"ROSTER_SCHOOLS_TABLE"        envDefault:"roster_schools"`
	StudentsTable      string `env:"ROSTER_STUDENTS_TABLE"       envDefault:"roster_students"`
	EmailsTable        string `env:"ROSTER_EMAILS_TABLE"         envDefault:"roster_emails"`
	StudentSchoolIndex string `env:"ROSTER_STUDENT_SCHOOL_INDEX" envDefault:"school-index"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Store maps the table settings into a store configuration.
func (c Config) Store() store.Config {
	return store.Config{
		SchoolsTable:       c.SchoolsTable,
		StudentsTable:      c.StudentsTable,
		EmailsTable:        c.EmailsTable,
		StudentSchoolIndex: c.StudentSchoolIndex,
	}
}
