// Package config loads runtime settings from the environment and source
// schemas from YAML.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Auth modes
const (
	AuthBcrypt = "bcrypt"
	AuthShared = "shared"
)

// DefaultEnvFiles are read when present
var DefaultEnvFiles = []string{".env", ".env.local"}

type AuthOptions struct {
	Mode             string `env:"AUTH_MODE" envDefault:"bcrypt" validate:"oneof=bcrypt shared"`
	SharedPassphrase string `env:"AUTH_SHARED_PASSPHRASE" validate:"required_if=Mode shared"`
	BcryptCost       int    `env:"AUTH_BCRYPT_COST" envDefault:"0" validate:"min=0,max=31"`
}

type Configuration struct {
	DBPath      string `env:"INSIGHTS_DB"`
	SourcesFile string `env:"INSIGHTS_SOURCES_FILE"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=silent error warn info debug"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text" validate:"oneof=text json"`

	Auth AuthOptions
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads the env files that exist, overlays the process environment and
// parses the result. Process variables win over file values.
func Load(envFiles []string) (*Configuration, error) {
	environ := map[string]string{}
	if existing := existingFiles(envFiles); len(existing) > 0 {
		fromFiles, err := godotenv.Read(existing...)
		if err != nil {
			return nil, fmt.Errorf("reading env files: %w", err)
		}
		for k, v := range fromFiles {
			environ[k] = v
		}
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			environ[k] = v
		}
	}
	return Parse(environ)
}

// Parse builds a Configuration from an explicit environment
func Parse(environ map[string]string) (*Configuration, error) {
	c := &Configuration{}
	if err := env.ParseWithOptions(c, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.Auth.Mode = strings.ToLower(strings.TrimSpace(c.Auth.Mode))
	if err := validate.Struct(c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

func existingFiles(files []string) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		if st, err := os.Stat(f); err == nil && !st.IsDir() {
			out = append(out, f)
		}
	}
	return out
}
