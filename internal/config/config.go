// Package config loads and validates the tool's configuration from an
// optional TOML file, environment variables and command-line flags, in
// that order of precedence (flags win).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid indicates the effective configuration failed validation.
// It is raised before any network call is made.
var ErrInvalid = errors.New("config: invalid configuration")

// envPrefix is the prefix for environment variable overrides,
// e.g. KINDE_PURGE_HOST, KINDE_PURGE_CLIENT_SECRET.
const envPrefix = "KINDE_PURGE_"

// maxPageSize is the largest page size the management API accepts.
const maxPageSize = 500

// Config holds the effective configuration for a purge run.
type Config struct {
	// Host is the base URL of the Kinde business, e.g. https://acme.kinde.com.
	Host string `toml:"host" validate:"required,url"`
	// ClientID and ClientSecret are the M2M application credentials.
	ClientID     string `toml:"client_id" validate:"required"`
	ClientSecret string `toml:"client_secret" validate:"required"`
	// Audience is the API audience for the token exchange.
	// Defaults to "<host>/api" when empty.
	Audience string `toml:"audience" validate:"omitempty,url"`
	// OrgCode scopes the identities flow to one organisation.
	OrgCode string `toml:"org_code"`
	// PageSize is the page size for list requests (clamped to the API maximum).
	PageSize int `toml:"page_size" validate:"gt=0"`
	// MaxRetries bounds backoff retries per request on 429/5xx responses.
	MaxRetries int `toml:"max_retries" validate:"gte=0"`
	// BaseDelayMS is the first backoff delay in milliseconds.
	BaseDelayMS int `toml:"base_delay_ms" validate:"gt=0"`
	// RequestsPerSecond and Burst configure client-side request pacing.
	RequestsPerSecond float64 `toml:"requests_per_second" validate:"gt=0"`
	Burst             int     `toml:"burst" validate:"gt=0"`
	// Confirm must be set for any destructive flow to execute.
	Confirm bool `toml:"confirm"`
	// DryRun enumerates resources without issuing deletes. Flag-only.
	DryRun bool `toml:"-"`
	// LogJSON switches log output to JSON lines. Flag-only.
	LogJSON bool `toml:"-"`
}

// Default returns the configuration defaults applied before any file,
// environment or flag overrides.
func Default() *Config {
	return &Config{
		PageSize:          100,
		MaxRetries:        3,
		BaseDelayMS:       500,
		RequestsPerSecond: 5.0,
		Burst:             10,
	}
}

// Load reads the configuration file at path (when non-empty) over the
// defaults and then applies environment variable overrides. The file is
// optional: a missing file is only an error when a path was given
// explicitly.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrInvalid, path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalid, path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays KINDE_PURGE_* environment variables.
func (c *Config) applyEnv() {
	setString := func(key string, dst *string) {
		if v := os.Getenv(envPrefix + key); v != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(envPrefix + key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString("HOST", &c.Host)
	setString("CLIENT_ID", &c.ClientID)
	setString("CLIENT_SECRET", &c.ClientSecret)
	setString("AUDIENCE", &c.Audience)
	setString("ORG_CODE", &c.OrgCode)
	setInt("PAGE_SIZE", &c.PageSize)
	setInt("MAX_RETRIES", &c.MaxRetries)
	setInt("BASE_DELAY_MS", &c.BaseDelayMS)

	if v := os.Getenv(envPrefix + "CONFIRM"); v != "" {
		c.Confirm = v == "true" || v == "1"
	}
}

// Normalise fills derived defaults and clamps out-of-range values.
func (c *Config) Normalise() {
	c.Host = strings.TrimRight(c.Host, "/")
	if c.Audience == "" && c.Host != "" {
		c.Audience = c.Host + "/api"
	}
	if c.PageSize > maxPageSize {
		c.PageSize = maxPageSize
	}
}

// Validate checks the effective configuration. All failures are wrapped
// in ErrInvalid so callers can fail fast before any network activity.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Redacted returns a copy safe for display, with the client secret masked.
func (c *Config) Redacted() Config {
	out := *c
	if out.ClientSecret != "" {
		out.ClientSecret = "********"
	}
	return out
}
