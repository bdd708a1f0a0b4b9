package uphere

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// DefaultAPIHost is the RapidAPI host of the UpHere Space API.
const DefaultAPIHost = "uphere-space1.p.rapidapi.com"

// DefaultTimeout is the per-attempt deadline for upstream calls.
// The retry count bounds how often we call; this bounds a stalled call.
const DefaultTimeout = 30 * time.Second

// Config holds the settings the client consumes. The zero value is not
// usable: APIKey is mandatory and validated before any network attempt.
type Config struct {
	APIKey            string  `toml:"api_key"`
	APIHost           string  `toml:"api_host"`
	RequestsPerSecond float64 `toml:"requests_per_second"`

	// Timeout is the per-attempt deadline. Not part of the config file;
	// override with the UPHERE_TIMEOUT environment variable.
	Timeout time.Duration `toml:"-"`
}

// LoadConfig assembles a Config with precedence: environment variables
// over the config file over defaults. A .env file in the working
// directory is honored, matching common RapidAPI client setups. The
// config file lives at $XDG_CONFIG_HOME/uphere/config.toml (falling back
// to ~/.config/uphere/config.toml) and is optional.
//
// Recognized environment variables: UPHERE_API_KEY (or RAPIDAPI_KEY),
// UPHERE_API_HOST (or RAPIDAPI_HOST), UPHERE_RATE_LIMIT, UPHERE_TIMEOUT.
//
// LoadConfig does not validate the result; NewClient does, so that a
// missing key fails fast with a configuration error rather than a 401
// from the upstream.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		APIHost:           DefaultAPIHost,
		RequestsPerSecond: DefaultRequestsPerSecond,
		Timeout:           DefaultTimeout,
	}

	if path, err := ConfigPath(); err == nil {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return Config{}, Wrap(ErrCodeConfig, err, "parse config file %s", path)
			}
		}
	}

	if v := firstEnv("UPHERE_API_KEY", "RAPIDAPI_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := firstEnv("UPHERE_API_HOST", "RAPIDAPI_HOST"); v != "" {
		cfg.APIHost = v
	}
	if v := os.Getenv("UPHERE_RATE_LIMIT"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, Wrap(ErrCodeConfig, err, "invalid UPHERE_RATE_LIMIT %q", v)
		}
		cfg.RequestsPerSecond = rps
	}
	if v := os.Getenv("UPHERE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, Wrap(ErrCodeConfig, err, "invalid UPHERE_TIMEOUT %q", v)
		}
		cfg.Timeout = d
	}

	return cfg, nil
}

// ConfigPath returns the location of the optional TOML config file,
// following the XDG convention.
func ConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "uphere", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "uphere", "config.toml"), nil
}

// validate checks the config before any network use.
func (c Config) validate() error {
	if c.APIKey == "" {
		return New(ErrCodeConfig, "API key is missing: set UPHERE_API_KEY or add api_key to the config file")
	}
	if c.APIHost == "" {
		return New(ErrCodeConfig, "API host is missing")
	}
	if c.RequestsPerSecond <= 0 {
		return New(ErrCodeConfig, "requests per second must be greater than 0, got %g", c.RequestsPerSecond)
	}
	return nil
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
