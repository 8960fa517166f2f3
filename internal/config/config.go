// Package config loads the client's settings from an optional YAML file
// and MAIDMANAGER_* environment variables. Environment values win.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const envPrefix = "MAIDMANAGER_"

type Config struct {
	// BaseURL is the attendance gateway, e.g. http://localhost:5000/.
	BaseURL string `yaml:"base_url"`

	// TokenHeader carries the credential on authenticated calls.
	TokenHeader string `yaml:"token_header"`

	// Timeout bounds each gateway call, as a Go duration string.
	Timeout string `yaml:"timeout"`

	// DataDir holds the local database with the sealed session.
	DataDir string `yaml:"data_dir"`

	// Passphrase seals the stored session. When empty a random one is
	// generated once and kept next to the database.
	Passphrase string `yaml:"passphrase"`

	LogLevel string `yaml:"log_level"`

	// LogBodies logs request and response bodies at debug, except for
	// auth endpoints.
	LogBodies bool `yaml:"log_bodies"`

	// Listen is the address of the state bridge started by serve.
	Listen string `yaml:"listen"`
}

func Default() *Config {
	return &Config{
		BaseURL:     "http://localhost:5000/",
		TokenHeader: "x-auth-token",
		Timeout:     "30s",
		DataDir:     defaultDataDir(),
		LogLevel:    "info",
		Listen:      "127.0.0.1:8090",
	}
}

func defaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "maidmanager")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "maidmanager-data"
	}
	return filepath.Join(home, ".local", "share", "maidmanager")
}

// DefaultPath is where the config file is looked for when neither
// --config nor MAIDMANAGER_CONFIG names one.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "maidmanager", "config.yaml")
}

// Load reads path, or MAIDMANAGER_CONFIG, or the default location, then
// applies environment overrides. A missing default file is not an error;
// a missing file that was asked for is.
func Load(path string) (*Config, error) {
	explicit := true
	if path == "" {
		path = os.Getenv(envPrefix + "CONFIG")
	}
	if path == "" {
		path = DefaultPath()
		explicit = false
	}

	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("load config %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"BASE_URL":     &c.BaseURL,
		"TOKEN_HEADER": &c.TokenHeader,
		"TIMEOUT":      &c.Timeout,
		"DATA_DIR":     &c.DataDir,
		"PASSPHRASE":   &c.Passphrase,
		"LOG_LEVEL":    &c.LogLevel,
		"LISTEN":       &c.Listen,
	}
	for name, field := range strs {
		if v := os.Getenv(envPrefix + name); v != "" {
			*field = v
		}
	}
	if v := os.Getenv(envPrefix + "LOG_BODIES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sLOG_BODIES: %w", envPrefix, err)
		}
		c.LogBodies = b
	}
	return nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("base_url %q is not an absolute URL", c.BaseURL))
	}
	if _, err := c.TimeoutDuration(); err != nil {
		errs = append(errs, err)
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}
	if c.TokenHeader == "" {
		errs = append(errs, errors.New("token_header is required"))
	}
	return errors.Join(errs...)
}

func (c *Config) TimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("timeout %q is not a positive duration", c.Timeout)
	}
	return d, nil
}

// DBPath is the local SQLite database.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "maidmanager.db")
}

// PassphrasePath is where a generated passphrase is kept.
func (c *Config) PassphrasePath() string {
	return filepath.Join(c.DataDir, "passphrase")
}
