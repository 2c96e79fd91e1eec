package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/contacts/internal/contacts"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load
const (
	EnvConfig          = "CONTACTS_CONFIG"
	EnvAPIURL          = "CONTACTS_API_URL"
	EnvPageSize        = "CONTACTS_PAGE_SIZE"
	EnvTimeout         = "CONTACTS_TIMEOUT"
	EnvRequirePhoto    = "CONTACTS_REQUIRE_PHOTO"
	EnvRollbackOrphans = "CONTACTS_ROLLBACK_ORPHANS"
)

// DefaultAPIURL is where the development backend listens
const DefaultAPIURL = "http://localhost:8080/contacts"

// Config holds the client settings shared by every command
type Config struct {
	APIURL          string        `yaml:"api_url"`
	PageSize        int           `yaml:"page_size"`
	Timeout         time.Duration `yaml:"timeout"`
	RequirePhoto    bool          `yaml:"require_photo"`
	RollbackOrphans bool          `yaml:"rollback_orphans"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		APIURL:   DefaultAPIURL,
		PageSize: contacts.DefaultPageSize,
		Timeout:  30 * time.Second,
	}
}

// Load layers an optional YAML file and the environment over the defaults.
// An empty path falls back to CONTACTS_CONFIG; a missing file named only by
// that fallback is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case explicit || !errors.Is(err, os.ErrNotExist):
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv(EnvAPIURL); v != "" {
		c.APIURL = v
	}
	if v := getenv(EnvPageSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPageSize, v, err)
		}
		c.PageSize = n
	}
	if v := getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTimeout, v, err)
		}
		c.Timeout = d
	}
	for name, dst := range map[string]*bool{
		EnvRequirePhoto:    &c.RequirePhoto,
		EnvRollbackOrphans: &c.RollbackOrphans,
	} {
		v := getenv(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
		*dst = b
	}
	return nil
}

// Validate checks the settings are usable
func (c Config) Validate() error {
	var errs []error
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("api_url must be an http(s) URL, got %q", c.APIURL))
	}
	if c.PageSize < 1 {
		errs = append(errs, fmt.Errorf("page_size must be positive, got %d", c.PageSize))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	return errors.Join(errs...)
}

// BaseURL returns the API URL without a trailing slash
func (c Config) BaseURL() string {
	return strings.TrimRight(c.APIURL, "/")
}
