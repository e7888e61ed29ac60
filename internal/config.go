package internal

import (
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrConfigInvalid is returned by Config.Verify
var ErrConfigInvalid = errors.New("configuration is invalid")

const defaultTimeout = 30 * time.Second

// Config is the iris-session configuration
type Config struct {
	// APIRoot is the base URL of the IRIS server, e.g. https://iris.example.org/iris
	APIRoot string `yaml:"apiRoot"`

	// Timeout bounds every HTTP request
	Timeout time.Duration `yaml:"timeout,omitempty"`

	Storage StorageConfig `yaml:"storage"`
	Cert    CertConfig    `yaml:"cert,omitempty"`
}

// StorageConfig selects the local storage backend
type StorageConfig struct {
	Backend string `yaml:"backend,omitempty"` // sqlite, file or memory
	Path    string `yaml:"path,omitempty"`
}

// CertConfig carries an extra CA for servers with private certificates
type CertConfig struct {
	// base64 encoded PEM
	CA string `yaml:"ca,omitempty"`
}

// LoadConfig reads the config file at path, then applies environment
// overrides and defaults. A missing file is only an error when required is
// set (the user named it explicitly).
func LoadConfig(path string, required bool, paths Paths) (*Config, error) {
	cfg, found, err := ReadConfigFile(path)
	if err != nil {
		return nil, err
	}
	if !found {
		if required {
			return nil, fmt.Errorf("failed to read config: %s: %w", path, os.ErrNotExist)
		}
		LogDebug("No config file at %s, using defaults", path)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults(paths)
	return cfg, nil
}

// ReadConfigFile reads the config file as written, without environment
// overrides or defaults. found is false when the file does not exist.
func ReadConfigFile(path string) (cfg *Config, found bool, err error) {
	cfg = &Config{}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, false, &ParseError{Source: "config", Key: path, Err: err}
	}
	LogDebug("Loaded config from %s", path)
	return cfg, true, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (c *Config) applyEnv() error {
	c.APIRoot = getEnv("IRIS_API_ROOT", c.APIRoot)
	c.Storage.Backend = getEnv("IRIS_STORAGE_BACKEND", c.Storage.Backend)
	c.Storage.Path = getEnv("IRIS_STORAGE_PATH", c.Storage.Path)

	if v := os.Getenv("IRIS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: IRIS_TIMEOUT: %v", ErrConfigInvalid, err)
		}
		c.Timeout = d
	}
	return nil
}

func (c *Config) applyDefaults(paths Paths) {
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendSQLite
	}
	if c.Storage.Path == "" {
		c.Storage.Path = paths.StoragePathFor(c.Storage.Backend)
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Verify checks the settings needed to talk to the server
func (c *Config) Verify() error {
	u, err := url.Parse(c.APIRoot)
	if err != nil || !u.IsAbs() {
		return fmt.Errorf("%w: apiRoot is not an absolute URL: %q", ErrConfigInvalid, c.APIRoot)
	}
	if c.Cert.CA != "" {
		bin, err := base64.StdEncoding.DecodeString(c.Cert.CA)
		if err != nil {
			return fmt.Errorf("%w: cert.ca is not base64", ErrConfigInvalid)
		}
		if blk, _ := pem.Decode(bin); blk == nil {
			return fmt.Errorf("%w: cert.ca is not PEM", ErrConfigInvalid)
		}
	}
	return nil
}

// Save writes the config as YAML to path
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
