package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/yescode/quotaline/internal/errors"
	"gopkg.in/yaml.v3"
)

// PathEnvVar overrides the config file location.
const PathEnvVar = "QUOTALINE_CONFIG_PATH"

// Loader handles configuration loading and reloading
type Loader struct {
	path     string
	mu       sync.RWMutex
	config   *Config
	onChange func(*Config)
}

// NewLoader creates a new configuration loader
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Path returns the file the loader reads.
func (l *Loader) Path() string {
	return l.path
}

// Load reads the configuration from the file.
func (l *Loader) Load() (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	content, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &errors.ErrConfigNotFound{Path: l.path}
		}
		return nil, &errors.ErrFileRead{Path: l.path, Err: err}
	}

	config, err := Parse(substituteEnvVars(content))
	if err != nil {
		return nil, err
	}

	l.config = config
	return config, nil
}

// LoadOrDefault behaves like Load but treats a missing file as the defaults.
func (l *Loader) LoadOrDefault() (*Config, error) {
	config, err := l.Load()
	if err == nil {
		return config, nil
	}
	if _, ok := err.(*errors.ErrConfigNotFound); !ok {
		return nil, err
	}

	config = Default()
	l.mu.Lock()
	l.config = config
	l.mu.Unlock()
	return config, nil
}

// Reload re-reads the file and notifies the change callback.
func (l *Loader) Reload() (*Config, error) {
	config, err := l.LoadOrDefault()
	if err != nil {
		return nil, err
	}

	l.mu.RLock()
	onChange := l.onChange
	l.mu.RUnlock()

	if onChange != nil {
		onChange(config)
	}

	return config, nil
}

// Get returns the current configuration
func (l *Loader) Get() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.config
}

// SetOnChange sets a callback to be called when configuration changes
func (l *Loader) SetOnChange(fn func(*Config)) {
	l.mu.Lock()
	l.onChange = fn
	l.mu.Unlock()
}

// ResolvePath returns the preferred path, the env override or the default path.
func ResolvePath(preferred string) string {
	if preferred != "" {
		return preferred
	}
	if envPath := os.Getenv(PathEnvVar); envPath != "" {
		return envPath
	}
	return DefaultPath()
}

// Parse parses configuration from byte slice
func Parse(data []byte) (*Config, error) {
	// Defaults are applied before unmarshalling so absent keys keep them.
	config := Default()

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, &errors.ErrConfigParse{Err: err}
	}

	if err := config.Validate(); err != nil {
		return nil, &errors.ErrConfigValidation{Err: err}
	}

	return config, nil
}

// MustParse parses configuration or panics. Intended for tests and fixtures.
func MustParse(data []byte) *Config {
	config, err := Parse(data)
	if err != nil {
		panic(fmt.Sprintf("failed to parse config: %v", err))
	}
	return config
}

func substituteEnvVars(content []byte) []byte {
	return []byte(os.ExpandEnv(string(content)))
}
