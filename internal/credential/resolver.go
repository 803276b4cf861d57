// Package credential resolves the API key used against the billing service.
package credential

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/yescode/quotaline/internal/models"
)

// Environment variables consulted, in priority order.
var EnvVars = []string{"YESCODE_API_KEY", "ANTHROPIC_API_KEY", "ANTHROPIC_AUTH_TOKEN"}

// Keys read from the settings document's "env" object, in priority order.
var SettingsKeys = []string{"ANTHROPIC_AUTH_TOKEN", "ANTHROPIC_API_KEY"}

// SourceKeyFile identifies the plain-text key file in ResolveWithSource results.
const SourceKeyFile = "key_file"

// Sources is everything the resolver reads. Tests inject their own.
type Sources struct {
	LookupEnv    func(key string) (string, bool)
	ReadFile     func(path string) ([]byte, error)
	SettingsPath string
	KeyFile      string
}

// OSSources reads the real process environment and filesystem.
func OSSources(settingsPath, keyFile string) Sources {
	return Sources{
		LookupEnv:    os.LookupEnv,
		ReadFile:     os.ReadFile,
		SettingsPath: settingsPath,
		KeyFile:      keyFile,
	}
}

// Resolver produces the credential. It holds no state between calls.
type Resolver struct {
	src Sources
}

// NewResolver creates a resolver over src. Nil functions fall back to the OS.
func NewResolver(src Sources) *Resolver {
	if src.LookupEnv == nil {
		src.LookupEnv = os.LookupEnv
	}
	if src.ReadFile == nil {
		src.ReadFile = os.ReadFile
	}
	return &Resolver{src: src}
}

// Resolve returns the first non-empty credential, or false when none exists.
func (r *Resolver) Resolve() (models.Credential, bool) {
	cred, _, ok := r.ResolveWithSource()
	return cred, ok
}

// ResolveWithSource is Resolve plus the name of the winning source:
// "env:<VAR>", "settings:env.<KEY>" or "key_file".
func (r *Resolver) ResolveWithSource() (models.Credential, string, bool) {
	for _, name := range EnvVars {
		if v, ok := r.src.LookupEnv(name); ok && strings.TrimSpace(v) != "" {
			return models.Credential(v), "env:" + name, true
		}
	}

	if v, key, ok := r.fromSettings(); ok {
		return models.Credential(v), "settings:env." + key, true
	}

	if v, ok := r.fromKeyFile(); ok {
		return models.Credential(v), SourceKeyFile, true
	}

	return "", "", false
}

// fromSettings reads env.<key> string fields from the settings document.
// Missing or malformed documents yield nothing.
func (r *Resolver) fromSettings() (string, string, bool) {
	if r.src.SettingsPath == "" {
		return "", "", false
	}
	data, err := r.src.ReadFile(r.src.SettingsPath)
	if err != nil {
		return "", "", false
	}

	var settings struct {
		Env map[string]json.RawMessage `json:"env"`
	}
	if json.Unmarshal(data, &settings) != nil {
		return "", "", false
	}

	for _, key := range SettingsKeys {
		raw, ok := settings.Env[key]
		if !ok {
			continue
		}
		var v string
		if json.Unmarshal(raw, &v) != nil || strings.TrimSpace(v) == "" {
			continue
		}
		return v, key, true
	}
	return "", "", false
}

func (r *Resolver) fromKeyFile() (string, bool) {
	if r.src.KeyFile == "" {
		return "", false
	}
	data, err := r.src.ReadFile(r.src.KeyFile)
	if err != nil {
		return "", false
	}
	key := strings.TrimSpace(string(data))
	return key, key != ""
}
