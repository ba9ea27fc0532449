package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"stratus/internal/lang"
)

const (
	ConfigFileName = "config.yaml"
	ConfigDirName  = "stratus"

	// DefaultAPIURL is only a development convenience; real deployments set
	// api_url explicitly or export STRATUS_API_URL.
	DefaultAPIURL = "http://localhost:9000"
)

// Settable keys. Session state lives under the session block and is managed
// through the Session type, not `config set`.
const (
	KeyAPIURL = "api_url"
	KeyLang   = "lang"

	KeySessionActive   = "session.active"
	KeySessionToken    = "session.token"
	KeySessionUsername = "session.username"
	KeySessionUID      = "session.uid"
	KeySessionAvatar   = "session.avatar"
	KeySessionEmail    = "session.email"
)

// Manager owns the persisted client-side state: the API base URL override,
// the language preference, and the session block. Everything is kept in one
// viper-backed YAML file under the user config directory.
type Manager struct {
	v    *viper.Viper
	path string
}

func NewManager() (*Manager, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("STRATUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault(KeyAPIURL, DefaultAPIURL)

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	return &Manager{v: v, path: path}, nil
}

func configPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error getting user home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", ConfigDirName)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("error creating config directory: %w", err)
	}

	return filepath.Join(configDir, ConfigFileName), nil
}

// NewManagerAt is the test hook: same manager, explicit file location.
func NewManagerAt(path string) (*Manager, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault(KeyAPIURL, DefaultAPIURL)

	if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return &Manager{v: v, path: path}, nil
}

func (m *Manager) save() error {
	if err := m.v.WriteConfigAs(m.path); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// Set stores a value and persists immediately.
func (m *Manager) Set(key string, value any) error {
	m.v.Set(strings.ToLower(key), value)
	return m.save()
}

// Get returns the string form of a value and whether it is non-empty.
func (m *Manager) Get(key string) (string, bool) {
	value := m.v.GetString(strings.ToLower(key))
	return value, value != ""
}

// GetBool returns a boolean value.
func (m *Manager) GetBool(key string) bool {
	return m.v.GetBool(strings.ToLower(key))
}

// Delete blanks out a value and persists. It reports whether the key held
// anything to begin with.
func (m *Manager) Delete(key string) (bool, error) {
	key = strings.ToLower(key)
	if m.v.GetString(key) == "" && !m.v.GetBool(key) {
		return false, nil
	}
	m.v.Set(key, "")
	return true, m.save()
}

// SetAll stores several values under one save, used by the session lifecycle
// so login/logout are single writes.
func (m *Manager) SetAll(values map[string]any) error {
	for key, value := range values {
		m.v.Set(strings.ToLower(key), value)
	}
	return m.save()
}

// Settings returns the current configuration flattened to dot-notation keys,
// sorted, with empty values dropped. Secrets under the session block are
// masked.
func (m *Manager) Settings() []Setting {
	flat := flattenMap("", m.v.AllSettings())

	settings := make([]Setting, 0, len(flat))
	for key, value := range flat {
		s := fmt.Sprint(value)
		if s == "" {
			continue
		}
		if key == KeySessionToken {
			s = maskSecret(s)
		}
		settings = append(settings, Setting{Key: key, Value: s})
	}
	sort.Slice(settings, func(i, j int) bool { return settings[i].Key < settings[j].Key })
	return settings
}

type Setting struct {
	Key   string
	Value string
}

// APIURL resolves the effective API base URL.
func (m *Manager) APIURL() string {
	if v := m.v.GetString(KeyAPIURL); v != "" {
		return v
	}
	return DefaultAPIURL
}

// Lang resolves the effective language for the Lang request header.
func (m *Manager) Lang() string {
	return lang.Detect(m.v.GetString(KeyLang))
}

func maskSecret(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// flattenMap converts viper's nested settings into dot-notation leaves.
func flattenMap(prefix string, nested map[string]any) map[string]any {
	flat := make(map[string]any)
	for key, value := range nested {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if child, ok := value.(map[string]any); ok {
			for k, v := range flattenMap(full, child) {
				flat[k] = v
			}
			continue
		}
		flat[full] = value
	}
	return flat
}
