// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/MadhuraBhatsoori/secure-sense/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete client configuration.
type Config struct {
	// Version of the config file layout.
	Version string `toml:"version" json:"version"`

	API    APIConfig    `toml:"api" json:"api"`
	Upload UploadConfig `toml:"upload" json:"upload"`
	UI     UIConfig     `toml:"ui" json:"ui"`
	Log    LogConfig    `toml:"log" json:"log"`
}

// APIConfig describes how to reach the analysis backend.
type APIConfig struct {
	// BaseURL is the scheme and host of the backend, e.g. http://localhost:5000
	BaseURL string `toml:"base_url" json:"base_url"`
	// ChatPath is the path of the text analysis endpoint.
	ChatPath string `toml:"chat_path" json:"chat_path"`
	// UploadPath is the path of the audio transcription endpoint.
	UploadPath string `toml:"upload_path" json:"upload_path"`
	// TimeoutSecs bounds every request, upload included.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// RequestsPerMinute caps outgoing requests. 0 disables the limiter.
	RequestsPerMinute int `toml:"requests_per_minute" json:"requests_per_minute"`
	// MaxUploadMB rejects larger recordings before they are sent.
	MaxUploadMB int `toml:"max_upload_mb" json:"max_upload_mb"`
}

// UploadConfig controls which files may be attached.
type UploadConfig struct {
	AllowedExtensions []string `toml:"allowed_extensions" json:"allowed_extensions"`
}

// UIConfig contains terminal presentation settings.
type UIConfig struct {
	// Theme is "auto", "dark" or "light".
	Theme          string `toml:"theme" json:"theme"`
	RenderMarkdown bool   `toml:"render_markdown" json:"render_markdown"`
	ShowTimestamps bool   `toml:"show_timestamps" json:"show_timestamps"`
}

// LogConfig controls the diagnostic log file.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" json:"level"`
	// Path of the log file. Empty means ~/.securesense/securesense.log.
	Path string `toml:"path" json:"path"`
}

// Timeout returns the request timeout as a duration.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSecs) * time.Second
}

// MaxUploadBytes returns the upload limit in bytes.
func (a APIConfig) MaxUploadBytes() int64 {
	return int64(a.MaxUploadMB) << 20
}

// ChatURL joins the base URL and chat path.
func (a APIConfig) ChatURL() string {
	return joinURL(a.BaseURL, a.ChatPath)
}

// UploadURL joins the base URL and upload path.
func (a APIConfig) UploadURL() string {
	return joinURL(a.BaseURL, a.UploadPath)
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	// CurrentVersion is the config layout written by Save.
	CurrentVersion = "1"

	dirName      = ".securesense"
	tomlFileName = "config.toml"
	jsonFileName = "config.json"
	logFileName  = "securesense.log"
)

// Default returns a new Config with default values.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		API: APIConfig{
			BaseURL:           "http://localhost:5000",
			ChatPath:          "/api/chat",
			UploadPath:        "/api/upload",
			TimeoutSecs:       60,
			RequestsPerMinute: 30,
			MaxUploadMB:       25,
		},
		Upload: UploadConfig{
			AllowedExtensions: []string{".mp3", ".wav", ".m4a", ".ogg", ".flac", ".webm", ".aac"},
		},
		UI: UIConfig{
			Theme:          "auto",
			RenderMarkdown: true,
			ShowTimestamps: false,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the configuration directory path (~/.securesense).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, tomlFileName), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, jsonFileName), nil
}

// LogPath returns the configured log file, or the default one in ConfigDir.
func (c *Config) LogPath() (string, error) {
	if c.Log.Path != "" {
		return c.Log.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, logFileName), nil
}

// ensureSecurePermissions tightens a config file to 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads configuration. An explicit path selects that file (TOML or JSON
// by extension); an empty path tries ~/.securesense/config.toml then
// config.json. .env files in the working directory and the config directory
// are loaded into the environment first, without overriding variables that
// are already set. Missing files, including a missing explicit path, are not
// an error.
func Load(path string) (*Config, error) {
	loadDotEnv()

	cfg := Default()

	if path != "" {
		// A named file that does not exist yet behaves like an empty one,
		// so `config set` can create it later.
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return finish(cfg)
		}
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
		return finish(cfg)
	}

	for _, candidate := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		p, err := candidate()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(p); statErr != nil {
			continue
		}
		if err := loadFile(cfg, p); err != nil {
			return nil, err
		}
		break
	}

	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := LoadJSON(cfg, path); err != nil {
			return fmt.Errorf("failed to load JSON config: %w", err)
		}
	default:
		if err := LoadTOML(cfg, path); err != nil {
			return fmt.Errorf("failed to load TOML config: %w", err)
		}
	}
	return nil
}

// loadDotEnv reads .env from the working directory and the config directory.
// godotenv.Load never overwrites variables already present.
func loadDotEnv() {
	files := []string{".env"}
	if dir, err := ConfigDir(); err == nil {
		files = append(files, filepath.Join(dir, ".env"))
	}
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}
}

// LoadTOML loads configuration from a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		fmt.Fprintf(os.Stderr, "Warning: unknown config keys in %s: %s\n", path, strings.Join(keys, ", "))
	}
	return nil
}

// LoadJSON loads configuration from a JSON file into cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// fillDefaults replaces zero values left by a partial config file.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}

	// API
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = defaults.API.BaseURL
	}
	if cfg.API.ChatPath == "" {
		cfg.API.ChatPath = defaults.API.ChatPath
	}
	if cfg.API.UploadPath == "" {
		cfg.API.UploadPath = defaults.API.UploadPath
	}
	if cfg.API.TimeoutSecs == 0 {
		cfg.API.TimeoutSecs = defaults.API.TimeoutSecs
	}
	if cfg.API.MaxUploadMB == 0 {
		cfg.API.MaxUploadMB = defaults.API.MaxUploadMB
	}

	// Upload
	if len(cfg.Upload.AllowedExtensions) == 0 {
		cfg.Upload.AllowedExtensions = defaults.Upload.AllowedExtensions
	}

	// UI
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}

	// Log
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to ~/.securesense/config.toml.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg as TOML with owner-only permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# Secure Sense client configuration\n")
	buf.WriteString("# Environment variables (SECURESENSE_*) override these values.\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes cfg as indented JSON with owner-only permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes one invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors collects every invalid setting found by Validate.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

var (
	validThemes    = map[string]bool{"auto": true, "dark": true, "light": true}
	validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
)

// Validate checks the configuration and returns ValidateErrors if any
// setting is unusable.
func (c *Config) Validate() error {
	var errs ValidateErrors

	u, err := url.Parse(c.API.BaseURL)
	switch {
	case err != nil:
		errs = append(errs, ValidationError{Field: "api.base_url", Message: fmt.Sprintf("invalid URL: %v", err)})
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, ValidationError{Field: "api.base_url", Message: fmt.Sprintf("scheme must be http or https, got %q", u.Scheme)})
	case u.Host == "":
		errs = append(errs, ValidationError{Field: "api.base_url", Message: "missing host"})
	}

	if !strings.HasPrefix(c.API.ChatPath, "/") {
		errs = append(errs, ValidationError{Field: "api.chat_path", Message: "must start with /"})
	}
	if !strings.HasPrefix(c.API.UploadPath, "/") {
		errs = append(errs, ValidationError{Field: "api.upload_path", Message: "must start with /"})
	}
	if c.API.TimeoutSecs < 1 || c.API.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{Field: "api.timeout_secs", Message: fmt.Sprintf("must be between 1 and 600, got %d", c.API.TimeoutSecs)})
	}
	if c.API.RequestsPerMinute < 0 {
		errs = append(errs, ValidationError{Field: "api.requests_per_minute", Message: "cannot be negative"})
	}
	if c.API.MaxUploadMB < 1 {
		errs = append(errs, ValidationError{Field: "api.max_upload_mb", Message: "must be at least 1"})
	}

	for _, ext := range c.Upload.AllowedExtensions {
		if strings.TrimSpace(strings.TrimPrefix(ext, ".")) == "" {
			errs = append(errs, ValidationError{Field: "upload.allowed_extensions", Message: "contains an empty extension"})
			break
		}
	}

	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{Field: "ui.theme", Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme)})
	}
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{Field: "log.level", Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level)})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// Environment variables read by ApplyEnvOverrides.
const (
	EnvAPIURL   = "SECURESENSE_API_URL"
	EnvTimeout  = "SECURESENSE_TIMEOUT"
	EnvLogLevel = "SECURESENSE_LOG_LEVEL"
	EnvTheme    = "SECURESENSE_THEME"
	EnvMarkdown = "SECURESENSE_MARKDOWN"
)

// ApplyEnvOverrides applies SECURESENSE_* environment variables.
// Unparseable numeric values are ignored.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.API.TimeoutSecs = secs
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvTheme); v != "" {
		c.UI.Theme = strings.ToLower(v)
	}
	if v := os.Getenv(EnvMarkdown); v != "" {
		c.UI.RenderMarkdown = parseBool(v)
	}
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g. "api.base_url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set assigns a configuration value from its string form using dot notation.
// The result is not validated; call Validate before saving.
func (c *Config) Set(key, value string) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %w", key, err)
		}
		field.SetInt(int64(n))
	case reflect.Bool:
		field.SetBool(parseBool(value))
	case reflect.Slice:
		parts := strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ' ' })
		field.Set(reflect.ValueOf(parts))
	default:
		return fmt.Errorf("cannot assign to %s of type %s", key, field.Type())
	}
	return nil
}

// lookup walks the struct tree following toml tag names.
func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		field, ok := fieldByTag(v, strings.ReplaceAll(strings.ToLower(part), "-", "_"))
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("%s is a section, not a value", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if tomlName(t.Field(i)) == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func tomlName(f reflect.StructField) string {
	return strings.Split(f.Tag.Get("toml"), ",")[0]
}

// Keys returns every settable key in dot notation, sorted.
func Keys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		section := t.Field(i)
		if section.Type.Kind() != reflect.Struct {
			keys = append(keys, tomlName(section))
			continue
		}
		for j := 0; j < section.Type.NumField(); j++ {
			keys = append(keys, tomlName(section)+"."+tomlName(section.Type.Field(j)))
		}
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Upload.AllowedExtensions = append([]string(nil), c.Upload.AllowedExtensions...)
	return &clone
}

// String renders the configuration as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the process-wide configuration, loading it from the default
// locations on first access. Falls back to defaults if loading fails.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load("")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal replaces the process-wide configuration.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting clears the global config state between tests.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
