// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// isolate points the home directory at a temp dir and clears overrides so
// tests never read the developer's real configuration.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, k := range []string{EnvAPIURL, EnvTimeout, EnvLogLevel, EnvTheme, EnvMarkdown} {
		t.Setenv(k, "")
	}
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.API.ChatURL() != "http://localhost:5000/api/chat" {
		t.Errorf("ChatURL() = %q", cfg.API.ChatURL())
	}
	if cfg.API.UploadURL() != "http://localhost:5000/api/upload" {
		t.Errorf("UploadURL() = %q", cfg.API.UploadURL())
	}
	if cfg.API.Timeout() != 60*time.Second {
		t.Errorf("Timeout() = %v", cfg.API.Timeout())
	}
}

func TestLoad_NoFilesUsesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:5000" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
}

func TestLoad_TOMLPartialFillsDefaults(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, dirName, tomlFileName), `
[api]
base_url = "https://analysis.example.com/"
timeout_secs = 15

[ui]
theme = "dark"
`)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.API.ChatURL() != "https://analysis.example.com/api/chat" {
		t.Errorf("ChatURL() = %q", cfg.API.ChatURL())
	}
	if cfg.API.TimeoutSecs != 15 {
		t.Errorf("TimeoutSecs = %d, want 15", cfg.API.TimeoutSecs)
	}
	if cfg.API.UploadPath != "/api/upload" {
		t.Errorf("UploadPath = %q, want default", cfg.API.UploadPath)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("Theme = %q", cfg.UI.Theme)
	}
	if len(cfg.Upload.AllowedExtensions) == 0 {
		t.Error("AllowedExtensions should be filled from defaults")
	}
}

func TestLoad_JSONFallback(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, dirName, jsonFileName), `{"api": {"base_url": "http://10.0.0.5:8080"}}`)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.API.BaseURL != "http://10.0.0.5:8080" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
}

func TestLoad_ExplicitPath(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.toml")
	writeFile(t, path, "[log]\nlevel = \"debug\"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%s) error: %v", path, err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}

	missing, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load(missing) error: %v", err)
	}
	if missing.API.BaseURL != Default().API.BaseURL {
		t.Errorf("API.BaseURL = %q, want default", missing.API.BaseURL)
	}

	broken := filepath.Join(t.TempDir(), "broken.toml")
	writeFile(t, broken, "[api\n")
	if _, err := Load(broken); err == nil {
		t.Error("expected error for unparsable explicit file")
	}
}

func TestLoad_InvalidConfigRejected(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, dirName, tomlFileName), "[api]\nbase_url = \"ftp://nope\"\n")

	_, err := Load("")
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verrs ValidateErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("error %v is not ValidateErrors", err)
	}
	if verrs[0].Field != "api.base_url" {
		t.Errorf("Field = %q", verrs[0].Field)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv(EnvAPIURL, "http://override:9000")
	t.Setenv(EnvTimeout, "5")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvTheme, "light")
	t.Setenv(EnvMarkdown, "false")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.API.BaseURL != "http://override:9000" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSecs != 5 {
		t.Errorf("TimeoutSecs = %d", cfg.API.TimeoutSecs)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Theme = %q", cfg.UI.Theme)
	}
	if cfg.UI.RenderMarkdown {
		t.Error("RenderMarkdown should be false")
	}
}

func TestLoad_DotEnv(t *testing.T) {
	home := isolate(t)
	// Unset rather than empty so godotenv is allowed to populate it.
	os.Unsetenv(EnvTimeout)
	t.Cleanup(func() { os.Unsetenv(EnvTimeout) })
	writeFile(t, filepath.Join(home, dirName, ".env"), EnvTimeout+"=42\n")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.API.TimeoutSecs != 42 {
		t.Errorf("TimeoutSecs = %d, want 42 from .env", cfg.API.TimeoutSecs)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.API.ChatPath = "api/chat"
	cfg.API.TimeoutSecs = 0
	cfg.UI.Theme = "neon"
	cfg.Log.Level = "trace"

	err := cfg.Validate()
	var verrs ValidateErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Validate() = %v", err)
	}
	if len(verrs) != 4 {
		t.Errorf("got %d errors, want 4: %v", len(verrs), verrs)
	}
}

func TestSaveAndReload(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.API.BaseURL = "https://saved.example.com"
	cfg.UI.ShowTimestamps = true
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML() error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.API.BaseURL != cfg.API.BaseURL || !loaded.UI.ShowTimestamps {
		t.Errorf("round trip lost values: %+v", loaded)
	}

	jsonPath := filepath.Join(t.TempDir(), "config.json")
	if err := SaveJSON(cfg, jsonPath); err != nil {
		t.Fatalf("SaveJSON() error: %v", err)
	}
	if loaded, err := Load(jsonPath); err != nil || loaded.API.BaseURL != cfg.API.BaseURL {
		t.Errorf("JSON round trip: %v %+v", err, loaded)
	}
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	if err := cfg.Set("api.timeout_secs", "90"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if v, _ := cfg.Get("api.timeout_secs"); v != 90 {
		t.Errorf("Get(api.timeout_secs) = %v", v)
	}

	if err := cfg.Set("ui.render-markdown", "no"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if cfg.UI.RenderMarkdown {
		t.Error("RenderMarkdown should be false")
	}

	if err := cfg.Set("upload.allowed_extensions", ".mp3, .wav"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if got := cfg.Upload.AllowedExtensions; len(got) != 2 || got[1] != ".wav" {
		t.Errorf("AllowedExtensions = %v", got)
	}

	if err := cfg.Set("api.timeout_secs", "soon"); err == nil {
		t.Error("expected error for non-numeric value")
	}
	if _, err := cfg.Get("api.nope"); err == nil {
		t.Error("expected error for unknown key")
	}
	if _, err := cfg.Get("api"); err == nil {
		t.Error("expected error for section key")
	}
}

func TestKeys(t *testing.T) {
	keys := Keys()
	want := map[string]bool{"api.base_url": false, "ui.theme": false, "log.level": false, "version": false}
	for _, k := range keys {
		if _, ok := want[k]; ok {
			want[k] = true
		}
	}
	for k, found := range want {
		if !found {
			t.Errorf("Keys() missing %q", k)
		}
	}
}

func TestClone_IsDeep(t *testing.T) {
	cfg := Default()
	clone := cfg.Clone()
	clone.Upload.AllowedExtensions[0] = ".xyz"
	if cfg.Upload.AllowedExtensions[0] == ".xyz" {
		t.Error("Clone shares the extension slice")
	}
}

// =============================================================================
// GLOBAL SINGLETON
// =============================================================================

// TestConfig_ConcurrentAccess checks Global and SetGlobal under the race detector.
func TestConfig_ConcurrentAccess(t *testing.T) {
	isolate(t)
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetGlobal(Default())
		}()
		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}
	wg.Wait()
}

func TestGlobal_FallsBackToDefaultsOnInvalidFile(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, dirName, tomlFileName), "[ui]\ntheme = \"neon\"\n")
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	cfg := Global()
	if cfg == nil {
		t.Fatal("Global() returned nil")
	}
	if cfg.UI.Theme != "auto" {
		t.Errorf("Theme = %q, want default", cfg.UI.Theme)
	}
}

func TestGlobal_SetGlobalOverwrites(t *testing.T) {
	isolate(t)
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	_ = Global()
	custom := Default()
	custom.API.BaseURL = "http://custom:1"
	SetGlobal(custom)

	if Global().API.BaseURL != "http://custom:1" {
		t.Errorf("Global() did not return the config set by SetGlobal")
	}
}
