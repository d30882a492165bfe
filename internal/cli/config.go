// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - The "config" command.
//
// Command: config
// Short:   Show or change configuration
//
// Examples:
//   securesense config                          Show effective configuration
//   securesense config path                     Show config file location
//   securesense config init                     Write default config.toml
//   securesense config get api.base_url         Print one value
//   securesense config set api.timeout_secs 90  Change and save one value

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/MadhuraBhatsoori/secure-sense/internal/config"
)

// ErrConfigExists is returned by "config init" when the file is present.
var ErrConfigExists = errors.New("config file already exists")

// HandleConfig handles the "config" command.
func HandleConfig(args Args, w io.Writer) error {
	switch args.Subcommand {
	case "", "show":
		return handleConfigShow(args, w)
	case "path":
		return handleConfigPath(args, w)
	case "init":
		return handleConfigInit(args, w)
	case "get":
		return handleConfigGet(args, w)
	case "set":
		return handleConfigSet(args, w)
	default:
		return &UsageError{
			Message: fmt.Sprintf("unknown config subcommand: %s", args.Subcommand),
			Example: "securesense config [show|path|init|get|set]",
		}
	}
}

// configFilePath resolves the file the config command reads and writes.
func configFilePath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	tomlPath, err := config.ConfigPathTOML()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(tomlPath); err == nil {
		return tomlPath, nil
	}
	jsonPath, err := config.ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			return jsonPath, nil
		}
	}
	return tomlPath, nil
}

// handleConfigShow prints the effective configuration, including
// environment overrides.
func handleConfigShow(args Args, w io.Writer) error {
	cfg, err := config.Load(args.ConfigPath)
	if err != nil {
		return err
	}

	path, _ := configFilePath(args)

	fmt.Fprintln(w, TitleStyle.Render("Secure Sense Configuration"))
	fmt.Fprintln(w, RenderSeparator(41))
	for _, key := range config.Keys() {
		value, err := cfg.Get(key)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "  %s%s\n", RenderLabel(key), ValueStyle.Render(formatValue(value)))
	}
	fmt.Fprintln(w, RenderSeparator(41))
	fmt.Fprintf(w, "Config file: %s\n", DimStyle.Render(path))
	return nil
}

func handleConfigPath(args Args, w io.Writer) error {
	path, err := configFilePath(args)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, path)
	return nil
}

// handleConfigInit writes the default configuration. An existing file is
// left alone.
func handleConfigInit(args Args, w io.Writer) error {
	path, err := configFilePath(args)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return &CommandError{Command: "config", Action: "init", Reason: path, Err: ErrConfigExists}
	}
	if err := saveConfigFile(config.Default(), path); err != nil {
		return &CommandError{Command: "config", Action: "init", Reason: "could not write config", Err: err}
	}
	fmt.Fprintln(w, SuccessStyle.Render("Wrote "+path))
	return nil
}

func handleConfigGet(args Args, w io.Writer) error {
	if args.ConfigKey == "" {
		return ErrMissingArgument("KEY", "securesense config get api.base_url")
	}
	cfg, err := config.Load(args.ConfigPath)
	if err != nil {
		return err
	}
	value, err := cfg.Get(args.ConfigKey)
	if err != nil {
		return &UsageError{Message: err.Error(), Example: "keys: " + strings.Join(config.Keys(), ", ")}
	}
	fmt.Fprintln(w, formatValue(value))
	return nil
}

// handleConfigSet changes one value in the config file. Environment
// overrides are not applied, so they are never written back.
func handleConfigSet(args Args, w io.Writer) error {
	if args.ConfigKey == "" || args.ConfigVal == "" {
		return ErrMissingArgument("KEY VALUE", "securesense config set api.base_url http://localhost:5000")
	}

	path, err := configFilePath(args)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if _, statErr := os.Stat(path); statErr == nil {
		if err := loadConfigFile(cfg, path); err != nil {
			return err
		}
	}

	if err := cfg.Set(args.ConfigKey, args.ConfigVal); err != nil {
		return &UsageError{Message: err.Error(), Example: "keys: " + strings.Join(config.Keys(), ", ")}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := saveConfigFile(cfg, path); err != nil {
		return &CommandError{Command: "config", Action: "set", Reason: "could not write config", Err: err}
	}

	value, _ := cfg.Get(args.ConfigKey)
	fmt.Fprintf(w, "%s %s = %s\n", SuccessStyle.Render("Set"), args.ConfigKey, formatValue(value))
	return nil
}

func isJSONPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func loadConfigFile(cfg *config.Config, path string) error {
	if isJSONPath(path) {
		return config.LoadJSON(cfg, path)
	}
	return config.LoadTOML(cfg, path)
}

func saveConfigFile(cfg *config.Config, path string) error {
	if isJSONPath(path) {
		return config.SaveJSON(cfg, path)
	}
	return config.SaveTOML(cfg, path)
}

// formatValue renders a config value the way "config set" accepts it.
func formatValue(v interface{}) string {
	switch val := v.(type) {
	case []string:
		return strings.Join(val, ",")
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}
