// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing for securesense.
package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdConfig
	CmdVersion
	CmdHelp
	CmdUnknown
)

// String returns the command name as typed on the command line.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdChat:
		return "chat"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	APIURL     string // --api-url, overrides api.base_url
	ConfigPath string // --config, explicit config file
	Plain      bool   // --plain, use the line REPL instead of the TUI
	Verbose    bool

	// Command-specific
	Subcommand string
	ConfigKey  string
	ConfigVal  string
	Topic      string // chat --topic

	// Name is the unrecognized command for CmdUnknown.
	Name string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `securesense - phishing email and spam call analysis in your terminal

Usage:
  securesense                       Start the chat TUI (default)
  securesense chat [--topic T]      Line-oriented chat
  securesense config [show]         Show the effective configuration
  securesense config path           Show the config file location
  securesense config init           Write a default config file
  securesense config get KEY        Print one setting (e.g. api.base_url)
  securesense config set KEY VALUE  Change one setting and save
  securesense version               Show version information
  securesense help                  Show this help

Global Flags:
  --api-url URL      Analysis backend base URL (overrides config)
  --config FILE      Config file to load (TOML or JSON)
  --plain            Use the line-oriented chat instead of the TUI
  -v, --verbose      Log debug output

Topics:
  phishing   Paste an email to have it analyzed
  spam       Attach a call recording (mp3, wav, m4a, ogg, flac, webm)
  advice     Ask a general security question

TUI Keys:
  F1 F2 F3   Pick a topic            Enter      Send
  C-o        Attach a recording      A-Enter    New line
  C-s        Export transcript       C-c        Quit

Environment:
  SECURESENSE_API_URL, SECURESENSE_TIMEOUT, SECURESENSE_LOG_LEVEL,
  SECURESENSE_THEME, SECURESENSE_MARKDOWN

Configuration is read from ~/.securesense/config.toml (or config.json).
`

// PrintUsage writes the usage text to stdout.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion writes version information to w.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "securesense %s\n", Version)
	fmt.Fprintf(w, "  commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  built:  %s\n", BuildDate)
	fmt.Fprintf(w, "  go:     %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses the given arguments (without the program name).
func ParseArgs(argv []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(argv)

	// If no remaining args, default to TUI
	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "chat", "repl":
		parseChatArgs(&parsedArgs, remaining)
		return CmdChat, parsedArgs

	case "config", "cfg":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "version", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		parsedArgs.Name = cmd
		return CmdUnknown, parsedArgs
	}
}

// parseGlobalFlags extracts flags valid for every command. Flags may appear
// before or after the command name.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "--plain":
			parsedArgs.Plain = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--api-url":
			if i+1 < len(args) {
				i++
				parsedArgs.APIURL = args[i]
			}
		case "--config":
			if i+1 < len(args) {
				i++
				parsedArgs.ConfigPath = args[i]
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--api-url="):
				parsedArgs.APIURL = strings.TrimPrefix(arg, "--api-url=")
			case strings.HasPrefix(arg, "--config="):
				parsedArgs.ConfigPath = strings.TrimPrefix(arg, "--config=")
			default:
				remaining = append(remaining, arg)
			}
		}
	}

	return remaining, parsedArgs
}

// parseChatArgs parses chat command specific arguments.
func parseChatArgs(args *Args, remaining []string) {
	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]

		switch arg {
		case "-t", "--topic":
			if i+1 < len(remaining) {
				i++
				args.Topic = remaining[i]
			}
		default:
			if strings.HasPrefix(arg, "--topic=") {
				args.Topic = strings.TrimPrefix(arg, "--topic=")
			}
		}
	}
}

// parseConfigArgs parses config command specific arguments. Values may
// contain spaces when quoted by the shell; extra words are joined.
func parseConfigArgs(args *Args, remaining []string) {
	if len(remaining) > 0 {
		args.Subcommand = strings.ToLower(remaining[0])
	}
	if len(remaining) > 1 {
		args.ConfigKey = remaining[1]
	}
	if len(remaining) > 2 {
		args.ConfigVal = strings.Join(remaining[2:], " ")
	}
}
