// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-TUI commands of
// securesense.
//
// # Usage
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdChat:
//	    return cli.HandleChat(args, ctrl, cfg)
//	case cli.CmdConfig:
//	    return cli.HandleConfig(args, os.Stdout)
//	}
//
// # Commands
//
//   - tui: full-screen chat (default)
//   - chat: line-oriented chat driving the same conversation controller
//   - config: show, path, init, get and set configuration values
//   - version, help
package cli
