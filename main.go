// securesense - phishing email and spam call analysis in the terminal.
//
// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MadhuraBhatsoori/secure-sense/internal/backend"
	"github.com/MadhuraBhatsoori/secure-sense/internal/cli"
	"github.com/MadhuraBhatsoori/secure-sense/internal/config"
	"github.com/MadhuraBhatsoori/secure-sense/internal/conversation"
	"github.com/MadhuraBhatsoori/secure-sense/internal/logging"
	"github.com/MadhuraBhatsoori/secure-sense/internal/model"
	"github.com/MadhuraBhatsoori/secure-sense/internal/ui/chat"
	"github.com/MadhuraBhatsoori/secure-sense/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	var err error
	switch cmd {
	case cli.CmdVersion:
		cli.PrintVersion(os.Stdout)
	case cli.CmdHelp:
		cli.PrintUsage()
	case cli.CmdConfig:
		err = cli.HandleConfig(args, os.Stdout)
	case cli.CmdUnknown:
		err = &cli.UsageError{Message: "unknown command: " + args.Name, Example: "securesense help"}
	default:
		err = run(cmd, args)
	}

	if err != nil {
		cli.DisplayError(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}

// run starts an interactive session: the TUI, or the line chat when asked
// for or when no terminal is attached.
func run(cmd cli.Command, args cli.Args) error {
	cfg, err := config.Load(args.ConfigPath)
	if err != nil {
		return err
	}
	if args.APIURL != "" {
		cfg.API.BaseURL = args.APIURL
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid --api-url: %w", err)
		}
	}
	if args.Verbose {
		cfg.Log.Level = "debug"
	}
	config.SetGlobal(cfg)

	logger := logging.Discard()
	if logPath, err := cfg.LogPath(); err == nil {
		l, closer, err := logging.New(logPath, cfg.Log.Level)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		} else {
			logger = l
			defer closer.Close()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := backend.New(cfg.API, backend.WithLogger(logger))
	ctrl := conversation.New(ctx, client, conversation.Options{
		AllowedExtensions: cfg.Upload.AllowedExtensions,
		MaxUploadBytes:    cfg.API.MaxUploadBytes(),
		Logger:            logger,
	})

	plain := cmd == cli.CmdChat || args.Plain || !cli.CanRunTUI()
	logger.Info("session started",
		"version", Version,
		"api", cfg.API.BaseURL,
		"plain", plain,
	)

	if plain {
		topic, err := model.ParseTopic(args.Topic)
		if err != nil {
			return &cli.UsageError{Message: err.Error(), Example: "securesense chat --topic phishing"}
		}
		return cli.HandleChat(ctx, ctrl, cli.ChatOptions{
			Topic:  topic,
			Width:  cli.GetTerminalWidth(),
			Logger: logger,
		})
	}
	return runTUI(ctx, ctrl, cfg, logger)
}

func runTUI(ctx context.Context, ctrl *conversation.Controller, cfg *config.Config, logger *slog.Logger) error {
	theme := styles.NewTheme(cfg.UI.Theme)

	m := chat.New(ctrl, theme, chat.Options{
		RenderMarkdown:    cfg.UI.RenderMarkdown,
		ShowTimestamps:    cfg.UI.ShowTimestamps,
		AllowedExtensions: cfg.Upload.AllowedExtensions,
		Logger:            logger,
	})

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running securesense: %w", err)
	}
	return nil
}
