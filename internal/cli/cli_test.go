// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MadhuraBhatsoori/secure-sense/internal/backend"
	"github.com/MadhuraBhatsoori/secure-sense/internal/config"
	"github.com/MadhuraBhatsoori/secure-sense/internal/conversation"
	"github.com/MadhuraBhatsoori/secure-sense/internal/model"
)

// =============================================================================
// PARSER TESTS (cli.go)
// =============================================================================

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCmd  Command
		validate func(*testing.T, Args)
	}{
		{
			name:    "no args starts the TUI",
			args:    nil,
			wantCmd: CmdTUI,
		},
		{
			name:    "plain flag only",
			args:    []string{"--plain"},
			wantCmd: CmdTUI,
			validate: func(t *testing.T, a Args) {
				if !a.Plain {
					t.Error("Plain should be set")
				}
			},
		},
		{
			name:    "chat with topic",
			args:    []string{"chat", "--topic", "spam"},
			wantCmd: CmdChat,
			validate: func(t *testing.T, a Args) {
				if a.Topic != "spam" {
					t.Errorf("Topic = %q, want %q", a.Topic, "spam")
				}
			},
		},
		{
			name:    "chat with topic equals form",
			args:    []string{"chat", "--topic=phishing"},
			wantCmd: CmdChat,
			validate: func(t *testing.T, a Args) {
				if a.Topic != "phishing" {
					t.Errorf("Topic = %q, want %q", a.Topic, "phishing")
				}
			},
		},
		{
			name:    "global flags after the command",
			args:    []string{"chat", "--api-url", "http://example.test", "-v"},
			wantCmd: CmdChat,
			validate: func(t *testing.T, a Args) {
				if a.APIURL != "http://example.test" {
					t.Errorf("APIURL = %q", a.APIURL)
				}
				if !a.Verbose {
					t.Error("Verbose should be set")
				}
			},
		},
		{
			name:    "config set joins the value",
			args:    []string{"--config=/tmp/c.toml", "config", "set", "upload.allowed_extensions", ".mp3,", ".wav"},
			wantCmd: CmdConfig,
			validate: func(t *testing.T, a Args) {
				if a.ConfigPath != "/tmp/c.toml" {
					t.Errorf("ConfigPath = %q", a.ConfigPath)
				}
				if a.Subcommand != "set" || a.ConfigKey != "upload.allowed_extensions" {
					t.Errorf("Subcommand/Key = %q/%q", a.Subcommand, a.ConfigKey)
				}
				if a.ConfigVal != ".mp3, .wav" {
					t.Errorf("ConfigVal = %q", a.ConfigVal)
				}
			},
		},
		{
			name:    "version",
			args:    []string{"--version"},
			wantCmd: CmdVersion,
		},
		{
			name:    "help alias",
			args:    []string{"-h"},
			wantCmd: CmdHelp,
		},
		{
			name:    "unknown command",
			args:    []string{"frobnicate"},
			wantCmd: CmdUnknown,
			validate: func(t *testing.T, a Args) {
				if a.Name != "frobnicate" {
					t.Errorf("Name = %q", a.Name)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := ParseArgs(tt.args)
			if cmd != tt.wantCmd {
				t.Fatalf("command = %v, want %v", cmd, tt.wantCmd)
			}
			if tt.validate != nil {
				tt.validate(t, args)
			}
		})
	}
}

func TestCommandString(t *testing.T) {
	if CmdChat.String() != "chat" || CmdUnknown.String() != "unknown" {
		t.Errorf("unexpected names: %s %s", CmdChat, CmdUnknown)
	}
}

func TestPrintVersion(t *testing.T) {
	var buf bytes.Buffer
	PrintVersion(&buf)
	if !strings.Contains(buf.String(), "securesense "+Version) {
		t.Errorf("version output = %q", buf.String())
	}
}

// =============================================================================
// ERROR TESTS (errors.go)
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"usage", ErrMissingArgument("KEY", ""), ExitUsageError},
		{"config", fmt.Errorf("invalid config: %w", config.ValidateErrors{{Field: "api.base_url", Message: "bad"}}), ExitConfigError},
		{"timeout", fmt.Errorf("wrap: %w", context.DeadlineExceeded), ExitTimeoutError},
		{"network", fmt.Errorf("%w: refused", backend.ErrTransport), ExitNetworkError},
		{"other", errors.New("boom"), ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.want {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCommandError(t *testing.T) {
	err := &CommandError{Command: "config", Action: "init", Reason: "/x", Err: ErrConfigExists}
	if !errors.Is(err, ErrConfigExists) {
		t.Error("CommandError should unwrap")
	}
	if err.Error() != "config init failed: /x: config file already exists" {
		t.Errorf("Error() = %q", err.Error())
	}
}

// =============================================================================
// CONFIG COMMAND TESTS (config.go)
// =============================================================================

func isolateConfig(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, key := range []string{config.EnvAPIURL, config.EnvTimeout, config.EnvLogLevel, config.EnvTheme, config.EnvMarkdown} {
		t.Setenv(key, "")
	}
	return filepath.Join(home, "custom", "config.toml")
}

func TestHandleConfig_InitGetSet(t *testing.T) {
	path := isolateConfig(t)
	args := Args{ConfigPath: path}
	var out bytes.Buffer

	args.Subcommand = "init"
	if err := HandleConfig(args, &out); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	if err := HandleConfig(args, &out); !errors.Is(err, ErrConfigExists) {
		t.Errorf("second init error = %v, want ErrConfigExists", err)
	}

	args.Subcommand, args.ConfigKey, args.ConfigVal = "set", "api.timeout_secs", "90"
	if err := HandleConfig(args, &out); err != nil {
		t.Fatalf("set: %v", err)
	}

	out.Reset()
	args.Subcommand, args.ConfigVal = "get", ""
	if err := HandleConfig(args, &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if strings.TrimSpace(out.String()) != "90" {
		t.Errorf("get output = %q, want 90", out.String())
	}
}

func TestHandleConfig_SetRejectsInvalid(t *testing.T) {
	path := isolateConfig(t)
	args := Args{ConfigPath: path, Subcommand: "set", ConfigKey: "api.timeout_secs", ConfigVal: "0"}

	err := HandleConfig(args, io.Discard)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if GetExitCode(err) != ExitConfigError {
		t.Errorf("exit code = %d, want %d", GetExitCode(err), ExitConfigError)
	}
	if _, statErr := os.Stat(path); statErr == nil {
		t.Error("invalid config must not be written")
	}
}

func TestHandleConfig_UnknownKey(t *testing.T) {
	path := isolateConfig(t)
	err := HandleConfig(Args{ConfigPath: path, Subcommand: "get", ConfigKey: "api.nope"}, io.Discard)
	var usage *UsageError
	if !errors.As(err, &usage) {
		t.Errorf("error = %v, want UsageError", err)
	}
}

func TestHandleConfig_ShowBeforeInitUsesDefaults(t *testing.T) {
	path := isolateConfig(t)
	var out bytes.Buffer

	if err := HandleConfig(Args{ConfigPath: path, Subcommand: "show"}, &out); err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out.String(), "http://localhost:5000") {
		t.Errorf("show output missing default base URL: %q", out.String())
	}
	if _, err := os.Stat(path); err == nil {
		t.Error("show must not create the config file")
	}
}

func TestHandleConfig_ShowAndPath(t *testing.T) {
	path := isolateConfig(t)
	var out bytes.Buffer

	if err := HandleConfig(Args{ConfigPath: path, Subcommand: "path"}, &out); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out.String()) != path {
		t.Errorf("path output = %q", out.String())
	}

	if err := HandleConfig(Args{ConfigPath: path, Subcommand: "init"}, io.Discard); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if err := HandleConfig(Args{ConfigPath: path}, &out); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"api.base_url", "http://localhost:5000", "ui.theme"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("show output missing %q", want)
		}
	}
}

func TestHandleConfig_UnknownSubcommand(t *testing.T) {
	err := HandleConfig(Args{Subcommand: "explode"}, io.Discard)
	if GetExitCode(err) != ExitUsageError {
		t.Errorf("exit code = %d, want usage error", GetExitCode(err))
	}
}

// =============================================================================
// REPL TESTS (chat.go)
// =============================================================================

type scriptReader struct {
	lines   []string
	history []string
}

func (s *scriptReader) Prompt(string) (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *scriptReader) AppendHistory(item string) {
	s.history = append(s.history, item)
}

type replBackend struct {
	chats   []string
	uploads []string
}

func (b *replBackend) Chat(_ context.Context, text string, _ model.Topic) (*backend.ChatResponse, error) {
	b.chats = append(b.chats, text)
	return &backend.ChatResponse{TunedResponse: "The email you pasted in chat is safe.", FlashReasoning: "No links."}, nil
}

func (b *replBackend) Upload(_ context.Context, file model.PendingFile) (*backend.UploadResponse, error) {
	b.uploads = append(b.uploads, file.Name)
	return &backend.UploadResponse{Transcription: "this is your bank calling"}, nil
}

func runREPL(t *testing.T, opts ChatOptions, lines ...string) (string, *replBackend, *conversation.Controller) {
	t.Helper()
	b := &replBackend{}
	ctrl := conversation.New(context.Background(), b, conversation.Options{})
	var out bytes.Buffer
	r := NewREPL(context.Background(), ctrl, &scriptReader{lines: lines}, &out, opts)
	if err := r.Run(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	return out.String(), b, ctrl
}

func TestREPL_WelcomeAndEOF(t *testing.T) {
	out, b, _ := runREPL(t, ChatOptions{})
	if !strings.Contains(out, "Welcome to Secure Sense") {
		t.Errorf("welcome not printed:\n%s", out)
	}
	if len(b.chats) != 0 {
		t.Error("no request expected")
	}
}

func TestREPL_TopicAndText(t *testing.T) {
	out, b, ctrl := runREPL(t, ChatOptions{}, "/topic phishing", "Dear customer, verify your account", "/quit")

	if len(b.chats) != 1 || b.chats[0] != "Dear customer, verify your account" {
		t.Fatalf("chats = %q", b.chats)
	}
	for _, want := range []string{conversation.PhishingPrompt, "The email you pasted in chat is safe.", "No links.", "Disclaimer:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if n := len(ctrl.Snapshot().Messages); n != 7 {
		t.Errorf("transcript length = %d, want 7", n)
	}
}

func TestREPL_StartTopicOption(t *testing.T) {
	_, _, ctrl := runREPL(t, ChatOptions{Topic: model.TopicGeneralAdvice})
	if ctrl.Snapshot().Topic != model.TopicGeneralAdvice {
		t.Errorf("topic = %v", ctrl.Snapshot().Topic)
	}
}

func TestREPL_BlankLinesIgnored(t *testing.T) {
	_, b, ctrl := runREPL(t, ChatOptions{}, "", "   ")
	if len(b.chats) != 0 || ctrl.Len() != 1 {
		t.Errorf("blank input should do nothing: chats=%d len=%d", len(b.chats), ctrl.Len())
	}
}

func TestREPL_SpamCallsBlocksText(t *testing.T) {
	out, b, _ := runREPL(t, ChatOptions{}, "/topic spam", "hello there")
	if len(b.chats) != 0 {
		t.Errorf("text should not be sent under spam calls: %q", b.chats)
	}
	if !strings.Contains(out, "Text input is disabled") {
		t.Errorf("missing hint:\n%s", out)
	}
}

func TestREPL_AttachAndAnalyze(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voicemail.wav")
	if err := os.WriteFile(path, []byte("RIFF"), 0600); err != nil {
		t.Fatal(err)
	}

	out, b, ctrl := runREPL(t, ChatOptions{}, "/topic spam", "/attach "+path, "")

	if len(b.uploads) != 1 || b.uploads[0] != "voicemail.wav" {
		t.Fatalf("uploads = %q", b.uploads)
	}
	if len(b.chats) != 1 || b.chats[0] != "this is your bank calling" {
		t.Fatalf("chats = %q", b.chats)
	}
	if !strings.Contains(out, conversation.UploadedNotice) {
		t.Errorf("missing upload notice:\n%s", out)
	}
	snap := ctrl.Snapshot()
	if snap.Uploading || snap.PendingFile != "" {
		t.Errorf("upload state not cleared: %s", snap)
	}
}

func TestREPL_AttachRejected(t *testing.T) {
	out, b, _ := runREPL(t, ChatOptions{}, "/attach /tmp/call.wav", "/send")
	if len(b.uploads) != 0 {
		t.Error("no upload expected")
	}
	if !strings.Contains(out, "attachments are only used for spam call analysis") {
		t.Errorf("missing rejection:\n%s", out)
	}
	if !strings.Contains(out, "nothing attached") {
		t.Errorf("missing /send error:\n%s", out)
	}
}

func TestREPL_Paste(t *testing.T) {
	_, b, _ := runREPL(t, ChatOptions{}, "/topic advice", "/paste", "line one", "line two", ".", "/quit")
	if len(b.chats) != 1 || b.chats[0] != "line one\nline two" {
		t.Errorf("chats = %q", b.chats)
	}
}

func TestREPL_Export(t *testing.T) {
	dir := t.TempDir()
	out, _, _ := runREPL(t, ChatOptions{ExportDir: dir}, "/export json", "/export pdf")

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || filepath.Ext(entries[0].Name()) != ".json" {
		t.Errorf("exported files = %v", entries)
	}
	if !strings.Contains(out, "export failed") {
		t.Errorf("unknown format should fail:\n%s", out)
	}
}

func TestREPL_UnknownCommandAndHistory(t *testing.T) {
	b := &replBackend{}
	ctrl := conversation.New(context.Background(), b, conversation.Options{})
	in := &scriptReader{lines: []string{"/frob", "", "/help"}}
	var out bytes.Buffer
	if err := NewREPL(context.Background(), ctrl, in, &out, ChatOptions{}).Run(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "unknown command /frob") {
		t.Errorf("missing unknown command error:\n%s", out.String())
	}
	if len(in.history) != 2 {
		t.Errorf("history = %q, want the two non-blank lines", in.history)
	}
}

func TestREPL_StopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ctrl := conversation.New(ctx, &replBackend{}, conversation.Options{})
	in := &scriptReader{lines: []string{"never read"}}
	if err := NewREPL(ctx, ctrl, in, io.Discard, ChatOptions{}).Run(); err != nil {
		t.Fatal(err)
	}
	if len(in.lines) != 1 {
		t.Error("prompt should not be read after cancellation")
	}
}
