// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-oriented chat for securesense.
//
// Command: chat
// Short:   Chat without the full-screen interface
//
// Examples:
//   securesense chat                   Start with no topic
//   securesense chat --topic phishing  Start with a topic selected
//   securesense --plain                Same as chat, used when piping
//
// Interactive Commands (during chat):
//   /topic [name]       Show or pick a topic (phishing, spam, advice)
//   /attach PATH        Attach a call recording (spam topic only)
//   /clear-file         Drop the attached recording
//   /send               Analyze the attached recording
//   /paste              Enter multi-line text, finish with a lone "."
//   /export [md|json|html]  Save the transcript
//   /help, /h           Show available commands
//   /quit, /q           Exit chat
//   Ctrl+C, Ctrl+D      Exit chat

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/MadhuraBhatsoori/secure-sense/internal/config"
	"github.com/MadhuraBhatsoori/secure-sense/internal/conversation"
	"github.com/MadhuraBhatsoori/secure-sense/internal/export"
	"github.com/MadhuraBhatsoori/secure-sense/internal/logging"
	"github.com/MadhuraBhatsoori/secure-sense/internal/model"
)

// =============================================================================
// INPUT
// =============================================================================

// LineReader reads one line of input at a time. *liner.State satisfies it.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// historyFile returns the path of the persisted REPL history.
func historyFile() string {
	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "chat_history")
}

func loadHistory(line *liner.State, path string) {
	if f, err := os.Open(path); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
}

func saveHistory(line *liner.State, path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	line.WriteHistory(f)
}

// =============================================================================
// REPL
// =============================================================================

// ChatOptions configures the REPL.
type ChatOptions struct {
	Topic     model.Topic
	ExportDir string
	Width     int
	Logger    *slog.Logger
}

// REPL drives a conversation controller from a line reader. Requests run
// synchronously: each command's result is fed back until the flow settles.
type REPL struct {
	ctx  context.Context
	ctrl *conversation.Controller
	in   LineReader
	out  io.Writer
	opts ChatOptions
	log  *slog.Logger

	shown int
}

// NewREPL creates a REPL. ctx ends the loop when cancelled.
func NewREPL(ctx context.Context, ctrl *conversation.Controller, in LineReader, out io.Writer, opts ChatOptions) *REPL {
	if opts.Width <= 0 {
		opts.Width = DefaultTerminalWidth
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &REPL{ctx: ctx, ctrl: ctrl, in: in, out: out, opts: opts, log: logger}
}

// HandleChat runs the interactive chat on the terminal.
func HandleChat(ctx context.Context, ctrl *conversation.Controller, opts ChatOptions) error {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	hist := historyFile()
	loadHistory(line, hist)
	defer func() {
		saveHistory(line, hist)
		line.Close()
	}()

	return NewREPL(ctx, ctrl, line, os.Stdout, opts).Run()
}

// Run prints the transcript so far and reads lines until /quit, end of
// input or cancellation.
func (r *REPL) Run() error {
	r.flush()
	fmt.Fprintln(r.out, DimStyle.Render("Type /help for commands."))

	if r.opts.Topic != model.TopicNone {
		r.ctrl.SelectTopic(r.opts.Topic)
		r.flush()
	}

	for {
		if r.ctx.Err() != nil {
			return nil
		}

		line, err := r.in.Prompt(r.prompt())
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(r.out)
				return nil
			}
			return err
		}
		if strings.TrimSpace(line) != "" {
			r.in.AppendHistory(line)
		}

		if quit := r.Handle(line); quit {
			return nil
		}
	}
}

func (r *REPL) prompt() string {
	snap := r.ctrl.Snapshot()
	label := "securesense"
	if snap.Topic != model.TopicNone {
		label = snap.Topic.Label()
	}
	if snap.PendingFile != "" {
		label += " [" + snap.PendingFile + "]"
	}
	return promptStyle.Render(label+" >") + " "
}

// Handle processes one input line and reports whether the REPL should exit.
func (r *REPL) Handle(line string) bool {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "/") {
		return r.command(trimmed)
	}

	snap := r.ctrl.Snapshot()
	if snap.InputDisabled {
		if trimmed == "" && snap.PendingFile != "" {
			r.submit()
			return false
		}
		r.hint("Text input is disabled for " + snap.Topic.Label() + ". Use /attach PATH, then press Enter.")
		return false
	}

	if trimmed == "" {
		return false
	}
	r.ctrl.SetInput(line)
	r.submit()
	return false
}

func (r *REPL) command(input string) bool {
	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])
	arg := strings.TrimSpace(strings.TrimPrefix(input, fields[0]))

	switch cmd {
	case "/quit", "/q", "/exit":
		return true

	case "/help", "/h", "/?":
		r.printHelp()

	case "/topic", "/t":
		if arg == "" {
			r.printTopics()
			return false
		}
		topic, err := model.ParseTopic(arg)
		if err != nil {
			r.errorf("%v", err)
			return false
		}
		r.ctrl.SelectTopic(topic)
		r.flush()

	case "/attach", "/a":
		if arg == "" {
			r.errorf("usage: /attach PATH")
			return false
		}
		if err := r.ctrl.SelectFile(expandHome(arg)); err != nil {
			r.errorf("%v", err)
			return false
		}
		r.hint("Attached " + r.ctrl.Snapshot().PendingFile + ". Press Enter or /send to analyze.")

	case "/clear-file", "/detach":
		r.ctrl.Update(conversation.ClearFileMsg{})
		r.hint("Attachment removed.")

	case "/send":
		if r.ctrl.Snapshot().PendingFile == "" {
			r.errorf("nothing attached")
			return false
		}
		r.submit()

	case "/paste":
		r.paste()

	case "/export":
		r.export(arg)

	default:
		r.errorf("unknown command %s (try /help)", cmd)
	}
	return false
}

// submit sends the controller's current input or staged file and pumps
// the resulting commands until the flow settles.
func (r *REPL) submit() {
	cmd := r.ctrl.Submit()
	if cmd == nil {
		return
	}
	r.flush()
	fmt.Fprintln(r.out, DimStyle.Render("Analyzing..."))
	r.pump(cmd)
	r.flush()
}

// pump runs cmd and feeds each result back into the controller.
func (r *REPL) pump(cmd tea.Cmd) {
	for cmd != nil {
		cmd = r.ctrl.Update(cmd())
	}
}

// paste collects lines until a lone "." and submits them as one message.
func (r *REPL) paste() {
	if r.ctrl.Snapshot().InputDisabled {
		r.errorf("text input is disabled for this topic")
		return
	}
	r.hint(`Paste your text. Finish with a line containing only "."`)

	var lines []string
	for {
		line, err := r.in.Prompt("... ")
		if err != nil {
			r.hint("Paste cancelled.")
			return
		}
		if strings.TrimSpace(line) == "." {
			break
		}
		lines = append(lines, line)
	}

	r.ctrl.SetInput(strings.Join(lines, "\n"))
	r.submit()
}

func (r *REPL) export(format string) {
	if format == "" {
		format = "md"
	}
	snap := r.ctrl.Snapshot()
	doc := export.Document{SessionID: snap.SessionID, StartedAt: snap.StartedAt, Messages: snap.Messages}

	opts := export.DefaultOptions()
	if r.opts.ExportDir != "" {
		opts.OutputDir = r.opts.ExportDir
	}

	path, err := export.ToFile(doc, format, opts)
	if err != nil {
		r.log.Warn("export failed", "format", format, "error", err)
		r.errorf("export failed: %v", err)
		return
	}
	r.log.Info("transcript exported", "path", path)
	fmt.Fprintln(r.out, SuccessStyle.Render("Transcript saved to "+path))
}

// =============================================================================
// OUTPUT
// =============================================================================

// flush prints transcript messages appended since the last call.
func (r *REPL) flush() {
	for _, msg := range r.ctrl.Since(r.shown) {
		r.printMessage(msg)
	}
	r.shown = r.ctrl.Len()
}

func (r *REPL) printMessage(msg model.Message) {
	label := aiLabelStyle.Render(msg.Sender.DisplayName() + ":")
	switch {
	case msg.IsUser():
		label = userLabelStyle.Render(msg.Sender.DisplayName() + ":")
	case msg.IsError():
		label = ErrorStyle.Render(msg.Sender.DisplayName() + ":")
	}
	body := styleForKind(msg.Kind).Width(r.opts.Width - 2).Render(msg.Text)
	fmt.Fprintln(r.out, label)
	fmt.Fprintln(r.out, lipgloss.NewStyle().PaddingLeft(2).Render(body))
	fmt.Fprintln(r.out)
}

func (r *REPL) printHelp() {
	fmt.Fprintln(r.out, TitleStyle.Render("Commands"))
	rows := [][2]string{
		{"/topic [name]", "show or pick a topic (phishing, spam, advice)"},
		{"/attach PATH", "attach a call recording (spam topic only)"},
		{"/clear-file", "drop the attached recording"},
		{"/send", "analyze the attached recording"},
		{"/paste", `enter multi-line text, end with "."`},
		{"/export [md|json|html]", "save the transcript"},
		{"/quit", "exit"},
	}
	for _, row := range rows {
		fmt.Fprintf(r.out, "  %s%s\n", RenderLabel(row[0]), DimStyle.Render(row[1]))
	}
}

func (r *REPL) printTopics() {
	current := r.ctrl.Snapshot().Topic
	fmt.Fprintln(r.out, TitleStyle.Render("Topics"))
	for i, t := range model.Topics {
		marker := " "
		if t == current {
			marker = "*"
		}
		fmt.Fprintf(r.out, " %s %d. %s\n", marker, i+1, t.Label())
	}
}

func (r *REPL) hint(text string) {
	fmt.Fprintln(r.out, DimStyle.Render(text))
}

func (r *REPL) errorf(format string, args ...interface{}) {
	fmt.Fprintln(r.out, ErrorStyle.Render(fmt.Sprintf(format, args...)))
}

// expandHome replaces a leading ~ with the home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
