// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MadhuraBhatsoori/secure-sense/internal/conversation"
	"github.com/MadhuraBhatsoori/secure-sense/internal/export"
	"github.com/MadhuraBhatsoori/secure-sense/internal/logging"
	"github.com/MadhuraBhatsoori/secure-sense/internal/model"
	"github.com/MadhuraBhatsoori/secure-sense/internal/ui/styles"
)

// Options configures the chat view.
type Options struct {
	RenderMarkdown    bool
	ShowTimestamps    bool
	AllowedExtensions []string
	// ExportDir is where ctrl+s writes transcripts. Empty means the
	// working directory.
	ExportDir string
	Logger    *slog.Logger
}

// Model is the Bubble Tea model for the chat view.
type Model struct {
	ctrl  *conversation.Controller
	theme *styles.Theme
	opts  Options
	keys  KeyMap
	log   *slog.Logger

	// Widgets
	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model
	picker   filepicker.Model
	help     help.Model
	markdown *markdownRenderer

	// View state
	width      int
	height     int
	pickerOpen bool
	spinning   bool
	notice     string
	noticeSeq  int
	lastCount  int
}

// New creates the chat view around ctrl.
func New(ctrl *conversation.Controller, theme *styles.Theme, opts Options) Model {
	ta := textarea.New()
	ta.Placeholder = "Paste an email or ask a security question..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 20000
	ta.SetHeight(3)
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")
	ta.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = styles.RequestSpinner
	sp.Style = theme.Spinner

	fp := filepicker.New()
	fp.AllowedTypes = opts.AllowedExtensions
	if len(fp.AllowedTypes) == 0 {
		fp.AllowedTypes = model.DefaultAudioExtensions
	}
	if wd, err := os.Getwd(); err == nil {
		fp.CurrentDirectory = wd
	}
	fp.Height = 10

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	m := Model{
		ctrl:     ctrl,
		theme:    theme,
		opts:     opts,
		keys:     DefaultKeyMap(),
		log:      logger,
		viewport: vp,
		input:    ta,
		spinner:  sp,
		picker:   fp,
		help:     help.New(),
		markdown: newMarkdownRenderer(theme.GlamourStyle()),
	}
	m.updateViewport()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case conversation.ChatResultMsg, conversation.UploadResultMsg:
		cmd := m.ctrl.Update(msg)
		m.afterControllerChange()
		return m, tea.Batch(cmd, m.startSpinner())

	case spinner.TickMsg:
		if !m.ctrl.Snapshot().Busy {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ExportDoneMsg:
		if msg.Err != nil {
			m.log.Warn("export failed", "error", msg.Err)
			return m, m.setNotice("Export failed: " + msg.Err.Error())
		}
		m.log.Info("transcript exported", "path", msg.Path)
		return m, m.setNotice("Transcript saved to " + msg.Path)

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil
	}

	// Directory listings and other picker internals.
	if m.pickerOpen {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	return m.renderChat()
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.help.Width = msg.Width

	m.input.SetWidth(max(msg.Width-4, 10))
	m.viewport.Width = max(msg.Width, 1)
	m.viewport.Height = max(msg.Height-m.chromeHeight(), 1)
	m.picker.Height = max(msg.Height/2, 5)

	m.updateViewport()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.pickerOpen {
		return m.handlePickerKey(msg)
	}

	snap := m.ctrl.Snapshot()

	switch {
	case key.Matches(msg, m.keys.ClosePanel):
		if m.help.ShowAll {
			m.help.ShowAll = false
			return m.resized()
		}
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m.resized()

	case key.Matches(msg, m.keys.Phishing):
		return m.selectTopic(model.TopicPhishingEmail)
	case key.Matches(msg, m.keys.SpamCalls):
		return m.selectTopic(model.TopicSpamCalls)
	case key.Matches(msg, m.keys.Advice):
		return m.selectTopic(model.TopicGeneralAdvice)

	case key.Matches(msg, m.keys.Attach):
		if !snap.AttachmentVisible || snap.Uploading {
			return m, nil
		}
		m.pickerOpen = true
		return m, m.picker.Init()

	case key.Matches(msg, m.keys.ClearFile):
		m.ctrl.Update(conversation.ClearFileMsg{})
		return m, nil

	case key.Matches(msg, m.keys.Export):
		return m, m.exportCmd(snap)

	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case key.Matches(msg, m.keys.Submit):
		if snap.SubmitDisabled {
			return m, nil
		}
		return m.submit()
	}

	if snap.InputDisabled {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ClosePanel) {
		m.pickerOpen = false
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.pickerOpen = false
		m.ctrl.Update(conversation.FileSelectedMsg{Path: path})
		return m, cmd
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.pickerOpen = false
		// Let the controller explain the rejection in the status line.
		m.ctrl.Update(conversation.FileSelectedMsg{Path: path})
		return m, cmd
	}
	return m, cmd
}

func (m Model) selectTopic(t model.Topic) (tea.Model, tea.Cmd) {
	m.ctrl.Update(conversation.SelectTopicMsg{Topic: t})
	m.syncInputFocus()
	m.afterControllerChange()
	return m, nil
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	m.ctrl.Update(conversation.InputChangedMsg{Text: m.input.Value()})
	cmd := m.ctrl.Update(conversation.SubmitMsg{})
	if cmd == nil {
		return m, nil
	}

	if m.ctrl.Snapshot().Input == "" {
		m.input.Reset()
	}
	m.syncInputFocus()
	m.afterControllerChange()
	return m, tea.Batch(cmd, m.startSpinner())
}

// afterControllerChange refreshes everything derived from the snapshot.
func (m *Model) afterControllerChange() {
	snap := m.ctrl.Snapshot()
	if snap.Uploading {
		m.spinner.Spinner = styles.UploadSpinner
	} else {
		m.spinner.Spinner = styles.RequestSpinner
	}
	m.syncInputFocus()
	m.updateViewport()
}

func (m *Model) syncInputFocus() {
	if m.ctrl.Snapshot().InputDisabled {
		m.input.Blur()
	} else {
		m.input.Focus()
	}
}

func (m *Model) startSpinner() tea.Cmd {
	if m.spinning || !m.ctrl.Snapshot().Busy {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

func (m *Model) setNotice(text string) tea.Cmd {
	m.noticeSeq++
	m.notice = text
	seq := m.noticeSeq
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

func (m Model) resized() (tea.Model, tea.Cmd) {
	return m.handleResize(tea.WindowSizeMsg{Width: m.width, Height: m.height})
}

func (m Model) exportCmd(snap conversation.Snapshot) tea.Cmd {
	doc := export.Document{SessionID: snap.SessionID, StartedAt: snap.StartedAt, Messages: snap.Messages}
	opts := export.DefaultOptions()
	if m.opts.ExportDir != "" {
		opts.OutputDir = m.opts.ExportDir
	}
	return func() tea.Msg {
		path, err := export.ToFile(doc, "md", opts)
		return ExportDoneMsg{Path: path, Err: err}
	}
}

// updateViewport re-renders the transcript and keeps the view pinned to the
// bottom when new messages arrived.
func (m *Model) updateViewport() {
	snap := m.ctrl.Snapshot()
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderMessages(snap.Messages))
	if len(snap.Messages) != m.lastCount || atBottom {
		m.viewport.GotoBottom()
	}
	m.lastCount = len(snap.Messages)
}
