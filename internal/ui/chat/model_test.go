// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MadhuraBhatsoori/secure-sense/internal/backend"
	"github.com/MadhuraBhatsoori/secure-sense/internal/conversation"
	"github.com/MadhuraBhatsoori/secure-sense/internal/model"
	"github.com/MadhuraBhatsoori/secure-sense/internal/ui/styles"
)

type stubBackend struct {
	chatText string
	chats    []string
}

func (s *stubBackend) Chat(_ context.Context, text string, _ model.Topic) (*backend.ChatResponse, error) {
	s.chats = append(s.chats, text)
	return &backend.ChatResponse{TunedResponse: s.chatText}, nil
}

func (s *stubBackend) Upload(context.Context, model.PendingFile) (*backend.UploadResponse, error) {
	return &backend.UploadResponse{Transcription: "transcribed"}, nil
}

func newTestModel(t *testing.T, opts Options) (Model, *conversation.Controller, *stubBackend) {
	t.Helper()
	sb := &stubBackend{chatText: "The email you pasted in chat is safe."}
	ctrl := conversation.New(context.Background(), sb, conversation.Options{})
	m := New(ctrl, styles.NewTheme("dark"), opts)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model), ctrl, sb
}

func press(m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// drain runs request commands and feeds their results back into the model.
// Timers (spinner, notices) are not executed.
func drain(m Model, cmd tea.Cmd) Model {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case conversation.ChatResultMsg, conversation.UploadResultMsg:
			next, nc := m.Update(msg)
			m = next.(Model)
			queue = append(queue, nc)
		case ExportDoneMsg:
			next, _ := m.Update(msg)
			m = next.(Model)
		}
	}
	return m
}

func TestView_InitialRender(t *testing.T) {
	m, _, _ := newTestModel(t, Options{})
	view := m.View()

	assert.Contains(t, view, "Secure Sense")
	assert.Contains(t, view, "Phishing Email")
	assert.Contains(t, view, "Spam Calls")
	assert.Contains(t, view, "Security Advice")
	assert.Contains(t, view, "Welcome to Secure Sense")
}

func TestView_LoadingBeforeResize(t *testing.T) {
	ctrl := conversation.New(context.Background(), &stubBackend{}, conversation.Options{})
	m := New(ctrl, styles.NewTheme("dark"), Options{})
	assert.Equal(t, "Loading...", m.View())
}

func TestTopicKeys(t *testing.T) {
	m, ctrl, _ := newTestModel(t, Options{})

	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyF1})
	assert.Nil(t, cmd)
	snap := ctrl.Snapshot()
	assert.Equal(t, model.TopicPhishingEmail, snap.Topic)
	require.Len(t, snap.Messages, 3)
	assert.Contains(t, m.View(), "Please paste your email")

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyF2})
	assert.Equal(t, model.TopicSpamCalls, ctrl.Snapshot().Topic)
	assert.Contains(t, m.View(), "C-o to attach")
}

func TestTypeAndSubmit(t *testing.T) {
	m, ctrl, sb := newTestModel(t, Options{})
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyF1})

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("win a prize")})
	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Empty(t, m.input.Value(), "input cleared after submit")
	assert.True(t, ctrl.Snapshot().Busy)
	assert.Contains(t, m.View(), `Analyzing "win a prize"...`)

	m = drain(m, cmd)

	require.Equal(t, []string{"win a prize"}, sb.chats)
	msgs := ctrl.Snapshot().Messages
	require.Len(t, msgs, 6)
	assert.Equal(t, "The email you pasted in chat is safe.", msgs[4].Text)
	assert.Equal(t, conversation.DisclaimerText, msgs[5].Text)
	assert.False(t, ctrl.Snapshot().Busy)
	assert.Contains(t, m.View(), "Disclaimer")
}

func TestSubmit_EmptyDoesNothing(t *testing.T) {
	m, ctrl, sb := newTestModel(t, Options{})
	_, cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, 1, len(ctrl.Snapshot().Messages))
	assert.Empty(t, sb.chats)
}

func TestSpamCalls_DisablesTyping(t *testing.T) {
	m, _, _ := newTestModel(t, Options{})
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyF2})

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("typed")})
	assert.Empty(t, m.input.Value())
	assert.Contains(t, m.View(), "Text input is disabled")
}

func TestAttach_OnlyUnderSpamCalls(t *testing.T) {
	m, _, _ := newTestModel(t, Options{})

	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlO})
	assert.Nil(t, cmd)
	assert.False(t, m.pickerOpen)

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyF2})
	m, cmd = press(m, tea.KeyMsg{Type: tea.KeyCtrlO})
	assert.NotNil(t, cmd, "picker reads the directory")
	assert.True(t, m.pickerOpen)
	assert.Contains(t, m.View(), "Select a call recording")

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.pickerOpen)
}

func TestUploadFlowThroughView(t *testing.T) {
	m, ctrl, sb := newTestModel(t, Options{})
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyF2})

	path := filepath.Join(t.TempDir(), "voicemail.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0600))
	ctrl.Update(conversation.FileSelectedMsg{Path: path})
	assert.Contains(t, m.View(), "Attached: voicemail.wav")

	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, ctrl.Snapshot().Uploading)
	assert.Contains(t, m.View(), "Uploading voicemail.wav")

	m = drain(m, cmd)
	assert.False(t, ctrl.Snapshot().Uploading)
	assert.Equal(t, []string{"transcribed"}, sb.chats)
	assert.Contains(t, m.View(), conversation.UploadedNotice)
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	m, _, _ := newTestModel(t, Options{ExportDir: dir})

	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	m = drain(m, cmd)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".md"))
	assert.Contains(t, m.View(), "Transcript saved to")
}

func TestHelpToggle(t *testing.T) {
	m, _, _ := newTestModel(t, Options{})
	short := m.viewport.Height

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyCtrlG})
	assert.True(t, m.help.ShowAll)
	assert.Less(t, m.viewport.Height, short)
	assert.Contains(t, m.View(), "export transcript")

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.help.ShowAll)
}

func TestQuit(t *testing.T) {
	m, _, _ := newTestModel(t, Options{})
	_, cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestMarkdownRenderer_FallsBackOnNarrowWidth(t *testing.T) {
	r := newMarkdownRenderer("dark")
	assert.Equal(t, "**bold**", r.Render("**bold**", 5))

	out := r.Render("**bold** text", 60)
	assert.Contains(t, out, "bold")
	assert.NotContains(t, out, "**")
}
