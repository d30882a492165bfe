// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation implements the Secure Sense session state machine.
//
// A Controller owns the transcript, the selected topic, the staged audio
// file and the upload flag. Every change goes through Update, which takes a
// user event or a request completion and may return a tea.Cmd that performs
// the next network call. Commands never touch controller state; their
// results come back through Update. Front-ends render from Snapshot.
//
//	ctrl := conversation.New(ctx, client, conversation.Options{})
//	cmd := ctrl.Update(conversation.SelectTopicMsg{Topic: model.TopicPhishingEmail})
//	cmd = ctrl.Update(conversation.InputChangedMsg{Text: email})
//	cmd = ctrl.Update(conversation.SubmitMsg{})
//	for cmd != nil {
//	    cmd = ctrl.Update(cmd())
//	}
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MadhuraBhatsoori/secure-sense/internal/backend"
	"github.com/MadhuraBhatsoori/secure-sense/internal/logging"
	"github.com/MadhuraBhatsoori/secure-sense/internal/model"
)

// Backend is the analysis service as seen by the controller.
type Backend interface {
	Chat(ctx context.Context, text string, topic model.Topic) (*backend.ChatResponse, error)
	Upload(ctx context.Context, file model.PendingFile) (*backend.UploadResponse, error)
}

// Options tunes a Controller. The zero value is usable.
type Options struct {
	// AllowedExtensions restricts staged files. Empty means
	// model.DefaultAudioExtensions.
	AllowedExtensions []string
	// MaxUploadBytes rejects larger files at selection time. 0 disables it.
	MaxUploadBytes int64
	Logger         *slog.Logger
}

// Controller is the conversation state machine. It is not safe for
// concurrent use; drive it from a single goroutine.
type Controller struct {
	ctx     context.Context
	backend Backend
	opts    Options
	logger  *slog.Logger

	transcript *model.Transcript
	topic      model.Topic
	input      string
	pending    *model.PendingFile
	uploading  bool
	inFlight   int
	status     string
	nextID     int
}

// New creates a controller whose transcript is seeded with the welcome
// message. ctx bounds every request the controller issues.
func New(ctx context.Context, b Backend, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	c := &Controller{
		ctx:        ctx,
		backend:    b,
		opts:       opts,
		transcript: model.NewTranscript(),
	}
	c.logger = logger.With("session", c.transcript.ID)
	c.transcript.Append(model.NewAIMessage(model.KindWelcome, WelcomeText))
	return c
}

// Update applies msg and returns the command for any request it started.
// Messages the controller does not know are ignored.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case SelectTopicMsg:
		c.SelectTopic(msg.Topic)
	case InputChangedMsg:
		c.input = msg.Text
	case FileSelectedMsg:
		c.selectFile(msg.Path)
	case ClearFileMsg:
		c.pending = nil
		c.status = ""
	case SubmitMsg:
		return c.Submit()
	case ChatResultMsg:
		return c.handleChatResult(msg)
	case UploadResultMsg:
		return c.handleUploadResult(msg)
	}
	return nil
}

// =============================================================================
// TOPIC SELECTOR
// =============================================================================

// SelectTopic switches the active topic and appends the scripted exchange.
// The staged file is always dropped, even when the topic is re-selected.
func (c *Controller) SelectTopic(t model.Topic) {
	c.topic = t
	c.pending = nil
	c.status = ""
	if t == model.TopicNone {
		return
	}

	c.transcript.Append(
		model.NewUserMessage(model.KindIntent, IntentText(t)),
		model.NewAIMessage(model.KindPrompt, topicReply(t)),
	)
	c.logger.Info("topic selected", "topic", t.String())
}

// =============================================================================
// INPUT AND FILE SELECTION
// =============================================================================

// SetInput replaces the input text.
func (c *Controller) SetInput(text string) {
	c.input = text
}

// SelectFile stages the audio file at path. Files are only accepted while
// spam calls is the active topic and no upload is running. A rejected pick
// leaves the previous selection in place and sets a status line.
func (c *Controller) SelectFile(path string) error {
	return c.selectFile(path)
}

func (c *Controller) selectFile(path string) error {
	var err error
	switch {
	case !c.topic.WantsAudio():
		err = errors.New("attachments are only used for spam call analysis")
	case c.uploading:
		err = errors.New("an upload is already in progress")
	default:
		var pf *model.PendingFile
		pf, err = model.NewPendingFile(path, c.opts.AllowedExtensions, c.opts.MaxUploadBytes)
		if err == nil {
			c.pending = pf
			c.status = ""
			c.logger.Debug("file staged", "name", pf.Name, "size", pf.Size)
			return nil
		}
	}

	c.status = err.Error()
	c.logger.Info("file rejected", "error", err)
	return err
}

// =============================================================================
// SUBMIT
// =============================================================================

// Submit dispatches the current input. A staged file takes precedence and
// starts the upload flow, ignoring the text. Whitespace-only text with no
// file does nothing, and so does any submit while an upload is running. The
// input is cleared whenever a flow starts.
func (c *Controller) Submit() tea.Cmd {
	if c.uploading {
		return nil
	}

	if c.pending != nil {
		file := *c.pending
		c.input = ""
		c.status = ""
		return c.startUpload(file)
	}

	if strings.TrimSpace(c.input) == "" {
		return nil
	}

	text := c.input
	c.input = ""
	c.status = ""
	return c.startChat(text, c.topic, false)
}

// SubmitText sets the input to text and submits it.
func (c *Controller) SubmitText(text string) tea.Cmd {
	c.input = text
	return c.Submit()
}

// =============================================================================
// MESSAGE FLOW
// =============================================================================

// startChat appends the user's text and returns the request command. topic
// is the one active when the user submitted.
func (c *Controller) startChat(text string, topic model.Topic, fromUpload bool) tea.Cmd {
	c.transcript.Append(model.NewUserMessage(model.KindChat, text))
	c.inFlight++
	c.nextID++

	id := c.nextID
	ctx := c.ctx
	b := c.backend

	c.logger.Info("chat request", "id", id, "topic", topic.String(), "chars", len(text), "from_upload", fromUpload)

	return func() tea.Msg {
		start := time.Now()
		resp, err := b.Chat(ctx, text, topic)
		return ChatResultMsg{ID: id, Response: resp, Err: err, Duration: time.Since(start), fromUpload: fromUpload}
	}
}

func (c *Controller) handleChatResult(msg ChatResultMsg) tea.Cmd {
	c.inFlight--

	switch {
	case msg.Err != nil:
		c.logger.Warn("chat failed", "id", msg.ID, "error", msg.Err, "duration", msg.Duration)
		c.transcript.Append(model.NewAIMessage(model.KindError, ChatErrorText(msg.Err)))
	case msg.Response == nil:
		c.logger.Warn("chat returned no body", "id", msg.ID)
		c.transcript.Append(model.NewAIMessage(model.KindError, ChatErrorText(errors.New("empty response"))))
	default:
		c.logger.Info("chat answered", "id", msg.ID, "duration", msg.Duration, "reasoning", msg.Response.FlashReasoning != "")
		c.transcript.Append(model.NewAIMessage(model.KindVerdict, msg.Response.TunedResponse))
		if msg.Response.FlashReasoning != "" {
			c.transcript.Append(model.NewAIMessage(model.KindReasoning, msg.Response.FlashReasoning))
		}
		c.transcript.Append(model.NewAIMessage(model.KindDisclaimer, DisclaimerText))
	}

	if msg.fromUpload {
		c.finishUpload()
	}
	return nil
}

// =============================================================================
// UPLOAD COORDINATOR
// =============================================================================

func (c *Controller) startUpload(file model.PendingFile) tea.Cmd {
	c.uploading = true
	c.inFlight++
	c.nextID++

	id := c.nextID
	ctx := c.ctx
	b := c.backend
	topic := c.topic

	c.logger.Info("upload request", "id", id, "name", file.Name, "size", file.Size)

	return func() tea.Msg {
		start := time.Now()
		resp, err := b.Upload(ctx, file)
		return UploadResultMsg{ID: id, Topic: topic, Response: resp, Err: err, Duration: time.Since(start)}
	}
}

func (c *Controller) handleUploadResult(msg UploadResultMsg) tea.Cmd {
	c.inFlight--

	if msg.Err != nil || msg.Response == nil {
		c.logger.Warn("upload failed", "id", msg.ID, "error", msg.Err, "duration", msg.Duration)
		c.transcript.Append(model.NewAIMessage(model.KindError, UploadFailedText))
		c.finishUpload()
		return nil
	}

	c.logger.Info("upload transcribed", "id", msg.ID, "duration", msg.Duration, "chars", len(msg.Response.Transcription))
	c.transcript.Append(model.NewAIMessage(model.KindNotice, UploadedNotice))

	// The upload flag stays set until the nested chat completes. The
	// transcription is analyzed under the topic it was submitted with.
	return c.startChat(msg.Response.Transcription, msg.Topic, true)
}

func (c *Controller) finishUpload() {
	c.uploading = false
	c.pending = nil
}

// =============================================================================
// RENDERING CONTRACT
// =============================================================================

// Snapshot is a read-only view of the controller state.
type Snapshot struct {
	SessionID string
	StartedAt time.Time
	Messages  []model.Message

	Topic       model.Topic
	Input       string
	Uploading   bool
	PendingFile string

	// InputDisabled is set under spam calls and while uploading.
	InputDisabled bool
	// SubmitDisabled is set while uploading.
	SubmitDisabled bool
	// AttachmentVisible is set under spam calls.
	AttachmentVisible bool
	// Busy is set while any request is in flight.
	Busy bool

	// Status is a transient line, e.g. why a file pick was refused.
	Status string
}

// Snapshot returns the current state. The message slice is a copy.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		SessionID:         c.transcript.ID,
		StartedAt:         c.transcript.CreatedAt,
		Messages:          c.transcript.Messages(),
		Topic:             c.topic,
		Input:             c.input,
		Uploading:         c.uploading,
		InputDisabled:     c.topic.WantsAudio() || c.uploading,
		SubmitDisabled:    c.uploading,
		AttachmentVisible: c.topic.WantsAudio(),
		Busy:              c.inFlight > 0,
		Status:            c.status,
	}
	if c.pending != nil {
		s.PendingFile = c.pending.Name
	}
	return s
}

// Len returns the number of transcript messages.
func (c *Controller) Len() int {
	return c.transcript.Len()
}

// Since returns the messages appended at or after index i.
func (c *Controller) Since(i int) []model.Message {
	return c.transcript.Since(i)
}

// String summarizes the state for debug logs.
func (s Snapshot) String() string {
	return fmt.Sprintf("topic=%s messages=%d uploading=%t pending=%q busy=%t",
		s.Topic, len(s.Messages), s.Uploading, s.PendingFile, s.Busy)
}
