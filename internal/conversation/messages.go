// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"time"

	"github.com/MadhuraBhatsoori/secure-sense/internal/backend"
	"github.com/MadhuraBhatsoori/secure-sense/internal/model"
)

// =============================================================================
// USER EVENTS
// =============================================================================

// SelectTopicMsg picks a topic.
type SelectTopicMsg struct {
	Topic model.Topic
}

// InputChangedMsg replaces the text in the input field.
type InputChangedMsg struct {
	Text string
}

// FileSelectedMsg stages the audio file at Path for upload.
type FileSelectedMsg struct {
	Path string
}

// ClearFileMsg drops the staged file.
type ClearFileMsg struct{}

// SubmitMsg sends the current input, or uploads the staged file.
type SubmitMsg struct{}

// =============================================================================
// REQUEST COMPLETIONS
// =============================================================================

// ChatResultMsg carries the outcome of a chat request back into Update.
type ChatResultMsg struct {
	ID         int
	Response   *backend.ChatResponse
	Err        error
	Duration   time.Duration
	fromUpload bool
}

// UploadResultMsg carries the outcome of an upload back into Update.
type UploadResultMsg struct {
	ID int
	// Topic is the topic that was active when the file was submitted.
	Topic    model.Topic
	Response *backend.UploadResponse
	Err      error
	Duration time.Duration
}
