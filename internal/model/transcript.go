// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// TRANSCRIPT TYPE
// =============================================================================

// Transcript is the ordered, append-only log of messages for one session.
// Entries are never edited or removed. A Transcript is owned by a single
// goroutine; readers get copies through Messages.
type Transcript struct {
	// Identity
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	messages []Message
}

// NewTranscript creates an empty transcript with a generated session ID.
func NewTranscript() *Transcript {
	now := time.Now()
	return &Transcript{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		messages:  make([]Message, 0, 16),
	}
}

// Append adds messages to the end of the transcript, preserving order.
func (t *Transcript) Append(msgs ...Message) {
	if len(msgs) == 0 {
		return
	}
	t.messages = append(t.messages, msgs...)
	t.UpdatedAt = time.Now()
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// Messages returns a copy of all messages in arrival order.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Since returns a copy of the messages appended at or after index i.
func (t *Transcript) Since(i int) []Message {
	if i < 0 {
		i = 0
	}
	if i >= len(t.messages) {
		return nil
	}
	out := make([]Message, len(t.messages)-i)
	copy(out, t.messages[i:])
	return out
}
