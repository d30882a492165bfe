// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for a Secure Sense session.
package model

import (
	"time"

	"github.com/MadhuraBhatsoori/secure-sense/internal/util"
)

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// String returns the string representation of the sender.
func (s Sender) String() string {
	return string(s)
}

// DisplayName returns a human-readable name for the sender.
func (s Sender) DisplayName() string {
	switch s {
	case SenderUser:
		return "You"
	case SenderAI:
		return "Secure Sense"
	default:
		return string(s)
	}
}

// =============================================================================
// KIND TYPE
// =============================================================================

// Kind tags what a message is for, so views and exporters can style it.
// It never affects ordering or counting.
type Kind string

const (
	KindWelcome    Kind = "welcome"    // Session greeting
	KindIntent     Kind = "intent"     // "I need help regarding ..." from a topic pick
	KindPrompt     Kind = "prompt"     // Scripted reply to a topic pick
	KindChat       Kind = "chat"       // Typed user text or a transcription
	KindVerdict    Kind = "verdict"    // tuned_response from the backend
	KindReasoning  Kind = "reasoning"  // flash_reasoning from the backend
	KindDisclaimer Kind = "disclaimer" // Trailer after every answered turn
	KindNotice     Kind = "notice"     // Informational, e.g. upload finished
	KindError      Kind = "error"      // Request failure
)

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single entry in the transcript. Values are immutable once
// created; the transcript hands out copies.
type Message struct {
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Kind      Kind      `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message stamped with the current time.
func NewMessage(sender Sender, kind Kind, text string) Message {
	return Message{
		Text:      text,
		Sender:    sender,
		Kind:      kind,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a user message.
func NewUserMessage(kind Kind, text string) Message {
	return NewMessage(SenderUser, kind, text)
}

// NewAIMessage creates an ai message.
func NewAIMessage(kind Kind, text string) Message {
	return NewMessage(SenderAI, kind, text)
}

// IsUser reports whether the user sent the message.
func (m Message) IsUser() bool {
	return m.Sender == SenderUser
}

// IsError reports whether the message describes a failed request.
func (m Message) IsError() bool {
	return m.Kind == KindError
}

// Preview returns the text on one line, cut to maxLen runes.
func (m Message) Preview(maxLen int) string {
	return util.TruncateRunes(util.SingleLine(m.Text), maxLen)
}

// CountBySender returns how many of msgs each sender produced.
func CountBySender(msgs []Message) map[Sender]int {
	counts := make(map[Sender]int, 2)
	for _, m := range msgs {
		counts[m.Sender]++
	}
	return counts
}
