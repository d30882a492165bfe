// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for a Secure Sense session.
//
// # Key Types
//
//   - Message: a single immutable chat entry (text, sender, kind, time)
//   - Transcript: the append-only ordered log of messages for one session
//   - Topic: the user's declared category of help request
//   - PendingFile: an audio recording staged for upload
//
// # Usage
//
//	tr := model.NewTranscript()
//	tr.Append(model.NewAIMessage(model.KindWelcome, "Hi there"))
//	for _, msg := range tr.Messages() {
//	    fmt.Println(msg.Sender.DisplayName(), msg.Text)
//	}
package model
