// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a session transcript to a file.
//
// Exports are a one-shot copy of the current session for the user to keep or
// forward. Nothing is read back; sessions are not persisted.
//
// # Formats
//
//   - Markdown (.md): readable transcript with a metadata header
//   - JSON (.json): the message list with senders, kinds and timestamps
//   - HTML (.html): self-contained page with inline CSS
//
// # Usage
//
//	doc := export.Document{SessionID: snap.SessionID, StartedAt: snap.StartedAt, Messages: snap.Messages}
//	path, err := export.ToFile(doc, "md", export.DefaultOptions())
package export
