// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared by the config, export and UI
// packages: crash-safe file writes and display-width aware string handling.
//
//	// Trim a transcript preview to a terminal column budget
//	line := util.TruncateWidth(msg.Text, 40)
//
//	// Persist a file without ever leaving a half-written copy
//	err := util.AtomicWriteFile(path, data, 0600)
package util
