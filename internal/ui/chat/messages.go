// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "time"

// ExportDoneMsg reports the outcome of a transcript export.
type ExportDoneMsg struct {
	Path string
	Err  error
}

// noticeExpiredMsg clears a transient notice if it is still the current one.
type noticeExpiredMsg struct {
	seq int
}

const noticeTTL = 5 * time.Second
