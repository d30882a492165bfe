// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// RequestSpinner is shown while a chat or upload request is in flight.
// ASCII frames render the same on every terminal.
var RequestSpinner = spinner.Spinner{
	Frames: []string{"|", "/", "-", "\\"},
	FPS:    time.Second / 10,
}

// UploadSpinner is shown while a recording is being transcribed.
var UploadSpinner = spinner.Spinner{
	Frames: []string{"[    ]", "[=   ]", "[==  ]", "[=== ]", "[====]", "[ ===]", "[  ==]", "[   =]"},
	FPS:    time.Second / 4,
}
