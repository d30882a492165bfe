// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling for the Secure Sense terminal UI
and the line-mode chat.

All colors are Lip Gloss AdaptiveColor values, so they follow the terminal's
light or dark background unless the theme is forced through configuration.

# Color System (colors.go)

  - Purple: brand accent, header and user bubbles
  - Cyan: topic buttons and focus
  - Emerald: verdicts
  - Amber: notices, disclaimers and the upload indicator
  - Rose: request failures

# Theme (theme.go)

Theme groups every lipgloss.Style the views use:

	theme := styles.NewTheme("auto")
	bubble := theme.BubbleFor(msg)
	fmt.Println(bubble.Render(msg.Text))
*/
package styles
