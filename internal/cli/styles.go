// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Shared styling for the securesense CLI.

package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/MadhuraBhatsoori/secure-sense/internal/model"
	"github.com/MadhuraBhatsoori/secure-sense/internal/ui/styles"
)

func init() {
	// Respects NO_COLOR, FORCE_COLOR and TTY detection.
	lipgloss.SetColorProfile(GetColorProfile())
}

var (
	// TitleStyle is used for command titles and headers
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Purple)

	// LabelStyle is used for field labels in config output
	LabelStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary).
			Width(28)

	// ValueStyle is used for regular values and text
	ValueStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimary)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	// DimStyle is used for secondary information and hints
	DimStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	SeparatorStyle = lipgloss.NewStyle().
			Foreground(styles.Overlay)

	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	userLabelStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	aiLabelStyle = lipgloss.NewStyle().
			Foreground(styles.Purple).
			Bold(true)

	verdictStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimary).
			Bold(true)

	disclaimerStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true)
)

// RenderSeparator renders a horizontal separator line.
func RenderSeparator(width int) string {
	if width <= 0 {
		width = 60
	}
	return SeparatorStyle.Render(strings.Repeat("─", width))
}

// RenderLabel renders a label with consistent width.
func RenderLabel(label string) string {
	return LabelStyle.Render(label)
}

// styleForKind picks the body style of a transcript message in the REPL.
func styleForKind(k model.Kind) lipgloss.Style {
	switch k {
	case model.KindVerdict:
		return verdictStyle
	case model.KindError:
		return ErrorStyle
	case model.KindDisclaimer:
		return disclaimerStyle
	case model.KindNotice:
		return SuccessStyle
	default:
		return ValueStyle
	}
}
