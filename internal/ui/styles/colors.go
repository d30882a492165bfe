// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// ACCENT COLORS
// =============================================================================

var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// =============================================================================
// SURFACES AND TEXT
// =============================================================================

var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}

var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}

var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// =============================================================================
// MESSAGE BUBBLES
// =============================================================================

var UserBubbleBg = lipgloss.AdaptiveColor{Light: "#EDE9FE", Dark: "#4C1D95"}
var UserBubbleFg = lipgloss.AdaptiveColor{Light: "#4C1D95", Dark: "#F5F3FF"}

var AIBubbleBorder = lipgloss.AdaptiveColor{Light: "#C4B5FD", Dark: "#6C7086"}

var ErrorBubbleFg = lipgloss.AdaptiveColor{Light: "#991B1B", Dark: "#FECACA"}

// =============================================================================
// STATUS HELPERS
// =============================================================================

// RenderError renders a one-line error in the error color.
func RenderError(message string) string {
	return lipgloss.NewStyle().Foreground(Rose).Render("x " + message)
}

// RenderInfo renders a one-line hint in the muted color.
func RenderInfo(message string) string {
	return lipgloss.NewStyle().Foreground(TextSecondary).Render(message)
}

// RenderSuccess renders a one-line confirmation in the success color.
func RenderSuccess(message string) string {
	return lipgloss.NewStyle().Foreground(Emerald).Render("ok " + message)
}
