// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/MadhuraBhatsoori/secure-sense/internal/model"
)

// Theme contains every style used by the chat views.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout
	App    lipgloss.Style
	Header lipgloss.Style
	Brand  lipgloss.Style
	Muted  lipgloss.Style

	// Topic buttons
	TopicButton       lipgloss.Style
	TopicButtonActive lipgloss.Style

	// Message bubbles
	UserBubble       lipgloss.Style
	AIBubble         lipgloss.Style
	VerdictBubble    lipgloss.Style
	ErrorBubble      lipgloss.Style
	DisclaimerBubble lipgloss.Style
	NoticeBubble     lipgloss.Style
	SenderLabel      lipgloss.Style
	Timestamp        lipgloss.Style

	// Input area
	InputBox         lipgloss.Style
	InputBoxDisabled lipgloss.Style
	Attachment       lipgloss.Style
	Status           lipgloss.Style
	Help             lipgloss.Style
	Spinner          lipgloss.Style
}

// NewTheme creates a theme. mode is "auto", "dark" or "light"; auto asks
// the terminal for its background.
func NewTheme(mode string) *Theme {
	profile := termenv.ColorProfile()

	var isDark bool
	switch strings.ToLower(mode) {
	case "dark":
		isDark = true
		lipgloss.SetHasDarkBackground(true)
	case "light":
		isDark = false
		lipgloss.SetHasDarkBackground(false)
	default:
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: profile == termenv.TrueColor,
		ColorProfile: profile,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle().Foreground(TextPrimary)

	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Purple).
		Padding(0, 1)
	t.Brand = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	t.Muted = lipgloss.NewStyle().Foreground(TextMuted)

	t.TopicButton = lipgloss.NewStyle().
		Foreground(Cyan).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.TopicButtonActive = t.TopicButton.Copy().
		Bold(true).
		Foreground(TextInverse).
		Background(Cyan).
		BorderForeground(Cyan)

	bubble := lipgloss.NewStyle().Padding(0, 1)
	t.UserBubble = bubble.Copy().
		Foreground(UserBubbleFg).
		Background(UserBubbleBg)
	t.AIBubble = bubble.Copy().
		Foreground(TextPrimary).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(AIBubbleBorder)
	t.VerdictBubble = t.AIBubble.Copy().BorderForeground(Emerald).Bold(true)
	t.ErrorBubble = t.AIBubble.Copy().BorderForeground(Rose).Foreground(ErrorBubbleFg)
	t.DisclaimerBubble = t.AIBubble.Copy().BorderForeground(Amber).Foreground(TextSecondary).Italic(true)
	t.NoticeBubble = t.AIBubble.Copy().BorderForeground(Amber)
	t.SenderLabel = lipgloss.NewStyle().Bold(true).Foreground(TextSecondary)
	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)

	t.InputBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 1)
	t.InputBoxDisabled = t.InputBox.Copy().BorderForeground(Overlay).Foreground(TextMuted)
	t.Attachment = lipgloss.NewStyle().Foreground(Amber)
	t.Status = lipgloss.NewStyle().Foreground(Rose)
	t.Help = lipgloss.NewStyle().Foreground(TextMuted)
	t.Spinner = lipgloss.NewStyle().Foreground(Purple)
}

// BubbleFor picks the bubble style for a message.
func (t *Theme) BubbleFor(m model.Message) lipgloss.Style {
	if m.IsUser() {
		return t.UserBubble
	}
	if m.IsError() {
		return t.ErrorBubble
	}
	switch m.Kind {
	case model.KindVerdict:
		return t.VerdictBubble
	case model.KindDisclaimer:
		return t.DisclaimerBubble
	case model.KindNotice:
		return t.NoticeBubble
	default:
		return t.AIBubble
	}
}

// GlamourStyle returns the glamour standard style name matching the theme.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}
