// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keyboard bindings of the chat view.
type KeyMap struct {
	Phishing   key.Binding
	SpamCalls  key.Binding
	Advice     key.Binding
	Attach     key.Binding
	ClearFile  key.Binding
	Submit     key.Binding
	Newline    key.Binding
	Export     key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Help       key.Binding
	ClosePanel key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Phishing: key.NewBinding(
			key.WithKeys("f1", "alt+1"),
			key.WithHelp("F1", "phishing email"),
		),
		SpamCalls: key.NewBinding(
			key.WithKeys("f2", "alt+2"),
			key.WithHelp("F2", "spam calls"),
		),
		Advice: key.NewBinding(
			key.WithKeys("f3", "alt+3"),
			key.WithHelp("F3", "security advice"),
		),
		Attach: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "attach recording"),
		),
		ClearFile: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("C-x", "drop attachment"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		Newline: key.NewBinding(
			key.WithKeys("alt+enter", "ctrl+j"),
			key.WithHelp("A-Enter", "new line"),
		),
		Export: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "export transcript"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "scroll down"),
		),
		Help: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("C-g", "toggle help"),
		),
		ClosePanel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "close"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Phishing, k.SpamCalls, k.Advice, k.Submit, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Phishing, k.SpamCalls, k.Advice},
		{k.Submit, k.Newline, k.Attach, k.ClearFile},
		{k.PageUp, k.PageDown, k.Export},
		{k.Help, k.ClosePanel, k.Quit},
	}
}
