// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// markdownRenderer renders ai replies as terminal markdown. The glamour
// renderer is rebuilt when the wrap width changes; rendered text is cached
// per message text and width.
type markdownRenderer struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
	cache    map[string]string
}

func newMarkdownRenderer(style string) *markdownRenderer {
	return &markdownRenderer{style: style, cache: make(map[string]string)}
}

// Render returns text as styled markdown wrapped at width. On any glamour
// error the plain text is returned.
func (r *markdownRenderer) Render(text string, width int) string {
	if width < 10 {
		return text
	}
	if width != r.width || r.renderer == nil {
		tr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(r.style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return text
		}
		r.renderer = tr
		r.width = width
		r.cache = make(map[string]string)
	}

	if out, ok := r.cache[text]; ok {
		return out
	}
	out, err := r.renderer.Render(text)
	if err != nil {
		return text
	}
	out = strings.Trim(out, "\n")
	r.cache[text] = out
	return out
}
