// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/MadhuraBhatsoori/secure-sense/internal/model"
)

// HTMLExporter exports the transcript as a standalone HTML page.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts the transcript to HTML. All message text is escaped.
func (e *HTMLExporter) Export(doc Document) ([]byte, error) {
	if err := validate(doc); err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"UTF-8\">\n")
	sb.WriteString("<title>Secure Sense Session</title>\n<style>\n")
	sb.WriteString(e.css())
	sb.WriteString("</style>\n</head>\n")
	fmt.Fprintf(&sb, "<body class=\"theme-%s\">\n<main>\n<h1>Secure Sense Session</h1>\n", html.EscapeString(e.theme()))

	if e.options.IncludeMetadata {
		fmt.Fprintf(&sb, "<p class=\"meta\">Session %s &middot; started %s &middot; %d messages</p>\n",
			html.EscapeString(doc.SessionID), formatTimestamp(doc.StartedAt), len(doc.Messages))
	}

	for _, msg := range doc.Messages {
		sb.WriteString(e.renderMessage(msg))
	}

	sb.WriteString("</main>\n</body>\n</html>\n")
	return []byte(sb.String()), nil
}

func (e *HTMLExporter) renderMessage(msg model.Message) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<div class=\"msg %s kind-%s\">\n", html.EscapeString(msg.Sender.String()), html.EscapeString(string(msg.Kind)))

	label := msg.Sender.DisplayName()
	if kind := kindLabel(msg.Kind); kind != "" {
		label += " &middot; " + kind
	}
	sb.WriteString("<div class=\"who\">" + label)
	if e.options.IncludeTimestamps && !msg.Timestamp.IsZero() {
		sb.WriteString(" <time>" + formatShortTimestamp(msg.Timestamp) + "</time>")
	}
	sb.WriteString("</div>\n")

	text := strings.ReplaceAll(html.EscapeString(msg.Text), "\n", "<br>\n")
	sb.WriteString("<div class=\"text\">" + text + "</div>\n</div>\n")
	return sb.String()
}

func (e *HTMLExporter) theme() string {
	if e.options.Theme == "light" {
		return "light"
	}
	return "dark"
}

func (e *HTMLExporter) css() string {
	return `body { font-family: system-ui, sans-serif; margin: 0; }
.theme-dark { background: #111827; color: #F9FAFB; }
.theme-light { background: #F9FAFB; color: #111827; }
main { max-width: 48rem; margin: 0 auto; padding: 2rem 1rem; }
.meta { opacity: 0.7; font-size: 0.9rem; }
.msg { border-radius: 0.75rem; padding: 0.75rem 1rem; margin: 0.75rem 0; max-width: 85%; }
.msg.user { margin-left: auto; background: #7C3AED; color: #FFFFFF; }
.msg.ai { background: rgba(127, 127, 127, 0.15); }
.kind-error { border-left: 4px solid #F43F5E; }
.kind-disclaimer { font-style: italic; opacity: 0.8; }
.kind-verdict { border-left: 4px solid #10B981; }
.who { font-size: 0.8rem; font-weight: 600; margin-bottom: 0.25rem; }
time { font-weight: 400; opacity: 0.7; }
`
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}
