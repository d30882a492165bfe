// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/MadhuraBhatsoori/secure-sense/internal/model"
)

// MarkdownExporter exports the transcript as Markdown.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts the transcript to Markdown.
func (e *MarkdownExporter) Export(doc Document) ([]byte, error) {
	if err := validate(doc); err != nil {
		return nil, err
	}

	var sb strings.Builder

	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		fmt.Fprintf(&sb, "session: %s\n", doc.SessionID)
		fmt.Fprintf(&sb, "date: %s\n", doc.StartedAt.Format(time.RFC3339))
		fmt.Fprintf(&sb, "messages: %d\n", len(doc.Messages))
		fmt.Fprintf(&sb, "exported: %s\n", time.Now().Format(time.RFC3339))
		sb.WriteString("generator: securesense\n")
		sb.WriteString("---\n\n")
	}

	sb.WriteString("# Secure Sense Session\n\n")

	if e.options.IncludeMetadata {
		counts := model.CountBySender(doc.Messages)
		fmt.Fprintf(&sb, "- **Started**: %s\n", formatTimestamp(doc.StartedAt))
		fmt.Fprintf(&sb, "- **Messages**: %d (%s: %d, %s: %d)\n", len(doc.Messages),
			model.SenderUser.DisplayName(), counts[model.SenderUser],
			model.SenderAI.DisplayName(), counts[model.SenderAI])
		if n := countErrors(doc.Messages); n > 0 {
			fmt.Fprintf(&sb, "- **Failed requests**: %d\n", n)
		}
		sb.WriteString("\n---\n\n")
	}

	for i, msg := range doc.Messages {
		sb.WriteString(e.heading(msg))
		sb.WriteString(e.body(msg))
		sb.WriteString("\n\n")
		if i < len(doc.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	return []byte(sb.String()), nil
}

func (e *MarkdownExporter) heading(msg model.Message) string {
	label := msg.Sender.DisplayName()
	if kind := kindLabel(msg.Kind); kind != "" {
		label += " · " + kind
	}
	if e.options.IncludeTimestamps && !msg.Timestamp.IsZero() {
		return fmt.Sprintf("### %s <sub>%s</sub>\n\n", label, formatShortTimestamp(msg.Timestamp))
	}
	return fmt.Sprintf("### %s\n\n", label)
}

// body quotes pasted emails and transcriptions so their formatting cannot
// break the document structure.
func (e *MarkdownExporter) body(msg model.Message) string {
	if msg.IsUser() && msg.Kind == model.KindChat {
		lines := strings.Split(msg.Text, "\n")
		for i, l := range lines {
			lines[i] = "> " + l
		}
		return strings.Join(lines, "\n")
	}
	if msg.Kind == model.KindDisclaimer {
		return "*" + escapeMarkdown(msg.Text) + "*"
	}
	return msg.Text
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// escapeMarkdown escapes characters that would change inline formatting.
func escapeMarkdown(s string) string {
	return strings.NewReplacer("*", "\\*", "_", "\\_", "`", "\\`").Replace(s)
}
