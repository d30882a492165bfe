// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/MadhuraBhatsoori/secure-sense/internal/model"
	"github.com/MadhuraBhatsoori/secure-sense/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Document is the transcript being exported.
type Document struct {
	SessionID string          `json:"session_id"`
	StartedAt time.Time       `json:"started_at"`
	Messages  []model.Message `json:"messages"`
}

// Exporter renders a Document in one format.
type Exporter interface {
	// Export renders doc and returns the file content.
	Export(doc Document) ([]byte, error)

	// FileExtension returns the file extension, e.g. ".md".
	FileExtension() string

	// MimeType returns the MIME type of the rendered content.
	MimeType() string
}

var (
	// ErrEmpty is returned for a document with no messages.
	ErrEmpty = errors.New("transcript has no messages")

	// ErrUnknownFormat is returned by ForFormat.
	ErrUnknownFormat = errors.New("unknown export format")
)

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is where files are written. Default: current directory.
	OutputDir string

	// IncludeMetadata adds a header with the session id, dates and counts.
	IncludeMetadata bool

	// IncludeTimestamps adds a time to each message.
	IncludeTimestamps bool

	// Theme for HTML export ("light" or "dark").
	Theme string
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeMetadata:   true,
		IncludeTimestamps: true,
		Theme:             "dark",
	}
}

// ForFormat returns the exporter for "md", "markdown", "json" or "html".
func ForFormat(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), ".")) {
	case "", "md", "markdown":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(opts), nil
	case "html", "htm":
		return NewHTMLExporter(opts), nil
	}
	return nil, fmt.Errorf("%w %q (use md, json or html)", ErrUnknownFormat, format)
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ToFile renders doc in format and writes it under opts.OutputDir.
// Returns the path of the written file.
func ToFile(doc Document, format string, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	exporter, err := ForFormat(format, opts)
	if err != nil {
		return "", err
	}
	return WriteFile(doc, exporter, opts)
}

// WriteFile renders doc with exporter and writes the result atomically.
func WriteFile(doc Document, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(doc)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	outputPath := filepath.Join(dir, Filename(doc, exporter.FileExtension(), time.Now()))

	if err := util.AtomicWriteFileWithDir(outputPath, content, 0600, 0755); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return outputPath, nil
}

// Filename builds "securesense_<first 8 of session id>_<timestamp><ext>".
func Filename(doc Document, ext string, now time.Time) string {
	id := sanitizeFilename(doc.SessionID)
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("securesense_%s_%s%s", id, now.Format("20060102_150405"), ext)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r), r < 32, r == 127:
			b.WriteRune('-')
		case r == ' ' || r == '\t':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "session"
	}
	return b.String()
}

func countErrors(msgs []model.Message) int {
	n := 0
	for _, m := range msgs {
		if m.IsError() {
			n++
		}
	}
	return n
}

func validate(doc Document) error {
	if len(doc.Messages) == 0 {
		return ErrEmpty
	}
	return nil
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// formatShortTimestamp formats a timestamp for inline display.
func formatShortTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}

// kindLabel returns a heading suffix for messages that are not plain chat.
func kindLabel(k model.Kind) string {
	switch k {
	case model.KindVerdict:
		return "Verdict"
	case model.KindReasoning:
		return "Reasoning"
	case model.KindDisclaimer:
		return "Disclaimer"
	case model.KindError:
		return "Error"
	case model.KindNotice:
		return "Notice"
	default:
		return ""
	}
}
