// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"
)

// JSONExporter exports the transcript as JSON. It always includes every
// field; Options only matter to the other formats.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

type jsonDocument struct {
	Document
	ExportedAt time.Time `json:"exported_at"`
	Generator  string    `json:"generator"`
}

// Export converts the transcript to indented JSON.
func (e *JSONExporter) Export(doc Document) ([]byte, error) {
	if err := validate(doc); err != nil {
		return nil, err
	}
	return json.MarshalIndent(jsonDocument{
		Document:   doc,
		ExportedAt: time.Now(),
		Generator:  "securesense",
	}, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
