// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// DefaultAudioExtensions is the allow-list used when none is configured.
var DefaultAudioExtensions = []string{".mp3", ".wav", ".m4a", ".ogg", ".flac", ".webm", ".aac"}

var (
	// ErrNotAudio indicates the picked file does not look like an audio recording.
	ErrNotAudio = errors.New("not an audio file")

	// ErrFileTooLarge indicates the picked file exceeds the upload limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrNotRegularFile indicates the path is a directory or device.
	ErrNotRegularFile = errors.New("not a regular file")
)

// PendingFile is an audio recording staged for upload.
type PendingFile struct {
	Path        string
	Name        string
	Size        int64
	ContentType string
}

// NewPendingFile stats path and checks it against the extension allow-list
// and size limit. A maxSize of zero disables the size check.
func NewPendingFile(path string, allowed []string, maxSize int64) (*PendingFile, error) {
	if len(allowed) == 0 {
		allowed = DefaultAudioExtensions
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !hasExtension(allowed, ext) {
		return nil, fmt.Errorf("%w: %s (allowed: %s)", ErrNotAudio, filepath.Base(path), strings.Join(allowed, " "))
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotRegularFile, path)
	}
	if maxSize > 0 && info.Size() > maxSize {
		return nil, fmt.Errorf("%w: %s is %d bytes (limit %d)", ErrFileTooLarge, info.Name(), info.Size(), maxSize)
	}

	return &PendingFile{
		Path:        path,
		Name:        info.Name(),
		Size:        info.Size(),
		ContentType: audioContentType(ext),
	}, nil
}

func hasExtension(allowed []string, ext string) bool {
	for _, a := range allowed {
		a = strings.ToLower(strings.TrimSpace(a))
		if !strings.HasPrefix(a, ".") {
			a = "." + a
		}
		if a == ext {
			return true
		}
	}
	return false
}

// audioContentType maps an extension to a MIME type, falling back to
// audio/mpeg, which is what the transcription backend decodes.
func audioContentType(ext string) string {
	if ct := mime.TypeByExtension(ext); strings.HasPrefix(ct, "audio/") {
		return ct
	}
	switch ext {
	case ".m4a", ".aac":
		return "audio/aac"
	case ".flac":
		return "audio/flac"
	case ".ogg":
		return "audio/ogg"
	case ".wav":
		return "audio/wav"
	case ".webm":
		return "audio/webm"
	default:
		return "audio/mpeg"
	}
}
