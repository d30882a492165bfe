// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stubserver is a local stand-in for the Secure Sense analysis
// backend. It serves the same two endpoints with canned, keyword-based
// verdicts so the client can be developed and tested without model access.
package stubserver

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MadhuraBhatsoori/secure-sense/internal/logging"
)

// DefaultMaxUploadBytes bounds request bodies of the upload endpoint.
const DefaultMaxUploadBytes = 25 << 20

// Error texts returned in {"error": ...} bodies.
const (
	errNoMessage    = "No message provided"
	errBadBody      = "Invalid request body"
	errNoFilePart   = "No file part"
	errNoFile       = "No selected file"
	errFileTooLarge = "File too large"
	errInternal     = "An error occurred while processing the request"
	errTranscribe   = "Error transcribing audio"
)

// Transcriber turns an uploaded file into text.
type Transcriber func(filename string, data []byte) string

// Options configures the router. The zero value is usable.
type Options struct {
	MaxUploadBytes int64
	Transcriber    Transcriber
	Logger         *slog.Logger
}

type chatRequest struct {
	Message string  `json:"message"`
	Topic   *string `json:"topic"`
}

type chatResponse struct {
	TunedResponse  string  `json:"tuned_response"`
	FlashReasoning *string `json:"flash_reasoning"`
}

type uploadResponse struct {
	Transcription string `json:"transcription"`
}

type server struct {
	opts Options
	log  *slog.Logger
}

// NewRouter wires the stub endpoints.
func NewRouter(opts Options) http.Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.Transcriber == nil {
		opts.Transcriber = CannedTranscriber
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	s := &server{opts: opts, log: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(api chi.Router) {
		api.Post("/chat", s.handleChat)
		api.Post("/upload", s.handleUpload)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

// requestLogger logs one line per request with status and duration.
func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errBadBody)
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		respondError(w, http.StatusBadRequest, errNoMessage)
		return
	}

	topic := ""
	if req.Topic != nil {
		topic = strings.TrimSpace(*req.Topic)
	}

	resp, ok := analyze(topic, message)
	if !ok {
		s.log.Warn("chat without a known topic", "topic", topic)
		respondError(w, http.StatusInternalServerError, errInternal)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, errFileTooLarge)
			return
		}
		respondError(w, http.StatusBadRequest, errNoFilePart)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		// A part named "file" without a filename arrives as a plain value.
		if _, ok := r.MultipartForm.Value["file"]; ok {
			respondError(w, http.StatusBadRequest, errNoFile)
			return
		}
		respondError(w, http.StatusBadRequest, errNoFilePart)
		return
	}

	header := files[0]
	if header.Filename == "" {
		respondError(w, http.StatusBadRequest, errNoFile)
		return
	}

	f, err := header.Open()
	if err != nil {
		respondError(w, http.StatusInternalServerError, errInternal)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		respondError(w, http.StatusInternalServerError, errInternal)
		return
	}

	s.log.Debug("upload received", "name", header.Filename, "size", header.Size)
	respondJSON(w, http.StatusOK, uploadResponse{Transcription: s.opts.Transcriber(header.Filename, data)})
}

// CannedTranscriber returns the file content when it is plain text and a
// fixed scam-call script otherwise. Empty files fail the way the real
// transcriber does: with a 200 and an error text.
func CannedTranscriber(_ string, data []byte) string {
	if len(data) == 0 {
		return errTranscribe
	}
	if utf8.Valid(data) && isPrintable(string(data)) {
		return strings.TrimSpace(string(data))
	}
	return cannedCallScript
}

const cannedCallScript = "Hello, this is the security department of your bank. " +
	"Your account has been suspended. Please confirm your card number and PIN to restore access."

func isPrintable(s string) bool {
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' {
			continue
		}
		if r < 0x20 || r == utf8.RuneError {
			return false
		}
	}
	return true
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
