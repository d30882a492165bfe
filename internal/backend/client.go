// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend is the HTTP client for the Secure Sense analysis service.
//
// Two endpoints are used: a JSON chat endpoint that analyzes text under a
// topic, and a multipart upload endpoint that transcribes an audio file.
// Requests are rate limited and bounded by a timeout. Nothing is retried;
// callers surface failures to the user instead.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/MadhuraBhatsoori/secure-sense/internal/config"
	"github.com/MadhuraBhatsoori/secure-sense/internal/logging"
	"github.com/MadhuraBhatsoori/secure-sense/internal/model"
)

const (
	// DefaultTimeout is used when the config leaves the timeout unset.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize caps how much of a response body is read.
	MaxResponseSize = 4 * 1024 * 1024

	// RequestIDHeader carries the per-request correlation id.
	RequestIDHeader = "X-Request-ID"

	uploadField = "file"
)

// Client talks to the analysis backend. It is safe for concurrent use.
type Client struct {
	chatURL    string
	uploadURL  string
	httpClient *http.Client
	timeout    time.Duration
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request records.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithLimiter replaces the rate limiter. A nil limiter disables limiting.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// New creates a client for the endpoints in cfg.
func New(cfg config.APIConfig, opts ...Option) *Client {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		chatURL:   cfg.ChatURL(),
		uploadURL: cfg.UploadURL(),
		timeout:   timeout,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		limiter: newLimiter(cfg.RequestsPerMinute),
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newLimiter allows rpm requests per minute with a small burst so a topic
// pick followed by a quick question is not delayed.
func newLimiter(rpm int) *rate.Limiter {
	if rpm <= 0 {
		return nil
	}
	burst := rpm / 10
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), burst)
}

// Chat sends text for analysis under topic.
func (c *Client) Chat(ctx context.Context, text string, topic model.Topic) (*ChatResponse, error) {
	body, err := json.Marshal(NewChatRequest(text, topic))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var out ChatResponse
	if err := c.do(ctx, c.chatURL, "application/json", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Upload sends the recording at file.Path for transcription.
func (c *Client) Upload(ctx context.Context, file model.PendingFile) (*UploadResponse, error) {
	body, contentType, err := encodeUpload(file)
	if err != nil {
		return nil, err
	}

	var out UploadResponse
	if err := c.do(ctx, c.uploadURL, contentType, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// encodeUpload builds a multipart body with the recording in the "file" field.
func encodeUpload(file model.PendingFile) ([]byte, string, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s: %w", file.Name, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, uploadField, file.Name))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create multipart part: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", file.Name, err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// do performs one POST and decodes a 2xx body into out. Non-2xx answers
// become *APIError.
func (c *Client) do(ctx context.Context, url, contentType string, body []byte, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	requestID := uuid.NewString()
	ctx = logging.WithRequestID(ctx, requestID)
	log := logging.FromContext(ctx, c.logger)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: rate limit wait: %v", ErrTransport, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	// Bodies carry user emails and transcripts and are never logged.
	log.Debug("backend request", "method", req.Method, "path", req.URL.Path, "bytes", len(body))
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("backend request failed", "path", req.URL.Path, "duration", time.Since(start), "error", err)
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	log.Info("backend response", "path", req.URL.Path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, StatusText: statusText(resp)}
		// Error bodies only supply Detail; an oversized one is cut short.
		data, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
		var er errorResponse
		if json.Unmarshal(data, &er) == nil {
			apiErr.Detail = er.Error
		}
		log.Warn("backend error", "path", req.URL.Path, "status", apiErr.Status,
			"detail", apiErr.Detail, "temporary", apiErr.Temporary())
		return apiErr
	}

	data, err := readResponse(resp)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// readResponse reads the body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: %v", ErrTransport, err)
		}
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(data) > MaxResponseSize {
		return nil, fmt.Errorf("%w: exceeded %d bytes", ErrResponseTooLarge, MaxResponseSize)
	}
	return data, nil
}
