// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import "github.com/MadhuraBhatsoori/secure-sense/internal/model"

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
	// Topic is null when no topic is selected.
	Topic *string `json:"topic"`
}

// NewChatRequest builds a request for text under topic.
func NewChatRequest(text string, topic model.Topic) ChatRequest {
	req := ChatRequest{Message: text}
	if wire := topic.WireValue(); wire != "" {
		req.Topic = &wire
	}
	return req
}

// ChatResponse is the body of a successful POST /api/chat.
type ChatResponse struct {
	TunedResponse string `json:"tuned_response"`
	// FlashReasoning may be absent, null or empty.
	FlashReasoning string `json:"flash_reasoning,omitempty"`
}

// UploadResponse is the body of a successful POST /api/upload.
type UploadResponse struct {
	Transcription string `json:"transcription"`
}

// errorResponse is the body the backend sends alongside 4xx/5xx codes.
type errorResponse struct {
	Error string `json:"error"`
}
