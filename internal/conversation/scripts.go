// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import "github.com/MadhuraBhatsoori/secure-sense/internal/model"

// Fixed texts shown in the transcript.
const (
	WelcomeText = "Hi there, Welcome to Secure Sense. We're here to help you stay protected from phishing emails and calls. " +
		"We will analyze your emails or calls for suspicious activity, and we'll alert you of potential threats. " +
		"Let's get started on securing your information! Select buttons below to choose your option."

	PhishingPrompt = "Please paste your email to analyze in chat"

	SpamCallsPrompt = "Please attach your call record to analyze in chat"

	AdviceText = "How can I assist with your security concerns today? Are you looking for tips on safeguarding your " +
		"personal data, avoiding phishing scams, securing online accounts, or protecting your devices, I’m here to help. " +
		"Is there anything specific you'd like advice on?"

	DisclaimerText = "Disclaimer: The analysis provided may contain inaccuracies. We encourage you to review the " +
		"information and verify it independently before making any decisions."

	UploadedNotice = "Audio file uploaded and transcribed:"

	UploadFailedText = "Error uploading file. Please try again."

	chatErrorPrefix = "Sorry, there was an error processing your request: "
)

// IntentText is the user message appended when a topic is picked.
func IntentText(t model.Topic) string {
	return "I need help regarding " + t.WireValue()
}

// topicReply is the scripted ai message for a topic pick.
func topicReply(t model.Topic) string {
	switch t {
	case model.TopicPhishingEmail:
		return PhishingPrompt
	case model.TopicSpamCalls:
		return SpamCallsPrompt
	case model.TopicGeneralAdvice:
		return AdviceText
	default:
		return ""
	}
}

// ChatErrorText is the single ai message appended when a chat request fails.
func ChatErrorText(err error) string {
	return chatErrorPrefix + err.Error()
}
