// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

package stubserver

import (
	"fmt"
	"sort"
	"strings"
)

// Topic wire values accepted by the chat endpoint.
const (
	topicPhishing = "phishing email"
	topicCalls    = "spam calls"
	topicAdvice   = "general security advice"
)

var emailIndicators = []string{
	"verify your account", "confirm your identity", "password", "urgent",
	"click here", "suspended", "wire transfer", "gift card", "winner",
	"prize", "invoice attached", "login", "unusual activity", "ssn",
}

var callIndicators = []string{
	"card number", "pin", "social security", "suspended", "gift card",
	"warrant", "irs", "refund", "press 1", "act now", "verify", "bank",
}

var adviceTips = []string{
	"Use a password manager and a unique password for every account.",
	"Turn on multi-factor authentication wherever it is offered.",
	"Never share one-time codes, PINs or card numbers with a caller.",
	"Check the sender address and hover over links before clicking.",
	"Keep your operating system and apps up to date.",
}

// analyze produces the chat response for a topic. ok is false when the
// topic is unknown, which the real backend answers with a 500.
func analyze(topic, message string) (chatResponse, bool) {
	switch topic {
	case topicPhishing:
		hits := matchIndicators(message, emailIndicators)
		verdict := "safe"
		if len(hits) > 0 {
			verdict = "phishing"
		}
		reasoning := reasoningFor("email", verdict, hits)
		return chatResponse{
			TunedResponse:  fmt.Sprintf("The email you pasted in chat is %s.", verdict),
			FlashReasoning: &reasoning,
		}, true

	case topicCalls:
		hits := matchIndicators(message, callIndicators)
		verdict := "not spam"
		if len(hits) > 0 {
			verdict = "spam"
		}
		reasoning := reasoningFor("call record", verdict, hits)
		return chatResponse{
			TunedResponse:  fmt.Sprintf("The call record you attached indicates %s.", verdict),
			FlashReasoning: &reasoning,
		}, true

	case topicAdvice:
		return chatResponse{TunedResponse: stripMarkup(adviceFor(message))}, true
	}
	return chatResponse{}, false
}

// matchIndicators returns the indicators found in text, sorted.
func matchIndicators(text string, indicators []string) []string {
	lower := strings.ToLower(text)
	var hits []string
	for _, ind := range indicators {
		if containsWord(lower, ind) {
			hits = append(hits, ind)
		}
	}
	sort.Strings(hits)
	return hits
}

// containsWord reports whether phrase occurs in text on word boundaries.
func containsWord(text, phrase string) bool {
	for start := 0; ; {
		i := strings.Index(text[start:], phrase)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(phrase)
		if (i == 0 || !isWordByte(text[i-1])) && (end == len(text) || !isWordByte(text[end])) {
			return true
		}
		start = i + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// reasoningFor builds markdown-flavored reasoning and strips it the way the
// real backend does before returning it.
func reasoningFor(subject, verdict string, hits []string) string {
	var b strings.Builder
	b.WriteString("## Reasoning\n")
	if len(hits) == 0 {
		fmt.Fprintf(&b, "**No common scam indicators** were found in this %s, so it looks %s; stay cautious with unexpected requests.", subject, verdict)
	} else {
		fmt.Fprintf(&b, "This %s is considered **%s** because it mentions %s; do not reply, and contact the organization through a channel you trust.",
			subject, verdict, strings.Join(quoteAll(hits), ", "))
	}
	return stripMarkup(b.String())
}

func adviceFor(message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "password"):
		return "**Passwords:** " + adviceTips[0]
	case strings.Contains(lower, "call") || strings.Contains(lower, "phone"):
		return "**Phone safety:** " + adviceTips[2]
	case strings.Contains(lower, "email") || strings.Contains(lower, "link"):
		return "**Email safety:** " + adviceTips[3]
	default:
		return "# Quick tips\n* " + strings.Join(adviceTips, "\n* ")
	}
}

// stripMarkup removes the '#' and '*' characters the backend filters out.
func stripMarkup(s string) string {
	return strings.TrimSpace(strings.NewReplacer("#", "", "*", "").Replace(s))
}

func quoteAll(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = `"` + s + `"`
	}
	return out
}
