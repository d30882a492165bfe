// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Topic is the user's declared category of help request.
// The zero value is TopicNone.
type Topic int

const (
	TopicNone Topic = iota
	TopicPhishingEmail
	TopicSpamCalls
	TopicGeneralAdvice
)

// Topics lists the selectable topics in display order.
var Topics = []Topic{TopicPhishingEmail, TopicSpamCalls, TopicGeneralAdvice}

// WireValue returns the value the analysis backend expects in the
// "topic" field. TopicNone has no wire value and is sent as null.
func (t Topic) WireValue() string {
	switch t {
	case TopicPhishingEmail:
		return "phishing email"
	case TopicSpamCalls:
		return "spam calls"
	case TopicGeneralAdvice:
		return "general security advice"
	default:
		return ""
	}
}

// String returns the wire value, or "none".
func (t Topic) String() string {
	if t == TopicNone {
		return "none"
	}
	return t.WireValue()
}

// Label returns the button label for the topic.
func (t Topic) Label() string {
	switch t {
	case TopicGeneralAdvice:
		return "Security Advice"
	case TopicNone:
		return "None"
	default:
		return cases.Title(language.English).String(t.WireValue())
	}
}

// WantsAudio reports whether the topic analyzes uploaded recordings
// instead of typed text.
func (t Topic) WantsAudio() bool {
	return t == TopicSpamCalls
}

// ParseTopic accepts a wire value, a label, or a short alias
// ("phishing", "email", "spam", "calls", "advice", "general", "none").
func ParseTopic(s string) (Topic, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("_", " ", "-", " ").Replace(key)
	switch key {
	case "phishing email", "phishing", "email", "1":
		return TopicPhishingEmail, nil
	case "spam calls", "spam call", "spam", "calls", "call", "2":
		return TopicSpamCalls, nil
	case "general security advice", "security advice", "advice", "general", "3":
		return TopicGeneralAdvice, nil
	case "none", "":
		return TopicNone, nil
	}
	return TopicNone, fmt.Errorf("unknown topic %q", s)
}
