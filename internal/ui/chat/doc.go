// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the full-screen terminal chat view.
//
// The view owns only widgets (viewport, text area, spinner, file picker and
// help). All session state lives in a conversation.Controller; the view
// forwards user actions to it, feeds request results back into it and
// renders from its Snapshot.
//
// Layout, top to bottom: header, topic buttons, transcript viewport,
// attachment line, input box, status/help line.
package chat
