// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/MadhuraBhatsoori/secure-sense/internal/conversation"
	"github.com/MadhuraBhatsoori/secure-sense/internal/model"
	"github.com/MadhuraBhatsoori/secure-sense/internal/util"
)

const (
	headerHeight     = 1
	topicBarHeight   = 3
	attachmentHeight = 1
	inputBoxHeight   = 5 // three text rows plus the border
	statusHeight     = 1
	fullHelpHeight   = 4
)

// chromeHeight is the number of rows not available to the viewport.
func (m Model) chromeHeight() int {
	h := headerHeight + topicBarHeight + attachmentHeight + inputBoxHeight + statusHeight
	if m.help.ShowAll {
		return h + fullHelpHeight
	}
	return h + 1
}

// renderChat renders the complete chat view.
func (m Model) renderChat() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	snap := m.ctrl.Snapshot()
	if m.pickerOpen {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderHeader(snap),
			m.theme.Brand.Render("Select a call recording")+m.theme.Muted.Render("  (Esc to cancel)"),
			m.picker.View(),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(snap),
		m.renderTopics(snap),
		m.viewport.View(),
		m.renderAttachment(snap),
		m.renderInput(snap),
		m.renderStatus(snap),
		m.help.View(m.keys),
	)
}

func (m Model) renderHeader(snap conversation.Snapshot) string {
	title := "Secure Sense"
	right := ""
	if snap.Topic != model.TopicNone {
		right = snap.Topic.Label()
	}
	gap := m.width - util.StringWidth(title) - util.StringWidth(right) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Width(m.width).Render(title + strings.Repeat(" ", gap) + right)
}

func (m Model) renderTopics(snap conversation.Snapshot) string {
	keys := []string{"F1", "F2", "F3"}
	buttons := make([]string, 0, len(model.Topics))
	for i, t := range model.Topics {
		label := fmt.Sprintf("%s %s", keys[i], t.Label())
		if snap.Topic == t {
			buttons = append(buttons, m.theme.TopicButtonActive.Render(label))
		} else {
			buttons = append(buttons, m.theme.TopicButton.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, buttons...)
}

// renderMessages renders the whole transcript for the viewport.
func (m Model) renderMessages(msgs []model.Message) string {
	width := m.viewport.Width
	if width < 20 {
		width = 20
	}
	bubbleWidth := width * 4 / 5

	var sb strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(m.renderMessage(msg, width, bubbleWidth))
	}
	return sb.String()
}

func (m Model) renderMessage(msg model.Message, width, bubbleWidth int) string {
	label := m.theme.SenderLabel.Render(msg.Sender.DisplayName())
	if m.opts.ShowTimestamps {
		label += " " + m.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))
	}

	style := m.theme.BubbleFor(msg)
	text := msg.Text
	if m.opts.RenderMarkdown && !msg.IsUser() && isMarkdownKind(msg.Kind) {
		text = m.markdown.Render(text, bubbleWidth-style.GetHorizontalFrameSize())
		style = style.Copy().UnsetForeground()
	}
	bubble := style.Width(bubbleWidth).Render(text)
	block := lipgloss.JoinVertical(lipgloss.Left, label, bubble)

	if msg.IsUser() {
		block = lipgloss.JoinVertical(lipgloss.Right, label, bubble)
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, block)
	}
	return block
}

// lastUserText returns the most recent text the user sent for analysis.
func lastUserText(msgs []model.Message) (model.Message, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].IsUser() && msgs[i].Kind == model.KindChat {
			return msgs[i], true
		}
	}
	return model.Message{}, false
}

// isMarkdownKind reports whether the backend may have formatted the text.
func isMarkdownKind(k model.Kind) bool {
	return k == model.KindVerdict || k == model.KindReasoning || k == model.KindChat
}

func (m Model) renderAttachment(snap conversation.Snapshot) string {
	if !snap.AttachmentVisible {
		return ""
	}
	switch {
	case snap.Uploading:
		return m.theme.Attachment.Render(fmt.Sprintf("%s Uploading %s...", m.spinner.View(), snap.PendingFile))
	case snap.PendingFile != "":
		return m.theme.Attachment.Render("Attached: "+snap.PendingFile) + m.theme.Muted.Render("  Enter to analyze, C-x to remove")
	default:
		return m.theme.Muted.Render("Press C-o to attach a call recording")
	}
}

func (m Model) renderInput(snap conversation.Snapshot) string {
	width := m.width - 2
	if width < 10 {
		width = 10
	}
	if snap.InputDisabled {
		placeholder := "Text input is disabled while analyzing calls"
		if snap.Uploading {
			placeholder = "Waiting for the analysis..."
		}
		body := util.PadRight(placeholder, width-4) + "\n\n"
		return m.theme.InputBoxDisabled.Width(width).Render(body)
	}
	return m.theme.InputBox.Width(width).Render(m.input.View())
}

func (m Model) renderStatus(snap conversation.Snapshot) string {
	switch {
	case m.notice != "":
		return m.theme.Muted.Render(util.TruncateWidth(m.notice, m.width))
	case snap.Status != "":
		return m.theme.Status.Render(util.TruncateWidth(snap.Status, m.width))
	case snap.Busy && !snap.Uploading:
		text := " Analyzing..."
		if msg, ok := lastUserText(snap.Messages); ok {
			text = fmt.Sprintf(" Analyzing %q...", msg.Preview(40))
		}
		return m.spinner.View() + m.theme.Muted.Render(util.TruncateWidth(text, m.width-2))
	default:
		return ""
	}
}
