package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vujjini/bm-assist/internal/domain"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderToasts())

	chat := m.renderChatPane()
	upload := m.renderUploadPane()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, chat, upload))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab: switch pane · ctrl+s: cycle sources · enter: send/open · esc: close · ctrl+x: dismiss toast · ctrl+c: quit"))

	if m.preview != nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.renderPreview())
	}
	return b.String()
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("Building Manager Assistant")

	var badge string
	switch m.monitor.State() {
	case domain.ConnectionConnected:
		badge = connectedStyle.Render("● connected")
	case domain.ConnectionDisconnected:
		badge = disconnectedStyle.Render("● disconnected")
	default:
		badge = unknownStyle.Render("● checking...")
	}

	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", badge)
}

func (m Model) renderToasts() string {
	toasts := m.center.Active()
	if len(toasts) == 0 {
		return ""
	}
	var b strings.Builder
	for _, n := range toasts {
		style := toastSuccessStyle
		if n.Kind == domain.NotifyError {
			style = toastErrorStyle
		}
		b.WriteString(style.Render(n.Message))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderChatPane() string {
	style := panelStyle
	if m.focus == focusChat {
		style = panelFocusedStyle
	}

	input := m.chatInput.View()
	if m.chat.Sending() {
		input = m.spin.View() + " thinking..."
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.chatView.View(),
		"",
		input,
	)
	return style.Width(m.chatWidth()).Render(content)
}

// renderMessages draws the log in strict append order. A malformed entry
// only loses its own line: rendering is isolated per message.
func renderMessages(messages []domain.ChatMessage, sourceSel int, width int) string {
	var b strings.Builder
	lastAssistant := -1
	for i, msg := range messages {
		if msg.Role == domain.RoleAssistant {
			lastAssistant = i
		}
	}

	for i, msg := range messages {
		sel := -1
		if i == lastAssistant {
			sel = sourceSel
		}
		b.WriteString(renderMessage(msg, sel, width))
		b.WriteString("\n")
	}
	return b.String()
}

func renderMessage(msg domain.ChatMessage, sourceSel int, width int) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = errMsgStyle.Render("Error displaying message")
		}
	}()

	var b strings.Builder
	if msg.Role == domain.RoleUser {
		b.WriteString(userMsgStyle.Render("You: "))
	} else {
		b.WriteString(assistantMsgStyle.Render("Assistant: "))
	}
	b.WriteString(msg.Text)

	for i, src := range msg.Sources {
		b.WriteString("\n  ")
		label := fmt.Sprintf("[%d] %s", i+1, src.Filename)
		switch {
		case !src.Previewable():
			b.WriteString(sourceDisabledStyle.Render(label))
		case i == sourceSel:
			b.WriteString(sourceSelectedStyle.Render(label + " (enter to preview)"))
		default:
			b.WriteString(sourceStyle.Render(label))
		}
	}
	return b.String()
}

func (m Model) renderUploadPane() string {
	style := panelStyle
	if m.focus == focusUpload {
		style = panelFocusedStyle
	}

	tabs := m.renderModeTabs()
	input := m.pathInput.View()
	if m.upload.Uploading() {
		input = m.spin.View() + " uploading..."
	}

	var body string
	if errText := m.upload.LastError(); errText != "" {
		body = errMsgStyle.Render(errText)
	} else {
		body = renderUploadResult(m.upload.Result())
	}

	width := m.width - m.chatWidth() - 4
	if width < 30 {
		width = 30
	}
	content := lipgloss.JoinVertical(lipgloss.Left, tabs, "", input, "", body)
	return style.Width(width).Render(content)
}

func (m Model) renderModeTabs() string {
	modes := []struct {
		mode  domain.UploadMode
		label string
	}{
		{domain.UploadModeSingle, "F1 Single"},
		{domain.UploadModeMultiple, "F2 Multiple"},
		{domain.UploadModeZip, "F3 ZIP"},
		{domain.UploadModeManual, "F4 Manual PDF"},
	}

	active := m.upload.Mode()
	parts := make([]string, 0, len(modes))
	for _, t := range modes {
		if t.mode == active {
			parts = append(parts, tabActiveStyle.Render(t.label))
		} else {
			parts = append(parts, tabStyle.Render(t.label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

// renderUploadResult branches on the result's structural shape, never on
// the mode that triggered the upload.
func renderUploadResult(result domain.UploadResult) string {
	switch r := result.(type) {
	case *domain.SingleFileResult:
		return fmt.Sprintf("%s\n%d documents processed", r.Filename, r.DocumentsProcessed)

	case *domain.FolderResult:
		var b strings.Builder
		fmt.Fprintf(&b, "Files: %d total, %d ok, %d failed\n", r.TotalFilesProcessed, r.SuccessfulFiles, r.FailedFiles)
		fmt.Fprintf(&b, "Documents processed: %d", r.TotalDocumentsProcessed)
		for _, fr := range r.FileResults {
			status := "ok"
			if !fr.Success {
				status = "failed: " + fr.ErrorMessage
			}
			fmt.Fprintf(&b, "\n  %s (%s) — %s", fr.Filename, fr.FileType, status)
		}
		return b.String()

	case *domain.ManualPdfResult:
		return fmt.Sprintf("%s\n%s, %d pages, %d chars extracted via %s\n%d documents in %.1fs",
			r.Filename, humanBytes(r.FileSizeBytes), r.PageCount, r.TextLength,
			r.ExtractionMethod, r.DocumentsProcessed, r.ProcessingTimeSeconds)

	default:
		return helpStyle.Render("No uploads yet")
	}
}

func (m Model) renderPreview() string {
	p := m.preview
	var b strings.Builder
	b.WriteString(sourceStyle.Render(p.source.Filename))
	b.WriteString("\n\n")

	switch {
	case p.loading:
		b.WriteString(m.spin.View() + " fetching...")
	case p.err != nil:
		b.WriteString(errMsgStyle.Render("Preview failed: " + p.err.Error()))
	default:
		fmt.Fprintf(&b, "Saved to %s (%s)", p.path, humanBytes(p.size))
	}

	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("esc to close"))
	return overlayStyle.Render(b.String())
}
