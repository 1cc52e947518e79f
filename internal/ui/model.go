// Package ui implements the terminal front end: a chat pane with source
// citations, an upload pane with mode tabs and result summaries, a toast
// stack and a connection badge. The Bubble Tea update loop gives the same
// single-threaded event model the controllers were designed for; network
// calls run inside tea.Cmd goroutines and report back as messages.
package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/vujjini/bm-assist/internal/backend"
	"github.com/vujjini/bm-assist/internal/config"
	"github.com/vujjini/bm-assist/internal/domain"
	"github.com/vujjini/bm-assist/internal/notify"
	"github.com/vujjini/bm-assist/internal/session"
)

type focusArea int

const (
	focusChat focusArea = iota
	focusUpload
)

// ToastsChangedMsg is sent by the notification center whenever the toast
// stack mutates.
type ToastsChangedMsg struct{}

// ConnChangedMsg is sent by the connection monitor on a state transition.
type ConnChangedMsg struct {
	State domain.ConnectionState
}

type chatDoneMsg struct{ err error }

type uploadDoneMsg struct{ err error }

type previewLoadedMsg struct {
	source domain.Source
	path   string
	size   int64
	err    error
}

// previewState is the single open source preview. Opening another preview
// replaces it.
type previewState struct {
	source  domain.Source
	loading bool
	path    string
	size    int64
	err     error
}

// Model is the root Bubble Tea model.
type Model struct {
	cfg     *config.Config
	client  *backend.Client
	chat    *session.ChatController
	upload  *session.UploadController
	center  *notify.Center
	monitor *notify.Monitor
	log     *zap.Logger

	focus     focusArea
	width     int
	height    int
	chatInput textinput.Model
	pathInput textinput.Model
	chatView  viewport.Model
	spin      spinner.Model

	msgCount  int
	sourceSel int
	preview   *previewState
	quitting  bool
}

// New creates the root model.
func New(
	cfg *config.Config,
	client *backend.Client,
	chat *session.ChatController,
	upload *session.UploadController,
	center *notify.Center,
	monitor *notify.Monitor,
	logger *zap.Logger,
) Model {
	chatInput := textinput.New()
	chatInput.Placeholder = "Ask about your building documents..."
	chatInput.CharLimit = 2000
	chatInput.Focus()

	pathInput := textinput.New()
	pathInput.Placeholder = "File paths, comma separated"
	pathInput.CharLimit = 4000

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return Model{
		cfg:       cfg,
		client:    client,
		chat:      chat,
		upload:    upload,
		center:    center,
		monitor:   monitor,
		log:       logger,
		chatInput: chatInput,
		pathInput: pathInput,
		chatView:  viewport.New(80, 20),
		spin:      spin,
		sourceSel: -1,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.chatView.Width = m.chatWidth() - 4
		m.chatView.Height = m.height - 10
		m.refreshChatView(false)

	case tea.KeyMsg:
		model, cmd, handled := m.handleKey(msg)
		if handled {
			return model, cmd
		}
		m = model

	case chatDoneMsg:
		m.refreshChatView(true)

	case uploadDoneMsg:
		// Result panel re-renders from controller state.

	case ConnChangedMsg:
		// Badge re-renders from monitor state.

	case ToastsChangedMsg:
		// Toast stack re-renders from center state.

	case previewLoadedMsg:
		if m.preview != nil && m.preview.source == msg.source {
			m.preview.loading = false
			m.preview.path = msg.path
			m.preview.size = msg.size
			m.preview.err = msg.err
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
	}

	if m.focus == focusChat {
		var cmd tea.Cmd
		m.chatInput, cmd = m.chatInput.Update(msg)
		cmds = append(cmds, cmd)
	} else {
		var cmd tea.Cmd
		m.pathInput, cmd = m.pathInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.chatView, cmd = m.chatView.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit, true

	case "tab":
		if m.focus == focusChat {
			m.focus = focusUpload
			m.chatInput.Blur()
			m.pathInput.Focus()
		} else {
			m.focus = focusChat
			m.pathInput.Blur()
			m.chatInput.Focus()
		}
		return m, nil, true

	case "esc":
		if m.preview != nil {
			m.preview = nil
			return m, nil, true
		}
		if m.sourceSel >= 0 {
			m.sourceSel = -1
			m.refreshChatView(false)
			return m, nil, true
		}
		return m, nil, false

	case "ctrl+s":
		if m.focus == focusChat {
			m.cycleSourceSelection()
			m.refreshChatView(false)
			return m, nil, true
		}
		return m, nil, false

	case "ctrl+x":
		if toasts := m.center.Active(); len(toasts) > 0 {
			m.center.Dismiss(toasts[0].ID)
		}
		return m, nil, true

	case "enter":
		if m.sourceSel >= 0 {
			return m.openSelectedPreview()
		}
		if m.focus == focusChat {
			return m.submitChat()
		}
		return m.submitUpload()
	}

	if m.focus == focusUpload {
		switch msg.String() {
		case "f1":
			m.upload.SelectMode(domain.UploadModeSingle)
			return m, nil, true
		case "f2":
			m.upload.SelectMode(domain.UploadModeMultiple)
			return m, nil, true
		case "f3":
			m.upload.SelectMode(domain.UploadModeZip)
			return m, nil, true
		case "f4":
			m.upload.SelectMode(domain.UploadModeManual)
			return m, nil, true
		}
	}

	return m, nil, false
}

func (m Model) submitChat() (Model, tea.Cmd, bool) {
	text := m.chatInput.Value()
	if !m.chat.Begin(text) {
		return m, nil, true
	}
	m.chatInput.Reset()
	m.refreshChatView(true)

	chat := m.chat
	return m, func() tea.Msg {
		return chatDoneMsg{err: chat.Finish(context.Background())}
	}, true
}

func (m Model) submitUpload() (Model, tea.Cmd, bool) {
	files := parseFilePaths(m.pathInput.Value())
	if err := m.upload.Begin(files); err != nil {
		return m, nil, true
	}
	m.pathInput.Reset()

	upload := m.upload
	return m, func() tea.Msg {
		return uploadDoneMsg{err: upload.Finish(context.Background())}
	}, true
}

// cycleSourceSelection walks the previewable sources of the latest
// assistant message. Sources with no pdf_path are skipped entirely.
func (m *Model) cycleSourceSelection() {
	sources := m.latestSources()
	if len(sources) == 0 {
		m.sourceSel = -1
		return
	}
	for next := m.sourceSel + 1; next < len(sources); next++ {
		if sources[next].Previewable() {
			m.sourceSel = next
			return
		}
	}
	m.sourceSel = -1
}

func (m Model) openSelectedPreview() (Model, tea.Cmd, bool) {
	sources := m.latestSources()
	if m.sourceSel < 0 || m.sourceSel >= len(sources) {
		return m, nil, true
	}
	src := sources[m.sourceSel]
	if !src.Previewable() {
		return m, nil, true
	}

	m.preview = &previewState{source: src, loading: true}

	client := m.client
	dir := m.cfg.Preview.Dir
	return m, func() tea.Msg {
		data, err := client.FetchFile(context.Background(), src.PDFPath)
		if err != nil {
			return previewLoadedMsg{source: src, err: err}
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return previewLoadedMsg{source: src, err: err}
		}
		dest := filepath.Join(dir, filepath.Base(src.PDFPath))
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return previewLoadedMsg{source: src, err: err}
		}
		return previewLoadedMsg{source: src, path: dest, size: int64(len(data))}
	}, true
}

func (m Model) latestSources() []domain.Source {
	messages := m.chat.Messages()
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == domain.RoleAssistant {
			return messages[i].Sources
		}
	}
	return nil
}

// refreshChatView re-renders the log. The view always follows the newest
// message when the log has grown.
func (m *Model) refreshChatView(scroll bool) {
	messages := m.chat.Messages()
	m.chatView.SetContent(renderMessages(messages, m.sourceSel, m.chatView.Width))
	if scroll || len(messages) != m.msgCount {
		m.chatView.GotoBottom()
	}
	m.msgCount = len(messages)
}

func (m Model) chatWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width * 3 / 5
}

func parseFilePaths(raw string) []backend.File {
	var files []backend.File
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		files = append(files, backend.LocalFile(part))
	}
	return files
}

func humanBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
