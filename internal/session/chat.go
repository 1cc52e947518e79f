package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vujjini/bm-assist/internal/backend"
	"github.com/vujjini/bm-assist/internal/domain"
)

// ApologyText is the fixed assistant reply injected when a round trip fails.
const ApologyText = "Sorry, I ran into a problem answering that. Please try again."

// ChatAPI is the slice of the backend client the chat controller needs.
type ChatAPI interface {
	Chat(ctx context.Context, question string) (*domain.ChatResponse, error)
}

// Notifier publishes transient toasts. Controllers never own notification
// state; they request mutation through this interface.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// ChatController drives request/response turns against the backend and owns
// the append-only message log. Send is single-flight: a second send while
// one is in flight is ignored. A failed turn folds back into Ready with an
// injected assistant apology; the session never dead-ends.
type ChatController struct {
	mu       sync.Mutex
	api      ChatAPI
	notifier Notifier
	log      *zap.Logger

	messages []domain.ChatMessage
	sending  bool
	pending  string
}

// NewChatController creates a chat controller.
func NewChatController(api ChatAPI, notifier Notifier, logger *zap.Logger) *ChatController {
	return &ChatController{
		api:      api,
		notifier: notifier,
		log:      logger,
	}
}

// Begin validates the input, appends the user message optimistically and
// moves the controller to its sending state. It reports whether the send
// was accepted; empty input and in-flight sends are silent no-ops.
func (c *ChatController) Begin(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sending {
		return false
	}

	c.messages = append(c.messages, domain.ChatMessage{
		ID:        uuid.New().String(),
		Role:      domain.RoleUser,
		Text:      text,
		CreatedAt: time.Now(),
	})
	c.sending = true
	c.pending = text
	return true
}

// Finish performs the network round trip for the question accepted by
// Begin and appends the assistant reply. The user message is never rolled
// back: on failure the reply is the fixed apology and an error toast is
// emitted with the classified detail.
func (c *ChatController) Finish(ctx context.Context) error {
	c.mu.Lock()
	question := c.pending
	c.mu.Unlock()

	resp, err := c.api.Chat(ctx, question)

	reply := domain.ChatMessage{
		ID:        uuid.New().String(),
		Role:      domain.RoleAssistant,
		CreatedAt: time.Now(),
	}
	if err != nil {
		reply.Text = ApologyText
	} else {
		reply.Text = resp.Answer
		reply.Sources = resp.Sources
	}

	c.mu.Lock()
	c.sending = false
	c.pending = ""
	c.messages = append(c.messages, reply)
	c.mu.Unlock()

	// Notify outside the lock: the toast callback may re-enter the UI loop,
	// which reads controller state.
	if err != nil {
		if c.log != nil {
			c.log.Warn("chat request failed", zap.Error(err))
		}
		if c.notifier != nil {
			c.notifier.Error("Chat error: " + backend.ErrorText(err))
		}
		return err
	}
	return nil
}

// Send is the full round trip: Begin plus Finish.
func (c *ChatController) Send(ctx context.Context, text string) error {
	if !c.Begin(text) {
		if strings.TrimSpace(text) == "" {
			return domain.ErrEmptyMessage
		}
		return domain.ErrBusy
	}
	return c.Finish(ctx)
}

// Sending reports whether a round trip is in flight.
func (c *ChatController) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

// Messages returns a snapshot of the log in insertion order.
func (c *ChatController) Messages() []domain.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}
