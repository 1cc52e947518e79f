package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vujjini/bm-assist/internal/backend"
	"github.com/vujjini/bm-assist/internal/domain"
)

type fakeChatAPI struct {
	mu        sync.Mutex
	questions []string
	resp      *domain.ChatResponse
	err       error
	release   chan struct{}
}

func (f *fakeChatAPI) Chat(ctx context.Context, question string) (*domain.ChatResponse, error) {
	f.mu.Lock()
	f.questions = append(f.questions, question)
	release := f.release
	f.mu.Unlock()
	if release != nil {
		<-release
	}
	return f.resp, f.err
}

type fakeNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (f *fakeNotifier) Success(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.successes = append(f.successes, message)
}

func (f *fakeNotifier) Error(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, message)
}

func TestChatRoundTrip(t *testing.T) {
	api := &fakeChatAPI{resp: &domain.ChatResponse{
		Answer: "See section 4.",
		Sources: domain.SourceList{
			{Filename: "manual.pdf", PDFPath: "docs/manual.pdf"},
		},
	}}
	notifier := &fakeNotifier{}
	c := NewChatController(api, notifier, nil)

	require.NoError(t, c.Send(context.Background(), "What are the maintenance schedules?"))

	messages := c.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, domain.RoleUser, messages[0].Role)
	assert.Equal(t, "What are the maintenance schedules?", messages[0].Text)
	assert.Equal(t, domain.RoleAssistant, messages[1].Role)
	assert.Equal(t, "See section 4.", messages[1].Text)
	require.Len(t, messages[1].Sources, 1)
	assert.True(t, messages[1].Sources[0].Previewable())
	assert.Empty(t, notifier.errors)
	assert.False(t, c.Sending())
}

func TestChatFailureInjectsApology(t *testing.T) {
	api := &fakeChatAPI{err: &backend.APIError{Status: 500, Detail: "index not ready"}}
	notifier := &fakeNotifier{}
	c := NewChatController(api, notifier, nil)

	require.Error(t, c.Send(context.Background(), "anything"))

	messages := c.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, domain.RoleUser, messages[0].Role)
	assert.Equal(t, "anything", messages[0].Text)
	assert.Equal(t, domain.RoleAssistant, messages[1].Role)
	assert.Equal(t, ApologyText, messages[1].Text)
	assert.Empty(t, messages[1].Sources)

	require.Len(t, notifier.errors, 1)
	assert.Equal(t, "Chat error: index not ready", notifier.errors[0])
	assert.False(t, c.Sending())
}

// The log is append-only: every send adds exactly one user and one
// assistant message, successful or not, and earlier entries are untouched.
func TestChatLogIsAppendOnly(t *testing.T) {
	api := &fakeChatAPI{resp: &domain.ChatResponse{Answer: "ok"}}
	notifier := &fakeNotifier{}
	c := NewChatController(api, notifier, nil)

	require.NoError(t, c.Send(context.Background(), "first"))
	firstID := c.Messages()[0].ID

	api.err = &backend.APIError{Status: 503}
	_ = c.Send(context.Background(), "second")

	api.err = nil
	require.NoError(t, c.Send(context.Background(), "third"))

	messages := c.Messages()
	require.Len(t, messages, 6)
	assert.Equal(t, firstID, messages[0].ID)
	assert.Equal(t, "first", messages[0].Text)
	assert.Equal(t, "second", messages[2].Text)
	assert.Equal(t, ApologyText, messages[3].Text)
	assert.Equal(t, "third", messages[4].Text)
}

func TestChatEmptyInputIsNoOp(t *testing.T) {
	api := &fakeChatAPI{resp: &domain.ChatResponse{Answer: "ok"}}
	c := NewChatController(api, &fakeNotifier{}, nil)

	assert.ErrorIs(t, c.Send(context.Background(), ""), domain.ErrEmptyMessage)
	assert.ErrorIs(t, c.Send(context.Background(), "   \t\n"), domain.ErrEmptyMessage)
	assert.Empty(t, c.Messages())
	assert.Empty(t, api.questions)
}

func TestChatSendIsSingleFlight(t *testing.T) {
	api := &fakeChatAPI{
		resp:    &domain.ChatResponse{Answer: "ok"},
		release: make(chan struct{}),
	}
	c := NewChatController(api, &fakeNotifier{}, nil)

	require.True(t, c.Begin("first"))

	done := make(chan error, 1)
	go func() { done <- c.Finish(context.Background()) }()

	// A second send while one is in flight is ignored, not queued.
	assert.False(t, c.Begin("second"))

	close(api.release)
	require.NoError(t, <-done)

	messages := c.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Text)

	// The controller is usable again once the flight lands.
	assert.True(t, c.Begin("third"))
}

func TestChatTrimsInput(t *testing.T) {
	api := &fakeChatAPI{resp: &domain.ChatResponse{Answer: "ok"}}
	c := NewChatController(api, &fakeNotifier{}, nil)

	require.NoError(t, c.Send(context.Background(), "  hello  "))
	assert.Equal(t, "hello", c.Messages()[0].Text)
	assert.Equal(t, []string{"hello"}, api.questions)
}
