package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vujjini/bm-assist/internal/domain"
)

// DefaultTTL is how long a toast stays up without manual dismissal.
const DefaultTTL = 5 * time.Second

// Center owns the process-wide toast stack. Toasts stack in arrival order
// and each carries its own expiry timer; dismissing one does not affect
// the others.
type Center struct {
	mu       sync.Mutex
	ttl      time.Duration
	items    []domain.Notification
	timers   map[string]*time.Timer
	onChange func()
}

// NewCenter creates a notification center. A non-positive ttl falls back
// to DefaultTTL.
func NewCenter(ttl time.Duration) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Center{
		ttl:    ttl,
		timers: make(map[string]*time.Timer),
	}
}

// SetOnChange registers a callback fired after every mutation of the
// stack. The callback runs outside the center's lock.
func (c *Center) SetOnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Success pushes an auto-dismissing success toast.
func (c *Center) Success(message string) {
	c.Push(domain.NotifySuccess, message, false)
}

// Error pushes an auto-dismissing error toast.
func (c *Center) Error(message string) {
	c.Push(domain.NotifyError, message, false)
}

// Push adds a toast and returns its id. Sticky toasts never expire on
// their own.
func (c *Center) Push(kind domain.NotificationKind, message string, sticky bool) string {
	n := domain.Notification{
		ID:        uuid.New().String(),
		Kind:      kind,
		Message:   message,
		Sticky:    sticky,
		CreatedAt: time.Now(),
	}

	c.mu.Lock()
	c.items = append(c.items, n)
	if !sticky {
		id := n.ID
		c.timers[id] = time.AfterFunc(c.ttl, func() {
			c.Dismiss(id)
		})
	}
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn()
	}
	return n.ID
}

// Dismiss removes a toast and cancels its expiry timer. Dismissing an id
// that is already gone is a no-op, so a late timer firing after a manual
// dismissal is harmless.
func (c *Center) Dismiss(id string) {
	c.mu.Lock()
	idx := -1
	for i, n := range c.items {
		if n.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return
	}
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	if t, ok := c.timers[id]; ok {
		t.Stop()
		delete(c.timers, id)
	}
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Active returns the visible toasts in arrival order.
func (c *Center) Active() []domain.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Notification, len(c.items))
	copy(out, c.items)
	return out
}

// Close stops all pending expiry timers.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
}
