package attendance

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultNotificationLifetime is how long a notice stays before leaving.
	DefaultNotificationLifetime = 5 * time.Second
	// DefaultNotificationExit is the exit animation delay before removal.
	DefaultNotificationExit = 300 * time.Millisecond
)

// Severity classifies a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Notification is an ephemeral user-visible message.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
	Leaving   bool      `json:"leaving"`
}

// NotificationEventType names a lifecycle step.
type NotificationEventType string

const (
	NotificationShown   NotificationEventType = "shown"
	NotificationLeaving NotificationEventType = "leaving"
	NotificationRemoved NotificationEventType = "removed"
)

// NotificationEvent is published to subscribers on every lifecycle step.
type NotificationEvent struct {
	Type         NotificationEventType `json:"type"`
	Notification Notification          `json:"notification"`
}

// NotifierOption customizes a Notifier.
type NotifierOption func(*Notifier)

// WithNotificationTiming overrides the lifetime and exit delay.
func WithNotificationTiming(lifetime, exit time.Duration) NotifierOption {
	return func(n *Notifier) {
		n.lifetime = lifetime
		n.exit = exit
	}
}

// WithNotificationClock overrides the timestamp source.
func WithNotificationClock(now func() time.Time) NotifierOption {
	return func(n *Notifier) {
		if now != nil {
			n.now = now
		}
	}
}

// Notifier stacks notifications and expires each one independently.
// There is no dedup and no upper bound.
type Notifier struct {
	mu       sync.Mutex
	lifetime time.Duration
	exit     time.Duration
	now      func() time.Time
	items    []Notification
	timers   map[string]*time.Timer
	subs     map[int]chan NotificationEvent
	next     int
	closed   bool
}

// NewNotifier builds a notifier with the default 5s lifetime.
func NewNotifier(opts ...NotifierOption) *Notifier {
	n := &Notifier{
		lifetime: DefaultNotificationLifetime,
		exit:     DefaultNotificationExit,
		now:      time.Now,
		timers:   make(map[string]*time.Timer),
		subs:     make(map[int]chan NotificationEvent),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Notify shows a notice and schedules its removal.
func (n *Notifier) Notify(title, message string, severity Severity) Notification {
	note := Notification{
		ID:        uuid.NewString(),
		Title:     title,
		Message:   message,
		Severity:  severity,
		CreatedAt: n.now(),
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return note
	}
	n.items = append(n.items, note)
	n.timers[note.ID] = time.AfterFunc(n.lifetime, func() { n.beginExit(note.ID) })
	n.publish(NotificationEvent{Type: NotificationShown, Notification: note})
	return note
}

// Active returns the notifications currently on screen, oldest first.
func (n *Notifier) Active() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, len(n.items))
	copy(out, n.items)
	return out
}

// Subscribe returns a channel of notification events and a cancel func. After
// Close the channel comes back already closed.
func (n *Notifier) Subscribe() (<-chan NotificationEvent, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		ch := make(chan NotificationEvent)
		close(ch)
		return ch, func() {}
	}
	id := n.next
	n.next++
	ch := make(chan NotificationEvent, 16)
	n.subs[id] = ch
	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if sub, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Close stops pending timers and subscriber channels.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	for id, timer := range n.timers {
		timer.Stop()
		delete(n.timers, id)
	}
	for id, sub := range n.subs {
		delete(n.subs, id)
		close(sub)
	}
}

func (n *Notifier) beginExit(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	idx := n.indexOf(id)
	if idx < 0 || n.closed {
		return
	}
	n.items[idx].Leaving = true
	n.publish(NotificationEvent{Type: NotificationLeaving, Notification: n.items[idx]})
	n.timers[id] = time.AfterFunc(n.exit, func() { n.remove(id) })
}

func (n *Notifier) remove(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.timers, id)
	idx := n.indexOf(id)
	if idx < 0 {
		return
	}
	note := n.items[idx]
	n.items = append(n.items[:idx], n.items[idx+1:]...)
	n.publish(NotificationEvent{Type: NotificationRemoved, Notification: note})
}

func (n *Notifier) indexOf(id string) int {
	for i, item := range n.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// publish must be called with n.mu held. Slow subscribers drop events.
func (n *Notifier) publish(event NotificationEvent) {
	for _, ch := range n.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
