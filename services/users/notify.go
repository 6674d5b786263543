package users

import (
	"sync"
	"time"

	"useradmin/pkg/metrics"

	"github.com/google/uuid"
)

type NotificationKind string

const (
	KindSuccess NotificationKind = "success"
	KindError   NotificationKind = "error"
	KindInfo    NotificationKind = "info"
)

// DefaultNotificationTimeout is how long a notification stays up unless dismissed
const DefaultNotificationTimeout = 5 * time.Second

type Notification struct {
	ID        string
	Kind      NotificationKind
	Message   string
	CreatedAt time.Time
}

// Notifier keeps at most one notification active. Showing a new one evicts
// the previous one; each auto-dismisses after the timeout unless the user
// dismisses it first.
type Notifier struct {
	mu      sync.Mutex
	emitMu  sync.Mutex // orders onChange calls
	timeout time.Duration
	current *Notification
	timer   *time.Timer

	// onChange receives the new active notification, or nil once cleared
	onChange func(*Notification)
}

func NewNotifier(timeout time.Duration, onChange func(*Notification)) *Notifier {
	if timeout <= 0 {
		timeout = DefaultNotificationTimeout
	}
	if onChange == nil {
		onChange = func(*Notification) {}
	}
	return &Notifier{timeout: timeout, onChange: onChange}
}

func (n *Notifier) Success(msg string) Notification { return n.Notify(KindSuccess, msg) }
func (n *Notifier) Error(msg string) Notification   { return n.Notify(KindError, msg) }
func (n *Notifier) Info(msg string) Notification    { return n.Notify(KindInfo, msg) }

// Notify shows msg, replacing whatever notification was active
func (n *Notifier) Notify(kind NotificationKind, msg string) Notification {
	note := Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   msg,
		CreatedAt: time.Now(),
	}

	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
	}
	n.current = &note
	id := note.ID
	n.timer = time.AfterFunc(n.timeout, func() { n.Dismiss(id) })
	n.mu.Unlock()

	metrics.RecordNotification(string(kind))
	shown := note
	n.publish(&shown)
	return note
}

// Dismiss clears the notification with the given id. A stale id (an
// already evicted notification) is ignored.
func (n *Notifier) Dismiss(id string) bool {
	n.mu.Lock()
	if n.current == nil || n.current.ID != id {
		n.mu.Unlock()
		return false
	}
	n.current = nil
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.mu.Unlock()

	n.publish(nil)
	return true
}

// publish hands note (nil once cleared) to onChange unless the active
// notification has changed since, so the view never ends on a stale one.
func (n *Notifier) publish(note *Notification) {
	n.emitMu.Lock()
	defer n.emitMu.Unlock()

	n.mu.Lock()
	cur := n.current
	n.mu.Unlock()

	if note == nil && cur != nil {
		return
	}
	if note != nil && (cur == nil || cur.ID != note.ID) {
		return
	}
	n.onChange(note)
}

// DismissCurrent clears whatever is showing
func (n *Notifier) DismissCurrent() bool {
	cur, ok := n.Current()
	if !ok {
		return false
	}
	return n.Dismiss(cur.ID)
}

func (n *Notifier) Current() (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Notification{}, false
	}
	return *n.current, true
}
