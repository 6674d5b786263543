package users

import (
	"sync"

	"useradmin/pkg/metrics"
)

// Loading is the loading indicator shared by every API call. It stays on
// while at least one call holds it.
type Loading struct {
	mu       sync.Mutex
	holders  int
	onChange func(active bool)
}

func NewLoading(onChange func(active bool)) *Loading {
	if onChange == nil {
		onChange = func(bool) {}
	}
	return &Loading{onChange: onChange}
}

// Acquire shows the indicator and returns its release. Release is
// idempotent and must be deferred by the caller.
func (l *Loading) Acquire() (release func()) {
	l.mu.Lock()
	l.holders++
	first := l.holders == 1
	l.mu.Unlock()

	metrics.APIRequestsInFlight.Inc()
	if first {
		l.onChange(true)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			l.holders--
			last := l.holders == 0
			l.mu.Unlock()

			metrics.APIRequestsInFlight.Dec()
			if last {
				l.onChange(false)
			}
		})
	}
}

func (l *Loading) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.holders > 0
}
