package httpapi

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// loginThrottle counts login attempts per client address in fixed windows.
// A successful login clears the address.
type loginThrottle struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	now      func() time.Time
	counters map[string]*attemptWindow
}

type attemptWindow struct {
	startedAt time.Time
	count     int
}

func newLoginThrottle(limit int, window time.Duration) *loginThrottle {
	if limit < 1 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &loginThrottle{
		limit:    limit,
		window:   window,
		now:      time.Now,
		counters: make(map[string]*attemptWindow),
	}
}

// Allow records an attempt for key and reports whether it is within the limit.
func (t *loginThrottle) Allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.sweepLocked(now)

	w, ok := t.counters[key]
	if !ok {
		t.counters[key] = &attemptWindow{startedAt: now, count: 1}
		return true
	}
	if w.count >= t.limit {
		return false
	}
	w.count++
	return true
}

func (t *loginThrottle) Reset(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.counters, key)
}

func (t *loginThrottle) sweepLocked(now time.Time) {
	for key, w := range t.counters {
		if now.Sub(w.startedAt) >= t.window {
			delete(t.counters, key)
		}
	}
}

// clientKey is the socket peer address. Forwarded headers are not trusted:
// the API listens on the terminal itself.
func clientKey(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if addr == "" {
		return "unknown"
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
