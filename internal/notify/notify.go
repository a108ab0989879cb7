// Package notify collects one-way shopper notifications per session until
// the client drains them.
package notify

import (
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"fluxo-storefront/internal/domain"
)

// Sink accepts notifications for a session.
type Sink interface {
	Notify(sessionID, title, message string, severity domain.Severity) domain.Notification
}

const (
	DefaultLimit = 20
	DefaultTTL   = 10 * time.Minute
)

// Inbox is an in-memory Sink. Each session keeps at most limit pending
// notifications (oldest dropped first). Entries older than ttl are dropped on
// drain, and sessions whose newest entry is older than ttl are evicted by a
// sweep that runs on Notify at most once per ttl.
type Inbox struct {
	mu        sync.Mutex
	counter   int
	pending   map[string][]domain.Notification
	limit     int
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
	logger    *log.Logger
}

func NewInbox(limit int, ttl time.Duration, logger *log.Logger) *Inbox {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Inbox{
		pending: make(map[string][]domain.Notification),
		limit:   limit,
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
	}
}

// Notify records a notification and returns it with its id. Ids are
// "toast-N" with N increasing across all sessions of this inbox.
func (b *Inbox) Notify(sessionID, title, message string, severity domain.Severity) domain.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sweepLocked()
	b.counter++
	n := domain.Notification{
		ID:        fmt.Sprintf("toast-%d", b.counter),
		Title:     title,
		Message:   message,
		Severity:  severity,
		CreatedAt: b.now().UTC(),
	}
	queue := append(b.pending[sessionID], n)
	if len(queue) > b.limit {
		queue = queue[len(queue)-b.limit:]
	}
	b.pending[sessionID] = queue
	b.logger.Printf("notify: session=%s id=%s severity=%s title=%q", sessionID, n.ID, severity, title)
	return n
}

// sweepLocked evicts sessions that only hold expired entries. Callers hold b.mu.
func (b *Inbox) sweepLocked() {
	if b.ttl <= 0 {
		return
	}
	now := b.now()
	if now.Sub(b.lastSweep) < b.ttl {
		return
	}
	b.lastSweep = now
	cutoff := now.Add(-b.ttl)
	evicted := 0
	for sessionID, queue := range b.pending {
		if len(queue) == 0 || queue[len(queue)-1].CreatedAt.Before(cutoff) {
			delete(b.pending, sessionID)
			evicted++
		}
	}
	if evicted > 0 {
		b.logger.Printf("notify: evicted %d idle sessions", evicted)
	}
}

// Drain returns and forgets the pending notifications of a session, oldest first.
func (b *Inbox) Drain(sessionID string) []domain.Notification {
	b.mu.Lock()
	queue := b.pending[sessionID]
	delete(b.pending, sessionID)
	b.mu.Unlock()

	out := make([]domain.Notification, 0, len(queue))
	cutoff := b.now().Add(-b.ttl)
	for _, n := range queue {
		if b.ttl > 0 && n.CreatedAt.Before(cutoff) {
			continue
		}
		out = append(out, n)
	}
	return out
}
