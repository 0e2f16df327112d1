package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryStore keeps the session for the lifetime of the process.
type memoryStore struct {
	mu      sync.Mutex
	token   string
	entries []memoryEntry
	ttl     time.Duration
}

type memoryEntry struct {
	entry  Entry
	expiry time.Time
}

func newMemoryStore(opts Options) *memoryStore {
	return &memoryStore{ttl: opts.HistoryTTL}
}

func (m *memoryStore) Close() error { return nil }

func (m *memoryStore) Token(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memoryStore) SetToken(_ context.Context, token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *memoryStore) ClearToken(ctx context.Context) error {
	return m.SetToken(ctx, "")
}

func (m *memoryStore) AppendHistory(_ context.Context, e Entry) (Entry, error) {
	e = stamp(e, time.Now())

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, memoryEntry{entry: e, expiry: e.RecordedAt.Add(m.ttl)})
	return e, nil
}

func (m *memoryStore) History(_ context.Context, limit int) ([]Entry, error) {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.entries[:0]
	for _, item := range m.entries {
		if item.expiry.After(now) {
			kept = append(kept, item)
		}
	}
	m.entries = kept

	out := make([]Entry, 0, len(kept))
	for i := len(kept) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, kept[i].entry)
	}
	return out, nil
}

// stamp fills the id and timestamp of a new entry.
func stamp(e Entry, now time.Time) Entry {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = now.UTC()
	}
	return e
}
