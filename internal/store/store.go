package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Package store keeps the local session: the bearer token slot and a
// bounded-lifetime history of playground requests.

// TokenKey names the slot the bearer token lives in.
const TokenKey = "authToken"

// Entry is one recorded playground request.
type Entry struct {
	ID         string    `json:"id"`
	Name       string    `json:"name,omitempty"`
	Method     string    `json:"method"`
	Endpoint   string    `json:"endpoint"`
	Status     int       `json:"status"`
	ElapsedMs  int64     `json:"elapsedMs"`
	Error      string    `json:"error,omitempty"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Store holds session state. Token satisfies api.TokenSource.
type Store interface {
	Close() error
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
	AppendHistory(ctx context.Context, e Entry) (Entry, error)
	// History returns unexpired entries, newest first. limit <= 0 means all.
	History(ctx context.Context, limit int) ([]Entry, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	HistoryTTL      time.Duration
	CleanupInterval time.Duration
}

const (
	defaultHistoryTTL      = 7 * 24 * time.Hour
	defaultCleanupInterval = time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "memory", "none", "disabled":
		return newMemoryStore(opts), nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.HistoryTTL <= 0 {
		opts.HistoryTTL = defaultHistoryTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}
