package playground

import (
	"context"

	"github.com/samvad-hq/sphere-client/internal/store"
	"github.com/samvad-hq/sphere-client/pkg/reporters"
)

// HistoryRecorder stores executed requests.
type HistoryRecorder interface {
	AppendHistory(ctx context.Context, e store.Entry) (store.Entry, error)
}

// EventReporter publishes suite results downstream. It returns how many sinks
// accepted the event.
type EventReporter interface {
	Report(ctx context.Context, evt reporters.RunEvent) (int, error)
}
