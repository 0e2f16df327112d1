package reporters

import (
	"context"
	"errors"
	"testing"

	"github.com/samvad-hq/sphere-client/internal/logger"
)

type stubReporter struct {
	id     string
	typ    string
	err    error
	calls  int
	closed bool
}

func (s *stubReporter) ID() string   { return s.id }
func (s *stubReporter) Type() string { return s.typ }
func (s *stubReporter) Report(context.Context, RunEvent) error {
	s.calls++
	return s.err
}
func (s *stubReporter) Close() error {
	s.closed = true
	return nil
}

func TestFanoutReportAggregatesErrors(t *testing.T) {
	ok := &stubReporter{id: "ok", typ: "http"}
	bad := &stubReporter{id: "bad", typ: "http", err: errors.New("failed")}
	fanout := NewFanout([]Reporter{ok, nil, bad})

	if fanout.Size() != 2 {
		t.Fatalf("expected nil reporters to be dropped, size %d", fanout.Size())
	}
	count, err := fanout.Report(context.Background(), RunEvent{})
	if count != 1 {
		t.Fatalf("expected 1 success, got %d", count)
	}
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
	if ok.calls != 1 || bad.calls != 1 {
		t.Fatalf("expected every reporter called once, got %d and %d", ok.calls, bad.calls)
	}

	if err := fanout.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !ok.closed || !bad.closed {
		t.Fatalf("expected reporters closed")
	}
}

func TestNilFanoutIsInert(t *testing.T) {
	var fanout *Fanout
	if n, err := fanout.Report(context.Background(), RunEvent{}); n != 0 || err != nil {
		t.Fatalf("expected no-op, got %d %v", n, err)
	}
	if fanout.Size() != 0 || fanout.Close() != nil {
		t.Fatalf("expected inert nil fanout")
	}
}

func TestBuildAllWithDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	reps, err := BuildAll(context.Background(), reg, []ReporterConfig{
		{ID: "http", Type: TypeHTTP, HTTP: &HTTPConfig{URL: "https://example.com"}},
	}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(reps) != 1 || reps[0].Type() != TypeHTTP {
		t.Fatalf("expected 1 http reporter, got %#v", reps)
	}
}

func TestBuildAllClosesBuiltReportersOnFailure(t *testing.T) {
	first := &stubReporter{id: "first", typ: "stub"}
	reg := NewRegistry(map[string]Builder{
		"stub": func(context.Context, ReporterConfig, logger.Logger) (Reporter, error) { return first, nil },
	})

	_, err := BuildAll(context.Background(), reg, []ReporterConfig{
		{ID: "first", Type: "stub"},
		{ID: "second", Type: "unknown"},
	}, nil)
	if err == nil {
		t.Fatalf("expected unknown type error")
	}
	if !first.closed {
		t.Fatalf("expected previously built reporter to be closed")
	}
}
