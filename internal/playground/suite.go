package playground

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/samvad-hq/sphere-client/internal/store"
	"github.com/samvad-hq/sphere-client/pkg/catalog"
	"github.com/samvad-hq/sphere-client/pkg/reporters"
)

// SuiteReport summarizes a suite run.
type SuiteReport struct {
	RunID   uuid.UUID `json:"runId"`
	Results []Result  `json:"results"`
	Passed  int       `json:"passed"`
	Failed  int       `json:"failed"`
}

// Suite sends every entry in order, paced by the configured delay. Each result
// is recorded in history and reported downstream. Non-2xx results and sink
// failures are joined into the returned error. A cancelled context stops the
// run early and is not an error.
func (s *Service) Suite(ctx context.Context, entries []catalog.Entry) (SuiteReport, error) {
	report := SuiteReport{RunID: uuid.New()}
	if len(entries) == 0 {
		return report, fmt.Errorf("no endpoints to run")
	}

	var errs []error
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				if ctx.Err() != nil {
					break
				}
				errs = append(errs, fmt.Errorf("pace %s: %w", entry.Name, err))
				continue
			}
		}

		res, err := s.Send(ctx, FromEntry(entry))
		if err != nil {
			res = s.fail(res, err)
		}
		if res.Status == 0 && ctx.Err() != nil {
			break
		}

		report.Results = append(report.Results, res)
		if res.OK() {
			report.Passed++
		} else {
			report.Failed++
			errs = append(errs, fmt.Errorf("%s %s %s: %s", entry.Name, res.Method, res.Endpoint, failureReason(res)))
		}

		if err := s.record(ctx, report.RunID, res); err != nil {
			errs = append(errs, err)
		}
	}

	s.log.InfoObj("playground suite completed", "playground_suite", map[string]any{
		"run_id": report.RunID.String(),
		"passed": report.Passed,
		"failed": report.Failed,
	})
	return report, errors.Join(errs...)
}

func (s *Service) record(ctx context.Context, runID uuid.UUID, res Result) error {
	var errs []error
	if s.history != nil {
		if _, err := s.history.AppendHistory(ctx, historyEntry(res)); err != nil {
			errs = append(errs, fmt.Errorf("record history for %s: %w", res.Name, err))
		}
	}
	if s.reporter != nil {
		evt := reporters.NewRunEvent(runID, res.Name, res.Method, res.Endpoint, res.Status, res.Elapsed, res.Error)
		if _, err := s.reporter.Report(ctx, evt); err != nil {
			errs = append(errs, fmt.Errorf("report %s: %w", res.Name, err))
		}
	}
	return errors.Join(errs...)
}

func historyEntry(res Result) store.Entry {
	return store.Entry{
		Name:      res.Name,
		Method:    res.Method,
		Endpoint:  res.Endpoint,
		Status:    res.Status,
		ElapsedMs: res.ElapsedMs,
		Error:     res.Error,
	}
}

func failureReason(res Result) string {
	if res.Error != "" {
		return res.Error
	}
	return fmt.Sprintf("status %d", res.Status)
}
