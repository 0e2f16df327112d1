package reporters

import (
	"time"

	"github.com/google/uuid"
)

// RunEvent describes one request executed during a playground suite run.
type RunEvent struct {
	RunID      uuid.UUID `json:"run_id"`
	Name       string    `json:"name"`
	Method     string    `json:"method"`
	Endpoint   string    `json:"endpoint"`
	Status     int       `json:"status"`
	ElapsedMs  int64     `json:"elapsed_ms"`
	Error      string    `json:"error,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// NewRunEvent constructs a RunEvent stamped with the current time.
func NewRunEvent(runID uuid.UUID, name, method, endpoint string, status int, elapsed time.Duration, errMsg string) RunEvent {
	return RunEvent{
		RunID:      runID,
		Name:       name,
		Method:     method,
		Endpoint:   endpoint,
		Status:     status,
		ElapsedMs:  elapsed.Milliseconds(),
		Error:      errMsg,
		RecordedAt: time.Now().UTC(),
	}
}

// Failed reports whether the request did not complete with a 2xx status.
func (e RunEvent) Failed() bool {
	return e.Error != "" || e.Status < 200 || e.Status >= 300
}

func (e RunEvent) attributes() map[string]string {
	return map[string]string{
		"run_id":   e.RunID.String(),
		"endpoint": e.Endpoint,
	}
}
