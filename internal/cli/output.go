package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/samvad-hq/sphere-client/internal/playground"
	"github.com/samvad-hq/sphere-client/pkg/api"
)

func (s *state) printValue(w io.Writer, v any) error {
	var (
		raw []byte
		err error
	)
	if s.output == outputJSON {
		raw, err = json.Marshal(v)
	} else {
		raw, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(raw))
	return err
}

// printEnvelope writes env and turns an error envelope into a command error.
func printEnvelope[T any](s *state, w io.Writer, env api.Envelope[T]) error {
	if err := s.printValue(w, env); err != nil {
		return err
	}
	if env.Error != nil {
		return fmt.Errorf("%s (status %d)", *env.Error, env.Status)
	}
	return nil
}

func (s *state) printResult(w io.Writer, res playground.Result) error {
	if s.output == outputJSON {
		return s.printValue(w, res)
	}
	fmt.Fprintf(w, "%s %s -> %d %s (%dms)\n", res.Method, res.Endpoint, res.Status, res.StatusClass, res.ElapsedMs)
	if res.Body != "" {
		fmt.Fprintf(w, "\n%s\n", res.Body)
	}
	return nil
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
