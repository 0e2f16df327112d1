package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samvad-hq/sphere-client/internal/playground"
	"github.com/samvad-hq/sphere-client/pkg/catalog"
	"github.com/spf13/cobra"
)

func (s *state) helloCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hello",
		Short: "Check the connection to the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res := s.rt.Playground().Hello(cmd.Context())
			if err := s.printResult(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if res.Error != "" {
				return fmt.Errorf("failed to connect to backend: %s", res.Error)
			}
			return nil
		},
	}
}

func (s *state) requestCommand() *cobra.Command {
	var (
		data     string
		headers  []string
		envelope bool
	)
	cmd := &cobra.Command{
		Use:   "request METHOD ENDPOINT",
		Short: "Send a raw request and show the rendered response",
		Example: `  sphere request GET /posts?page=0&size=5
  sphere request POST /posts -d '{"content":"hi","visibility":"PUBLIC"}'
  sphere request GET /auth/me --envelope`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			method := strings.ToUpper(args[0])
			endpoint := args[1]
			hdrs, err := parseHeaders(headers)
			if err != nil {
				return err
			}

			if envelope {
				var body any
				if strings.TrimSpace(data) != "" {
					if !playground.AcceptsBody(method) {
						return fmt.Errorf("%w: got %s", playground.ErrBodyNotAllowed, method)
					}
					if !json.Valid([]byte(data)) {
						return playground.ErrInvalidJSON
					}
					body = json.RawMessage(data)
				}
				env := s.rt.API().Dispatcher().Raw(cmd.Context(), endpoint, method, body, hdrs)
				return printEnvelope(s, cmd.OutOrStdout(), env)
			}

			res, err := s.rt.Playground().Run(cmd.Context(), playground.Request{
				Method:   method,
				Endpoint: endpoint,
				Body:     data,
				Headers:  hdrs,
			})
			if err != nil {
				return err
			}
			if err := s.printResult(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if !res.OK() {
				return fmt.Errorf("request failed: %s", failureText(res))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "Extra header as 'Name: value' (repeatable)")
	cmd.Flags().BoolVar(&envelope, "envelope", false, "Print the normalized {data, error, status} envelope")
	return cmd
}

func (s *state) endpointsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "endpoints",
		Short: "List predefined endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries := s.rt.Catalog().All()
			if s.output == outputJSON {
				return s.printValue(cmd.OutOrStdout(), entries)
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintf(tw, "NAME\tMETHOD\tENDPOINT\tBODY\n")
			for _, e := range entries {
				body := "-"
				if e.Body != "" {
					body = "json"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Name, e.Method, e.Endpoint, body)
			}
			return tw.Flush()
		},
	}
}

func (s *state) suiteCommand() *cobra.Command {
	var only []string
	cmd := &cobra.Command{
		Use:   "suite",
		Short: "Run every predefined endpoint in order and report the results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := selectEntries(s.rt.Catalog(), only)
			if err != nil {
				return err
			}
			if err := s.rt.EnableReporting(cmd.Context()); err != nil {
				return err
			}

			report, runErr := s.rt.Playground().Suite(cmd.Context(), entries)
			if s.output == outputJSON {
				if err := s.printValue(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else {
				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintf(tw, "NAME\tMETHOD\tENDPOINT\tSTATUS\tELAPSED\n")
				for _, res := range report.Results {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d %s\t%dms\n", res.Name, res.Method, res.Endpoint, res.Status, res.StatusClass, res.ElapsedMs)
				}
				tw.Flush()
				fmt.Fprintf(cmd.OutOrStdout(), "\nrun %s: %d passed, %d failed\n", report.RunID, report.Passed, report.Failed)
			}
			return runErr
		},
	}
	cmd.Flags().StringSliceVar(&only, "only", nil, "Run only the named endpoints")
	return cmd
}

func (s *state) historyCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently sent requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := s.rt.Store().History(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			if s.output == outputJSON {
				return s.printValue(cmd.OutOrStdout(), entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No requests recorded yet.")
				return nil
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintf(tw, "TIME\tMETHOD\tENDPOINT\tSTATUS\tELAPSED\n")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%dms\n", formatTimestamp(e.RecordedAt), e.Method, e.Endpoint, e.Status, e.ElapsedMs)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries to show (0 for all)")
	return cmd
}

func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q (expected 'Name: value')", h)
		}
		out[name] = strings.TrimSpace(value)
	}
	return out, nil
}

func selectEntries(cat *catalog.Catalog, only []string) ([]catalog.Entry, error) {
	if len(only) == 0 {
		return cat.All(), nil
	}
	out := make([]catalog.Entry, 0, len(only))
	for _, name := range only {
		e, ok := cat.ByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown endpoint %q", name)
		}
		out = append(out, e)
	}
	return out, nil
}

func failureText(res playground.Result) string {
	if res.Error != "" {
		return res.Error
	}
	return fmt.Sprintf("status %d", res.Status)
}
