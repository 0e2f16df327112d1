package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samvad-hq/sphere-client/internal/app"
	"github.com/samvad-hq/sphere-client/internal/config"
	"github.com/samvad-hq/sphere-client/internal/logger"
	"github.com/spf13/cobra"
)

const (
	outputPretty = "pretty"
	outputJSON   = "json"
)

// Options wires the CLI to its environment.
type Options struct {
	LoadConfig func() (*config.Config, error)
	Log        logger.Logger
	Stdout     io.Writer
	Stderr     io.Writer
}

type state struct {
	opts    Options
	baseURL string
	token   string
	output  string
	rt      *app.Runtime
}

// Run executes the sphere command line with args.
func Run(ctx context.Context, args []string, opts Options) error {
	if opts.LoadConfig == nil {
		opts.LoadConfig = config.Load
	}
	if opts.Log == nil {
		opts.Log = &logger.NopLogger{}
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	s := &state{opts: opts}
	root := s.rootCommand()
	root.SetArgs(args)
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)

	err := root.ExecuteContext(ctx)
	if s.rt != nil {
		if cerr := s.rt.Close(); cerr != nil {
			opts.Log.WarnObj("runtime close failed", "error", cerr.Error())
		}
	}
	return err
}

func (s *state) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "sphere",
		Short: "Exercise the SocialSphere API from the terminal",
		Long: `sphere sends requests to a SocialSphere backend through the same envelope
contract the web client uses. The session token is kept in the local store
after 'sphere login' and attached to every request.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.init(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&s.baseURL, "base-url", "", "Override the backend base URL")
	root.PersistentFlags().StringVar(&s.token, "token", "", "Send this bearer token instead of the stored session")
	root.PersistentFlags().StringVarP(&s.output, "output", "o", outputPretty, "Output format: pretty|json")

	root.AddCommand(
		s.helloCommand(),
		s.requestCommand(),
		s.loginCommand(),
		s.registerCommand(),
		s.logoutCommand(),
		s.whoamiCommand(),
		s.uploadCommand(),
		s.endpointsCommand(),
		s.suiteCommand(),
		s.historyCommand(),
	)
	return root
}

func (s *state) init(ctx context.Context) error {
	s.output = strings.ToLower(strings.TrimSpace(s.output))
	if s.output != outputPretty && s.output != outputJSON {
		return fmt.Errorf("unsupported output format %q", s.output)
	}

	cfg, err := s.opts.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	rt, err := app.NewRuntime(ctx, cfg, s.opts.Log, app.Overrides{BaseURL: s.baseURL, Token: s.token})
	if err != nil {
		return err
	}
	s.rt = rt
	return nil
}
