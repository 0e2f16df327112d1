package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samvad-hq/sphere-client/internal/config"
	"github.com/samvad-hq/sphere-client/internal/domain"
	"github.com/samvad-hq/sphere-client/internal/logger"
	"github.com/samvad-hq/sphere-client/internal/playground"
	"github.com/samvad-hq/sphere-client/internal/store"
	"github.com/samvad-hq/sphere-client/pkg/api"
	"github.com/samvad-hq/sphere-client/pkg/catalog"
	"github.com/samvad-hq/sphere-client/pkg/httpclient"
	"github.com/samvad-hq/sphere-client/pkg/reporters"
)

// Overrides are per-invocation settings that win over config.
type Overrides struct {
	BaseURL string
	// Token bypasses the session store for outgoing requests.
	Token string
}

// Runtime wires config, session store, API client, catalog and playground
// for one CLI invocation.
type Runtime struct {
	cfg     *config.Config
	log     logger.Logger
	baseURL string
	store   store.Store
	tokens  api.TokenSource
	client  httpclient.Client
	api     *api.Client
	catalog *catalog.Catalog
	play    *playground.Service
	fanout  *reporters.Fanout
}

// NewRuntime builds a runtime from config.
func NewRuntime(ctx context.Context, cfg *config.Config, log logger.Logger, ov Overrides) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	baseURL := strings.TrimSpace(ov.BaseURL)
	if baseURL == "" {
		baseURL = cfg.BaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	st, err := store.NewStore(cfg.StoreType, cfg.BBoltPath, store.Options{
		HistoryTTL:      cfg.HistoryTTL,
		CleanupInterval: cfg.HistoryCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init session store: %w", err)
	}
	log.DebugObj("session store initialized", "store_config", map[string]any{
		"type":                     cfg.StoreType,
		"path":                     cfg.BBoltPath,
		"history_ttl_seconds":      int(cfg.HistoryTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.HistoryCleanupInterval.Seconds()),
	})

	var tokens api.TokenSource = st
	if ov.Token != "" {
		tokens = api.StaticToken(ov.Token)
	}

	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		err = fmt.Errorf("load catalog: %w", err)
		if cerr := st.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close session store: %w", cerr))
		}
		return nil, err
	}

	client := httpclient.NewRestyClient(cfg.RequestTimeout)
	dispatcher := api.NewDispatcher(baseURL,
		api.WithClient(client),
		api.WithTokenSource(tokens),
		api.WithLogger(log),
	)

	r := &Runtime{
		cfg:     cfg,
		log:     log,
		baseURL: baseURL,
		store:   st,
		tokens:  tokens,
		client:  client,
		api:     api.New(dispatcher),
		catalog: cat,
	}
	r.play = r.newPlayground(nil)
	return r, nil
}

func (r *Runtime) newPlayground(rep playground.EventReporter) *playground.Service {
	deps := playground.Deps{
		BaseURL: r.baseURL,
		Client:  r.client,
		Tokens:  r.tokens,
		API:     r.api,
		History: r.store,
		Delay:   r.cfg.RequestDelay,
		Log:     r.log,
	}
	if rep != nil {
		deps.Reporter = rep
	}
	return playground.NewService(deps)
}

// API returns the typed service table.
func (r *Runtime) API() *api.Client { return r.api }

// Catalog returns the predefined endpoints.
func (r *Runtime) Catalog() *catalog.Catalog { return r.catalog }

// Playground returns the raw request service.
func (r *Runtime) Playground() *playground.Service { return r.play }

// Store returns the session store.
func (r *Runtime) Store() store.Store { return r.store }

// BaseURL returns the resolved backend address.
func (r *Runtime) BaseURL() string { return r.baseURL }

// Notifier returns the notifier fetch calls report through: the runtime logger.
func (r *Runtime) Notifier() api.Notifier { return api.LogNotifier{Log: r.log} }

// EnableReporting loads the configured reporter sinks and attaches them to the
// playground. Without a reporters file it is a no-op.
func (r *Runtime) EnableReporting(ctx context.Context) error {
	if strings.TrimSpace(r.cfg.ReportersFile) == "" || r.fanout != nil {
		return nil
	}
	reg, err := reporters.LoadRegistry(r.cfg.ReportersFile)
	if err != nil {
		return fmt.Errorf("load reporters registry: %w", err)
	}
	enabled := reg.Enabled()
	if len(enabled) == 0 {
		r.log.WarnObj("no reporters enabled", "reporters_file", r.cfg.ReportersFile)
		return nil
	}
	reps, err := reporters.BuildAll(ctx, reporters.DefaultRegistry(), enabled, r.log)
	if err != nil {
		return fmt.Errorf("build reporters: %w", err)
	}
	r.fanout = reporters.NewFanout(reps)

	summaries := make([]map[string]string, 0, len(enabled))
	for _, c := range enabled {
		summaries = append(summaries, map[string]string{"id": c.ID, "type": c.Type})
	}
	r.log.InfoObj("reporters loaded", "reporters_meta", map[string]any{
		"count":     r.fanout.Size(),
		"reporters": summaries,
	})

	r.play = r.newPlayground(r.fanout)
	return nil
}

// Login authenticates and stores the returned token in the session slot.
// The error covers only the store write; API failures live in the envelope.
func (r *Runtime) Login(ctx context.Context, creds domain.Credentials) (api.Envelope[domain.AuthResult], error) {
	env := api.Fetch(ctx, func(ctx context.Context) api.Envelope[domain.AuthResult] {
		return r.api.Auth.Login(ctx, creds)
	}, api.FetchOptions[domain.AuthResult]{SuccessMessage: "Logged in", Notifier: r.Notifier()})
	return env, r.keepToken(ctx, env)
}

// Register creates an account and, when the backend returns a token, stores it.
func (r *Runtime) Register(ctx context.Context, reg domain.Registration) (api.Envelope[domain.AuthResult], error) {
	env := api.Fetch(ctx, func(ctx context.Context) api.Envelope[domain.AuthResult] {
		return r.api.Auth.Register(ctx, reg)
	}, api.FetchOptions[domain.AuthResult]{SuccessMessage: "Account created", Notifier: r.Notifier()})
	return env, r.keepToken(ctx, env)
}

func (r *Runtime) keepToken(ctx context.Context, env api.Envelope[domain.AuthResult]) error {
	res, ok := env.Value()
	if !ok || res.Token == "" {
		return nil
	}
	if err := r.store.SetToken(ctx, res.Token); err != nil {
		return fmt.Errorf("store session token: %w", err)
	}
	return nil
}

// Logout notifies the backend and clears the session slot even when the
// backend call fails.
func (r *Runtime) Logout(ctx context.Context) (api.Envelope[any], error) {
	env := api.Fetch(ctx, r.api.Auth.Logout,
		api.FetchOptions[any]{SuccessMessage: "Logged out", Notifier: r.Notifier()})
	if err := r.store.ClearToken(ctx); err != nil {
		return env, fmt.Errorf("clear session token: %w", err)
	}
	return env, nil
}

// Close releases reporters and the session store.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if err := r.fanout.Close(); err != nil {
		errs = append(errs, err)
	}
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close session store: %w", err))
		}
	}
	return errors.Join(errs...)
}
