package playground

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/samvad-hq/sphere-client/internal/logger"
	"github.com/samvad-hq/sphere-client/pkg/api"
	"github.com/samvad-hq/sphere-client/pkg/catalog"
	"github.com/samvad-hq/sphere-client/pkg/httpclient"
	"golang.org/x/time/rate"
)

// ErrInvalidJSON is returned by Send when the request body does not parse.
var ErrInvalidJSON = errors.New("invalid JSON in request body")

// ErrBodyNotAllowed is returned by Send when a body is given for a method
// other than POST, PUT or PATCH.
var ErrBodyNotAllowed = errors.New("request body is only allowed for POST, PUT and PATCH")

// AcceptsBody reports whether method may carry a request body.
func AcceptsBody(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

// Deps wires a Service. Only API is required for Hello; Send and Suite need
// Client and BaseURL.
type Deps struct {
	BaseURL  string
	Client   httpclient.Client
	Tokens   api.TokenSource
	API      *api.Client
	History  HistoryRecorder
	Reporter EventReporter
	// Delay is the minimum spacing between suite requests. Zero disables pacing.
	Delay time.Duration
	Log   logger.Logger
}

// Service sends raw requests against the backend and renders the answers.
type Service struct {
	baseURL  string
	client   httpclient.Client
	tokens   api.TokenSource
	api      *api.Client
	history  HistoryRecorder
	reporter EventReporter
	limiter  *rate.Limiter
	log      logger.Logger
}

// Request is one raw request. Body is JSON text and may be empty.
type Request struct {
	Name     string
	Method   string
	Endpoint string
	Body     string
	Headers  map[string]string
}

// FromEntry converts a catalog entry into a Request.
func FromEntry(e catalog.Entry) Request {
	return Request{Name: e.Name, Method: e.Method, Endpoint: e.Endpoint, Body: string(e.Body)}
}

// Result is the rendered outcome of one request.
type Result struct {
	Name        string        `json:"name,omitempty"`
	Method      string        `json:"method"`
	Endpoint    string        `json:"endpoint"`
	Status      int           `json:"status"`
	StatusClass string        `json:"statusClass"`
	Elapsed     time.Duration `json:"-"`
	ElapsedMs   int64         `json:"elapsedMs"`
	ContentType string        `json:"contentType,omitempty"`
	Body        string        `json:"body"`
	Error       string        `json:"error,omitempty"`
}

// OK reports a 2xx outcome.
func (r Result) OK() bool { return r.Error == "" && r.Status >= 200 && r.Status < 300 }

// NewService builds a playground service.
func NewService(deps Deps) *Service {
	s := &Service{
		baseURL:  strings.TrimSpace(deps.BaseURL),
		client:   deps.Client,
		tokens:   deps.Tokens,
		api:      deps.API,
		history:  deps.History,
		reporter: deps.Reporter,
		log:      deps.Log,
	}
	if s.baseURL == "" {
		s.baseURL = api.DefaultBaseURL
	}
	if s.client == nil {
		s.client = httpclient.NewRestyClient(0)
	}
	if s.log == nil {
		s.log = &logger.NopLogger{}
	}
	if deps.Delay > 0 {
		s.limiter = rate.NewLimiter(rate.Every(deps.Delay), 1)
	}
	return s
}

// Send validates and issues req, measuring the round trip. Only an invalid
// body is returned as an error; transport failures land in Result.Error with
// status 0.
func (s *Service) Send(ctx context.Context, req Request) (Result, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}
	res := Result{Name: req.Name, Method: method, Endpoint: req.Endpoint}

	body := strings.TrimSpace(req.Body)
	if body != "" && !AcceptsBody(method) {
		return res, fmt.Errorf("%w: got %s", ErrBodyNotAllowed, method)
	}
	if body != "" && !json.Valid([]byte(body)) {
		return res, ErrInvalidJSON
	}

	headers := make(http.Header)
	if body != "" {
		headers.Set("Content-Type", "application/json")
	}
	if s.tokens != nil {
		token, err := s.tokens.Token(ctx)
		if err != nil {
			return s.fail(res, fmt.Errorf("read session token: %w", err)), nil
		}
		if token != "" {
			headers.Set("Authorization", "Bearer "+token)
		}
	}
	for k, v := range req.Headers {
		headers.Set(k, v)
	}

	out := httpclient.Request{
		Method:  method,
		URL:     s.baseURL + req.Endpoint,
		Headers: flatten(headers),
	}
	if body != "" {
		out.Body = []byte(body)
	}

	start := time.Now()
	resp, err := s.client.Do(ctx, out)
	res.Elapsed = time.Since(start)
	res.ElapsedMs = res.Elapsed.Milliseconds()
	if err != nil {
		return s.fail(res, err), nil
	}

	res.Status = resp.StatusCode()
	res.StatusClass = StatusClass(res.Status)
	res.ContentType = resp.Header().Get("Content-Type")
	res.Body = Render(res.ContentType, resp.Body())

	s.log.DebugObj("playground request completed", "playground_request", map[string]any{
		"method":     method,
		"endpoint":   req.Endpoint,
		"status":     res.Status,
		"elapsed_ms": res.ElapsedMs,
	})
	return res, nil
}

// Run sends req and records the result in history. History failures are
// logged, not returned.
func (s *Service) Run(ctx context.Context, req Request) (Result, error) {
	res, err := s.Send(ctx, req)
	if err != nil {
		return res, err
	}
	if s.history != nil {
		if _, err := s.history.AppendHistory(ctx, historyEntry(res)); err != nil {
			s.log.WarnObj("playground history write failed", "playground_history", map[string]any{
				"endpoint": res.Endpoint,
				"error":    err.Error(),
			})
		}
	}
	return res, nil
}

// Hello checks the connection through the typed API and renders the
// envelope payload, or {"error": ...} on failure.
func (s *Service) Hello(ctx context.Context) Result {
	res := Result{Name: "Hello Endpoint", Method: http.MethodGet, Endpoint: "/"}
	if s.api == nil {
		return s.fail(res, errors.New("playground has no api client"))
	}

	start := time.Now()
	env := s.api.Test.Hello(ctx)
	res.Elapsed = time.Since(start)
	res.ElapsedMs = res.Elapsed.Milliseconds()
	res.Status = env.Status
	res.StatusClass = StatusClass(env.Status)

	if env.Error != nil {
		res.Error = *env.Error
		res.Body = indentValue(map[string]string{"error": *env.Error})
		s.log.WarnObj("backend connection check failed", "playground_hello", map[string]any{
			"status": env.Status,
			"error":  res.Error,
		})
		return res
	}
	var data any
	if env.Data != nil {
		data = *env.Data
	}
	res.Body = indentValue(data)
	return res
}

func (s *Service) fail(res Result, err error) Result {
	res.Status = 0
	res.StatusClass = StatusClass(0)
	res.Error = err.Error()
	res.Body = indentValue(map[string]string{"error": res.Error})
	s.log.WarnObj("playground request failed", "playground_error", map[string]any{
		"method":   res.Method,
		"endpoint": res.Endpoint,
		"error":    res.Error,
	})
	return res
}

func flatten(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}
