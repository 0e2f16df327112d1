package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/samvad-hq/sphere-client/pkg/httpclient"
)

// DefaultBaseURL is the local development backend.
const DefaultBaseURL = "http://localhost:8080"

// TokenSource supplies the bearer token for outgoing requests. An empty token
// means the request is sent without an Authorization header.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed bearer token.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) { return string(s), nil }

// Logger defines the logging surface the dispatcher relies on.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}

// Dispatcher issues requests against a fixed base address and normalizes every
// outcome into an Envelope. It holds no mutable state and is safe for concurrent use.
type Dispatcher struct {
	baseURL string
	client  httpclient.Client
	tokens  TokenSource
	log     Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithClient sets the transport.
func WithClient(c httpclient.Client) Option {
	return func(d *Dispatcher) {
		if c != nil {
			d.client = c
		}
	}
}

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(d *Dispatcher) { d.tokens = ts }
}

// WithLogger sets the logger.
func WithLogger(log Logger) Option {
	return func(d *Dispatcher) {
		if log != nil {
			d.log = log
		}
	}
}

// NewDispatcher builds a dispatcher for baseURL (DefaultBaseURL when empty).
func NewDispatcher(baseURL string, opts ...Option) *Dispatcher {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	d := &Dispatcher{
		baseURL: baseURL,
		log:     noopLogger{},
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.client == nil {
		d.client = httpclient.NewRestyClient(0)
	}
	return d
}

// BaseURL returns the address endpoints are appended to.
func (d *Dispatcher) BaseURL() string { return d.baseURL }

// Raw dispatches with an untyped payload.
func (d *Dispatcher) Raw(ctx context.Context, endpoint, method string, body any, headers map[string]string) Envelope[any] {
	return Do[any](ctx, d, endpoint, method, body, headers)
}

// Do sends one request and decodes a successful payload into T.
//
// body may be nil, any JSON-serializable value, or a *Multipart. headers are
// merged last and win over the defaults, except that Content-Type is always
// dropped for multipart bodies. Do never panics and never returns an error:
// every failure is reported through the envelope.
func Do[T any](ctx context.Context, d *Dispatcher, endpoint, method string, body any, headers map[string]string) (env Envelope[T]) {
	start := time.Now()
	method = normalizeMethod(method)

	defer func() {
		if r := recover(); r != nil {
			env = failure[T](fmt.Sprintf("request panicked: %v", r), 0)
		}
		if d == nil || d.log == nil {
			return
		}
		d.log.DebugObj("api request dispatched", "api_request", map[string]any{
			"method":     method,
			"endpoint":   endpoint,
			"status":     env.Status,
			"error":      env.Message(),
			"elapsed_ms": time.Since(start).Milliseconds(),
		})
	}()

	if d == nil || d.client == nil {
		return failure[T]("dispatcher is not initialized", 0)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	req, err := d.build(ctx, endpoint, method, body, headers)
	if err != nil {
		return failure[T](err.Error(), 0)
	}

	resp, err := d.client.Do(ctx, req)
	if err != nil {
		return failure[T](transportMessage(err), 0)
	}
	return normalize[T](resp)
}

func (d *Dispatcher) build(ctx context.Context, endpoint, method string, body any, headers map[string]string) (httpclient.Request, error) {
	req := httpclient.Request{
		Method: method,
		URL:    d.baseURL + endpoint,
	}
	merged := make(http.Header)

	if d.tokens != nil {
		token, err := d.tokens.Token(ctx)
		if err != nil {
			return req, fmt.Errorf("read session token: %w", err)
		}
		if token != "" {
			merged.Set("Authorization", "Bearer "+token)
		}
	}

	mp, isMultipart := asMultipart(body)
	switch {
	case isMultipart:
		req.Multipart = mp.form()
	case !isNilBody(body):
		payload, err := json.Marshal(body)
		if err != nil {
			return req, fmt.Errorf("encode request body: %w", err)
		}
		merged.Set("Content-Type", "application/json")
		req.Body = payload
	}

	for k, v := range headers {
		merged.Set(k, v)
	}
	if isMultipart {
		merged.Del("Content-Type")
	}

	req.Headers = make(map[string]string, len(merged))
	for k := range merged {
		req.Headers[k] = merged.Get(k)
	}
	return req, nil
}

// normalize turns a received response into an envelope.
func normalize[T any](resp httpclient.Response) Envelope[T] {
	status := resp.StatusCode()
	isJSON := isJSONContentType(resp.Header())

	if status < 200 || status >= 300 {
		return failure[T](errorMessage(resp.Body(), isJSON), status)
	}
	if status == http.StatusNoContent {
		return Envelope[T]{Status: status}
	}

	data, err := decode[T](resp.Body(), isJSON)
	if err != nil {
		// the status is kept so callers can still tell what the server said
		return failure[T](err.Error(), status)
	}
	return success(data, status)
}

func isJSONContentType(h http.Header) bool {
	if h == nil {
		return false
	}
	return strings.Contains(strings.ToLower(h.Get("Content-Type")), "application/json")
}

// errorMessage extracts a string "message" field from a JSON error body.
func errorMessage(body []byte, isJSON bool) string {
	if !isJSON {
		return FallbackErrorMessage
	}
	var payload struct {
		Message any `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return FallbackErrorMessage
	}
	if msg, ok := payload.Message.(string); ok && msg != "" {
		return msg
	}
	return FallbackErrorMessage
}

func decode[T any](body []byte, isJSON bool) (*T, error) {
	var out T
	switch p := any(&out).(type) {
	case *[]byte:
		*p = append([]byte(nil), body...)
		return &out, nil
	case *string:
		if !isJSON {
			*p = string(body)
			return &out, nil
		}
	case *json.RawMessage:
		if !isJSON {
			*p = append(json.RawMessage(nil), body...)
			return &out, nil
		}
	case *any:
		if !isJSON {
			*p = string(body)
			return &out, nil
		}
	default:
		if !isJSON {
			return nil, fmt.Errorf("response is not JSON; cannot decode into %T", out)
		}
	}

	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response body: %w", err)
	}
	return &out, nil
}

func normalizeMethod(method string) string {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		return http.MethodGet
	}
	return method
}

// isNilBody treats typed nil pointers, maps and slices as "no body".
func isNilBody(body any) bool {
	if body == nil {
		return true
	}
	v := reflect.ValueOf(body)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func transportMessage(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "request cancelled: " + err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out: " + err.Error()
	}
	return err.Error()
}
