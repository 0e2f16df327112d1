package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/samvad-hq/sphere-client/internal/config"
	"github.com/samvad-hq/sphere-client/internal/playground"
)

type fakeBackend struct {
	mu   sync.Mutex
	reqs []*http.Request
	body []string
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.reqs = append(b.reqs, r)
	b.body = append(b.body, string(raw))
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/":
		io.WriteString(w, `{"message":"hello"}`)
	case r.URL.Path == "/auth/login":
		io.WriteString(w, `{"token":"jwt-abc","user":{"id":"1","username":"janedoe"}}`)
	case r.URL.Path == "/auth/me":
		if r.Header.Get("Authorization") != "Bearer jwt-abc" {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"message":"unauthorized"}`)
			return
		}
		io.WriteString(w, `{"id":"1","username":"janedoe"}`)
	case r.URL.Path == "/upload/image":
		_, hdr, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"url": "/media/" + hdr.Filename, "contentType": hdr.Header.Get("Content-Type")})
	case r.URL.Path == "/echo":
		w.Write(raw)
	default:
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"message":"not found"}`)
	}
}

func (b *fakeBackend) last() (*http.Request, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reqs[len(b.reqs)-1], b.body[len(b.body)-1]
}

type harness struct {
	backend *fakeBackend
	cfg     config.Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	b := &fakeBackend{}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	return &harness{
		backend: b,
		cfg: config.Config{
			AppName:                "sphere",
			BaseURL:                srv.URL,
			StoreType:              "bbolt",
			BBoltPath:              filepath.Join(t.TempDir(), "session.db"),
			HistoryTTL:             time.Hour,
			HistoryCleanupInterval: time.Minute,
		},
	}
}

func (h *harness) run(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cfg := h.cfg
	err := Run(context.Background(), args, Options{
		LoadConfig: func() (*config.Config, error) { return &cfg, nil },
		Stdout:     &stdout,
		Stderr:     &stderr,
	})
	return stdout.String(), stderr.String(), err
}

func TestHelloPretty(t *testing.T) {
	h := newHarness(t)
	out, _, err := h.run("hello")
	if err != nil {
		t.Fatalf("hello: %v", err)
	}
	if !strings.HasPrefix(out, "GET / -> 200 success") || !strings.Contains(out, `"message": "hello"`) {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRequestSendsBodyAndHeaders(t *testing.T) {
	h := newHarness(t)
	out, _, err := h.run("request", "post", "/echo", "-d", `{"content":"hi"}`, "-H", "X-Trace: abc", "-o", "json")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	var res playground.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not a JSON result: %v (%q)", err, out)
	}
	if res.Status != 200 || res.Method != "POST" || !strings.Contains(res.Body, `"content": "hi"`) {
		t.Fatalf("unexpected result %+v", res)
	}
	req, body := h.backend.last()
	if req.Header.Get("X-Trace") != "abc" || req.Header.Get("Content-Type") != "application/json" || body != `{"content":"hi"}` {
		t.Fatalf("unexpected request headers %v body %q", req.Header, body)
	}
}

func TestRequestRejectsInvalidJSON(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("request", "POST", "/echo", "-d", `{"content"`)
	if !errors.Is(err, playground.ErrInvalidJSON) {
		t.Fatalf("expected ErrInvalidJSON, got %v", err)
	}
	if len(h.backend.reqs) != 0 {
		t.Fatalf("expected nothing sent")
	}
}

func TestRequestRejectsBodyOnGet(t *testing.T) {
	h := newHarness(t)
	for _, args := range [][]string{
		{"request", "GET", "/echo", "-d", `{"a":1}`},
		{"request", "GET", "/echo", "-d", `{"a":1}`, "--envelope"},
	} {
		if _, _, err := h.run(args...); !errors.Is(err, playground.ErrBodyNotAllowed) {
			t.Fatalf("%v: expected ErrBodyNotAllowed, got %v", args, err)
		}
	}
	if len(h.backend.reqs) != 0 {
		t.Fatalf("expected nothing sent")
	}
}

func TestRequestEnvelopeReportsFailure(t *testing.T) {
	h := newHarness(t)
	out, _, err := h.run("request", "GET", "/auth/me", "--envelope", "-o", "json")
	if err == nil || !strings.Contains(err.Error(), "unauthorized") {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if strings.TrimSpace(out) != `{"data":null,"error":"unauthorized","status":401}` {
		t.Fatalf("unexpected envelope output %q", out)
	}
}

func TestRequestRejectsBadHeader(t *testing.T) {
	h := newHarness(t)
	if _, _, err := h.run("request", "GET", "/", "-H", "no-colon"); err == nil {
		t.Fatalf("expected header parse error")
	}
}

func TestLoginPersistsSessionForWhoami(t *testing.T) {
	h := newHarness(t)
	if _, _, err := h.run("login", "-u", "janedoe", "-p", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}

	out, _, err := h.run("whoami", "-o", "json")
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if !strings.Contains(out, `"username":"janedoe"`) {
		t.Fatalf("unexpected whoami output %q", out)
	}

	if _, _, err := h.run("logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, _, err := h.run("whoami"); err == nil {
		t.Fatalf("expected whoami to fail after logout")
	}
}

func TestTokenFlagOverridesSession(t *testing.T) {
	h := newHarness(t)
	if _, _, err := h.run("whoami", "--token", "jwt-abc"); err != nil {
		t.Fatalf("whoami with explicit token: %v", err)
	}
}

func TestUploadImage(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "avatar.png")
	if err := os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	out, _, err := h.run("upload", "image", path, "-o", "json")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.Contains(out, `"url":"/media/avatar.png"`) || !strings.Contains(out, `"contentType":"image/png"`) {
		t.Fatalf("unexpected upload output %q", out)
	}
}

func TestEndpointsAndHistory(t *testing.T) {
	h := newHarness(t)
	out, _, err := h.run("endpoints")
	if err != nil {
		t.Fatalf("endpoints: %v", err)
	}
	if !strings.Contains(out, "Login User") || !strings.Contains(out, "/auth/login") {
		t.Fatalf("unexpected endpoints output %q", out)
	}

	if _, _, err := h.run("request", "GET", "/"); err != nil {
		t.Fatalf("request: %v", err)
	}
	out, _, err = h.run("history", "-o", "json")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var entries []map[string]any
	if err := json.Unmarshal([]byte(out), &entries); err != nil || len(entries) != 1 {
		t.Fatalf("unexpected history output %q err=%v", out, err)
	}
}

func TestSuiteOnlySelectsEntries(t *testing.T) {
	h := newHarness(t)
	out, _, err := h.run("suite", "--only", "Hello Endpoint")
	if err != nil {
		t.Fatalf("suite: %v", err)
	}
	if !strings.Contains(out, "1 passed, 0 failed") {
		t.Fatalf("unexpected suite output %q", out)
	}

	if _, _, err := h.run("suite", "--only", "Nope"); err == nil {
		t.Fatalf("expected unknown endpoint error")
	}
}

func TestUnsupportedOutputFormat(t *testing.T) {
	h := newHarness(t)
	if _, _, err := h.run("hello", "-o", "yaml"); err == nil {
		t.Fatalf("expected output format error")
	}
}
