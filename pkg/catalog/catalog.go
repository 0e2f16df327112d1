package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Package catalog holds the predefined endpoints the playground can send.

// Methods the playground accepts.
var allowedMethods = map[string]struct{}{
	"GET": {}, "POST": {}, "PUT": {}, "DELETE": {}, "PATCH": {},
}

// Entry is one predefined request.
type Entry struct {
	Name     string `json:"name" yaml:"name"`
	Method   string `json:"method" yaml:"method"`
	Endpoint string `json:"endpoint" yaml:"endpoint"`
	Body     Body   `json:"body,omitempty" yaml:"body,omitempty"`
}

// Body is raw JSON request text. In config files it may be written either as
// a string or as a structured value, which is re-encoded as indented JSON.
type Body string

func (b *Body) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		*b = Body(n.Value)
		return nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return err
	}
	return b.setFrom(v)
}

func (b *Body) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*b = Body(s)
		return nil
	}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*b = ""
		return nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return err
	}
	*b = Body(buf.String())
	return nil
}

func (b *Body) setFrom(v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode body: %w", err)
	}
	*b = Body(raw)
	return nil
}

type configFile struct {
	Endpoints []Entry `json:"endpoints" yaml:"endpoints"`
}

// Catalog is an ordered, name-indexed set of entries.
type Catalog struct {
	mu      sync.RWMutex
	entries []Entry
	idx     map[string]Entry
}

// Default returns the built-in entries.
func Default() *Catalog {
	c, err := build(builtin())
	if err != nil {
		panic(fmt.Sprintf("catalog: invalid built-in entries: %v", err))
	}
	return c
}

func builtin() []Entry {
	return []Entry{
		{Name: "Hello Endpoint", Method: "GET", Endpoint: "/"},
		{Name: "Register User", Method: "POST", Endpoint: "/auth/register", Body: indent(map[string]string{
			"username": "testuser",
			"email":    "test@example.com",
			"password": "password123",
		})},
		{Name: "Login User", Method: "POST", Endpoint: "/auth/login", Body: indent(map[string]string{
			"username": "testuser",
			"password": "password123",
		})},
		{Name: "Get Current User", Method: "GET", Endpoint: "/auth/me"},
		{Name: "Create Post", Method: "POST", Endpoint: "/posts", Body: indent(map[string]string{
			"content":    "This is a test post",
			"visibility": "PUBLIC",
		})},
		{Name: "Get All Posts", Method: "GET", Endpoint: "/posts"},
	}
}

func indent(v any) Body {
	var b Body
	_ = b.setFrom(v)
	return b
}

// Load reads entries from a YAML/JSON file. An empty path yields Default().
func Load(path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default(), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	parsed, err := parse(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(parsed.Endpoints) == 0 {
		return nil, errors.New("catalog file contains no endpoints entries")
	}
	return build(parsed.Endpoints)
}

func parse(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var cf configFile
		if err := d.fn(data, &cf); err == nil {
			return cf, nil
		}
	}
	return configFile{}, errors.New("catalog file format not recognized (expected YAML or JSON)")
}

func build(entries []Entry) (*Catalog, error) {
	c := &Catalog{
		entries: make([]Entry, len(entries)),
		idx:     make(map[string]Entry, len(entries)),
	}
	for i := range entries {
		e := sanitize(entries[i])
		if err := validate(e); err != nil {
			return nil, fmt.Errorf("endpoints[%d]: %w", i, err)
		}
		key := strings.ToLower(e.Name)
		if _, exists := c.idx[key]; exists {
			return nil, fmt.Errorf("duplicate endpoint name %q", e.Name)
		}
		c.entries[i] = e
		c.idx[key] = e
	}
	return c, nil
}

func sanitize(e Entry) Entry {
	e.Name = strings.TrimSpace(e.Name)
	e.Method = strings.ToUpper(strings.TrimSpace(e.Method))
	if e.Method == "" {
		e.Method = "GET"
	}
	e.Endpoint = strings.TrimSpace(e.Endpoint)
	if e.Endpoint != "" && !strings.HasPrefix(e.Endpoint, "/") {
		e.Endpoint = "/" + e.Endpoint
	}
	e.Body = Body(strings.TrimSpace(string(e.Body)))
	return e
}

func validate(e Entry) error {
	if e.Name == "" {
		return errors.New("name is required")
	}
	if _, ok := allowedMethods[e.Method]; !ok {
		return fmt.Errorf("unsupported method %q for endpoint %q", e.Method, e.Name)
	}
	if e.Endpoint == "" {
		return fmt.Errorf("endpoint is required for %q", e.Name)
	}
	if e.Body != "" && e.Method != "POST" && e.Method != "PUT" && e.Method != "PATCH" {
		return fmt.Errorf("%q sends a body with %s; only POST, PUT and PATCH carry one", e.Name, e.Method)
	}
	if e.Body != "" && !json.Valid([]byte(e.Body)) {
		return fmt.Errorf("body of %q is not valid JSON", e.Name)
	}
	return nil
}

// ByName finds an entry case-insensitively.
func (c *Catalog) ByName(name string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.idx[strings.ToLower(strings.TrimSpace(name))]
	return e, ok
}

// All returns the entries in declaration order.
func (c *Catalog) All() []Entry {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
