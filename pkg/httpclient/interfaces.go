package httpclient

import (
	"context"
	"io"
	"net/http"
)

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
}

// Request describes one outbound call. Body and Multipart are mutually exclusive;
// Multipart wins when both are set.
type Request struct {
	Method    string
	URL       string
	Headers   map[string]string
	Body      []byte
	Multipart *MultipartForm
}

// MultipartForm carries form fields and file parts for a multipart/form-data body.
type MultipartForm struct {
	Fields map[string]string
	Files  []FilePart
}

// FilePart is a single file entry in a multipart form.
type FilePart struct {
	Field       string
	FileName    string
	ContentType string
	Reader      io.Reader
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Do(ctx context.Context, req Request) (Response, error)
}
