package api

import (
	"io"

	"github.com/samvad-hq/sphere-client/pkg/httpclient"
)

const defaultFileContentType = "application/octet-stream"

// Multipart is a form-data request body. The dispatcher never sets a
// Content-Type for it so the transport can add the boundary.
type Multipart struct {
	Fields map[string]string
	Files  []File
}

// File is one file part of a Multipart body.
type File struct {
	Field       string
	Name        string
	ContentType string
	Reader      io.Reader
}

// NewMultipart returns an empty form.
func NewMultipart() *Multipart {
	return &Multipart{Fields: map[string]string{}}
}

// AddField sets a plain form field.
func (m *Multipart) AddField(name, value string) *Multipart {
	if m.Fields == nil {
		m.Fields = map[string]string{}
	}
	m.Fields[name] = value
	return m
}

// AddFile appends a file part.
func (m *Multipart) AddFile(field, name, contentType string, r io.Reader) *Multipart {
	m.Files = append(m.Files, File{Field: field, Name: name, ContentType: contentType, Reader: r})
	return m
}

func (m *Multipart) form() *httpclient.MultipartForm {
	form := &httpclient.MultipartForm{Fields: m.Fields}
	for _, f := range m.Files {
		ct := f.ContentType
		if ct == "" {
			ct = defaultFileContentType
		}
		form.Files = append(form.Files, httpclient.FilePart{
			Field:       f.Field,
			FileName:    f.Name,
			ContentType: ct,
			Reader:      f.Reader,
		})
	}
	return form
}

func asMultipart(body any) (*Multipart, bool) {
	switch m := body.(type) {
	case *Multipart:
		if m == nil {
			return nil, false
		}
		return m, true
	case Multipart:
		return &m, true
	default:
		return nil, false
	}
}
