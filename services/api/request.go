package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/gabriel-vasile/mimetype"
)

// Request describes one call to the remote API. The body is buffered so
// the single retry after a token refresh re-sends identical bytes.
type Request struct {
	Method string
	Path   string
	// Route is the path template used as the metrics label, e.g.
	// "/book/hotel/{id}". Defaults to Path.
	Route  string
	Auth   bool
	Header http.Header

	body        []byte
	contentType string
}

// NewRequest builds a request with an optional JSON body.
func NewRequest(method, path string, body any) (*Request, error) {
	r := &Request{Method: method, Path: path, Header: http.Header{}}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		r.body = data
		r.contentType = "application/json"
	}
	return r, nil
}

// File is a multipart file part.
type File struct {
	Field    string
	Filename string
	Content  []byte
}

// NewMultipartRequest builds a multipart/form-data request. File part
// content types are sniffed from their bytes.
func NewMultipartRequest(method, path string, fields [][2]string, files []File) (*Request, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("failed to write form field %q: %w", f[0], err)
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Filename))
		h.Set("Content-Type", mimetype.Detect(f.Content).String())
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("failed to create file part %q: %w", f.Filename, err)
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, fmt.Errorf("failed to write file part %q: %w", f.Filename, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}
	return &Request{
		Method:      method,
		Path:        path,
		Header:      http.Header{},
		body:        buf.Bytes(),
		contentType: w.FormDataContentType(),
	}, nil
}

// Authenticated marks the request as needing the bearer token.
func (r *Request) Authenticated() *Request {
	r.Auth = true
	return r
}

// Named sets the metrics route label.
func (r *Request) Named(route string) *Request {
	r.Route = route
	return r
}

func (r *Request) route() string {
	if r.Route != "" {
		return r.Route
	}
	return r.Path
}
