// Package remote implements the domain gateways against the remote
// organization API over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/neomorfeo/orgconsole/internal/domain"
)

// DefaultTimeout bounds every remote call when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// IdempotencyHeader carries a fresh key on every POST so the remote side can
// deduplicate a resubmitted attempt.
const IdempotencyHeader = "Idempotency-Key"

// Client talks to the remote organization API. It implements
// domain.OnboardingGateway, domain.DirectoryGateway and domain.TaskGateway.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	newKey     func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithKeyFunc replaces the idempotency key generator.
func WithKeyFunc(fn func() string) Option {
	return func(c *Client) { c.newKey = fn }
}

// New creates a client for the API rooted at baseURL. A zero timeout means DefaultTimeout.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid remote api url: %q", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
		newKey:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// request describes one call. Body is either JSON (jsonBody) or a prepared
// multipart form (form).
type request struct {
	method   string
	path     string
	query    url.Values
	jsonBody any
	form     *multipartForm
}

func (r request) op() string {
	return r.method + " " + r.path
}

// do performs a call and decodes a successful body into out when out is not nil.
// Non-2xx responses become *domain.RemoteError; everything else that goes
// wrong becomes *domain.TransportError.
func (c *Client) do(ctx context.Context, actor domain.Identity, r request, out any) error {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + r.path
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case r.form != nil:
		b, ct, err := r.form.encode()
		if err != nil {
			return &domain.TransportError{Op: r.op(), Err: err}
		}
		body, contentType = b, ct
	case r.jsonBody != nil:
		b, err := json.Marshal(r.jsonBody)
		if err != nil {
			return &domain.TransportError{Op: r.op(), Err: fmt.Errorf("encoding request: %w", err)}
		}
		body, contentType = bytes.NewReader(b), "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return &domain.TransportError{Op: r.op(), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if actor.Token != "" {
		req.Header.Set("Authorization", "Bearer "+actor.Token)
	}
	if r.method == http.MethodPost {
		req.Header.Set(IdempotencyHeader, c.newKey())
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.TransportError{Op: r.op(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.TransportError{Op: r.op(), Err: fmt.Errorf("reading response: %w", err)}
	}

	slog.DebugContext(ctx, "remote call",
		"op", r.op(),
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(respBody)) == 0 {
		return &domain.TransportError{Op: r.op(), Err: errors.New("empty response body")}
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &domain.TransportError{Op: r.op(), Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

type errorBody struct {
	Errors []struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	} `json:"errors"`
	Message string `json:"message"`
}

// decodeError extracts the server-supplied message: the first entry of
// errors (detail, then message), then the top-level message, then a
// status-only fallback.
func decodeError(status int, body []byte) *domain.RemoteError {
	msg := fmt.Sprintf("Error: %d", status)

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		switch {
		case len(eb.Errors) > 0:
			if eb.Errors[0].Detail != "" {
				msg = eb.Errors[0].Detail
			} else if eb.Errors[0].Message != "" {
				msg = eb.Errors[0].Message
			}
		case eb.Message != "":
			msg = eb.Message
		}
	}

	return &domain.RemoteError{Status: status, Message: msg}
}

type formFile struct {
	field    string
	filename string
	content  []byte
}

type multipartForm struct {
	fields [][2]string
	files  []formFile
}

func (f *multipartForm) field(name, value string) *multipartForm {
	f.fields = append(f.fields, [2]string{name, value})
	return f
}

func (f *multipartForm) file(field, filename string, content []byte) *multipartForm {
	f.files = append(f.files, formFile{field: field, filename: filename, content: content})
	return f
}

func (f *multipartForm) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, kv := range f.fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", fmt.Errorf("writing field %s: %w", kv[0], err)
		}
	}
	for _, ff := range f.files {
		part, err := w.CreateFormFile(ff.field, ff.filename)
		if err != nil {
			return nil, "", fmt.Errorf("creating part %s: %w", ff.field, err)
		}
		if _, err := part.Write(ff.content); err != nil {
			return nil, "", fmt.Errorf("writing part %s: %w", ff.field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// flexID accepts identifiers encoded either as JSON strings or numbers.
type flexID string

func (id *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = flexID(n.String())
	return nil
}
