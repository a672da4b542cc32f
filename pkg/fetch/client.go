package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	errs "github.com/erebus-go/erebus/internal/errors"
)

// DefaultMaxBodySize bounds the bytes read from a response body.
const DefaultMaxBodySize = 10 << 20

// Transport errors. Compare with errors.Is.
var (
	ErrNullURL           = errs.New(errs.CodeNullURL)
	ErrConnectionRefused = errs.New(errs.CodeConnectionRefused)
	ErrHTTPStatus        = errs.New(errs.CodeHTTPStatus)
	ErrJSONParse         = errs.New(errs.CodeJSONParse)
	ErrUnsupportedScheme = errs.New(errs.CodeUnsupportedScheme)
)

// StatusError reports a response whose status was not 200.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return errs.CodeHTTPStatus + "." + strconv.Itoa(e.Status)
}

// Unwrap lets errors.Is match ErrHTTPStatus.
func (e *StatusError) Unwrap() error {
	return errs.New(errs.CodeHTTPStatus).WithDetail(strconv.Itoa(e.Status))
}

// Response is a completed request.
type Response struct {
	Status int
	Header http.Header
	Body   []byte

	// Value is the decoded JSON document for JSON responses, the body text
	// otherwise, or what an interceptor replaced it with.
	Value any
}

// Text returns the raw body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// Interceptor post-processes a successful response. A nil result keeps the
// original value.
type Interceptor func(value any, header http.Header) any

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithBaseURL sets the URL relative references resolve against.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.base = base
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(name, value string) Option {
	return func(c *Client) {
		c.header.Add(name, value)
	}
}

// WithInterceptor sets the client-wide response interceptor.
func WithInterceptor(fn Interceptor) Option {
	return func(c *Client) {
		c.interceptor = fn
	}
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithMaxBodySize bounds the bytes read from a body.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		c.maxBody = n
	}
}

// WithFileRoot serves file:// URLs from the directory root.
func WithFileRoot(root string) Option {
	return func(c *Client) {
		c.fileRoot = root
	}
}

// WithS3 serves s3://bucket/key URLs through api.
func WithS3(api S3API) Option {
	return func(c *Client) {
		c.s3 = api
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client performs requests.
type Client struct {
	http        *http.Client
	base        string
	header      http.Header
	interceptor Interceptor
	timeout     time.Duration
	maxBody     int64
	fileRoot    string
	s3          S3API
	logger      *slog.Logger
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		header:  make(http.Header),
		maxBody: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.fileRoot != "" {
		c.http = withFileTransport(c.http, c.fileRoot)
	}
	return c
}

// withFileTransport returns a copy of hc that also understands file:// URLs.
func withFileTransport(hc *http.Client, root string) *http.Client {
	base, ok := hc.Transport.(*http.Transport)
	if !ok || base == nil {
		base = http.DefaultTransport.(*http.Transport)
	}
	t := base.Clone()
	t.RegisterProtocol("file", http.NewFileTransport(http.Dir(root)))
	clone := *hc
	clone.Transport = t
	return &clone
}

// RequestOption configures a single request.
type RequestOption func(*request)

type request struct {
	header      http.Header
	interceptor Interceptor
	contentType string
}

// Header adds a request header.
func Header(name, value string) RequestOption {
	return func(r *request) {
		r.header.Add(name, value)
	}
}

// Intercept sets the interceptor for this request, replacing the client's.
func Intercept(fn Interceptor) RequestOption {
	return func(r *request) {
		r.interceptor = fn
	}
}

// ContentType sets the request body content type.
func ContentType(ct string) RequestOption {
	return func(r *request) {
		r.contentType = ct
	}
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, rawURL string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodGet, rawURL, nil, opts...)
}

// Post issues a POST request.
func (c *Client) Post(ctx context.Context, rawURL string, body io.Reader, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPost, rawURL, body, opts...)
}

// Put issues a PUT request.
func (c *Client) Put(ctx context.Context, rawURL string, body io.Reader, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPut, rawURL, body, opts...)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, rawURL string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, rawURL, nil, opts...)
}

// PostJSON marshals v and posts it as application/json.
func (c *Client) PostJSON(ctx context.Context, rawURL string, v any, opts ...RequestOption) (*Response, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	opts = append(opts, ContentType("application/json"))
	return c.Do(ctx, http.MethodPost, rawURL, bytes.NewReader(data), opts...)
}

// Text fetches rawURL and returns its body as text.
func (c *Client) Text(ctx context.Context, rawURL string) (string, error) {
	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// Resolve returns the absolute URL rawURL refers to.
func (c *Client) Resolve(rawURL string) (*url.URL, error) {
	ref, err := url.Parse(rawURL)
	if err != nil {
		return nil, errs.New(errs.CodeInvalidURL).WithDetail(rawURL).Wrap(err)
	}
	if c.base == "" || ref.IsAbs() {
		return ref, nil
	}
	base, err := url.Parse(c.base)
	if err != nil {
		return nil, errs.New(errs.CodeInvalidURL).WithDetail(c.base).Wrap(err)
	}
	return base.ResolveReference(ref), nil
}

// Do issues a request.
func (c *Client) Do(ctx context.Context, method, rawURL string, body io.Reader, opts ...RequestOption) (*Response, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, errs.New(errs.CodeNullURL)
	}
	if method == "" {
		method = http.MethodGet
	}

	r := request{header: make(http.Header), interceptor: c.interceptor}
	for _, opt := range opts {
		opt(&r)
	}

	target, err := c.Resolve(rawURL)
	if err != nil {
		return nil, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	switch target.Scheme {
	case "http", "https":
	case "file":
		if c.fileRoot == "" {
			return nil, errs.New(errs.CodeUnsupportedScheme).WithDetail("file (no root configured)")
		}
		// http.Dir expects a rooted path in URL.Path; keep host-less form.
		target = &url.URL{Scheme: "file", Path: "/" + strings.TrimPrefix(target.Host+target.Path, "/")}
	case "s3":
		if method != http.MethodGet {
			return nil, errs.New(errs.CodeUnsupportedScheme).WithDetail("s3 supports GET only")
		}
		return c.getS3(ctx, target, r)
	default:
		return nil, errs.New(errs.CodeUnsupportedScheme).WithDetail(strconv.Quote(target.Scheme))
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, errs.New(errs.CodeInvalidURL).WithDetail(target.String()).Wrap(err)
	}
	for name, values := range c.header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	for name, values := range r.header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Debug(errs.CodeConnectionRefused, "url", target.String(), "error", err)
		return nil, errs.New(errs.CodeConnectionRefused).WithDetail(target.String()).Wrap(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return nil, errs.New(errs.CodeConnectionRefused).WithDetail(target.String()).Wrap(err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Status: resp.StatusCode, Body: string(data)}
	}

	return c.finish(resp.StatusCode, resp.Header, data, r)
}

// finish decodes the body and applies the interceptor.
func (c *Client) finish(status int, header http.Header, data []byte, r request) (*Response, error) {
	resp := &Response{
		Status: status,
		Header: header,
		Body:   data,
		Value:  string(data),
	}

	if isJSON(header.Get("Content-Type")) {
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, errs.New(errs.CodeJSONParse).
				WithDetail(fmt.Sprintf("%d bytes", len(data))).
				Wrap(err)
		}
		resp.Value = v
	}

	if r.interceptor != nil {
		if v := r.interceptor(resp.Value, header); v != nil {
			resp.Value = v
		}
	}
	return resp, nil
}

func isJSON(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "application/json")
}
