package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/regview/internal/log"
	"github.com/zjrosen/regview/internal/tracing"
)

const (
	// DefaultTimeout bounds a single request when no http.Client is supplied.
	DefaultTimeout = 30 * time.Second

	maxIndexBytes  = 64 << 20
	maxObjectBytes = 8 << 20
	maxErrorBytes  = 4 << 10
)

// ErrROAUnavailable is returned when the service has ROA export disabled.
var ErrROAUnavailable = errors.New("ROA export unavailable")

// ROAFormat selects one of the ROA export endpoints.
type ROAFormat string

const (
	ROAv4   ROAFormat = "v4"
	ROAv6   ROAFormat = "v6"
	ROAJSON ROAFormat = "json"
)

// ParseROAFormat validates a user-supplied format name.
func ParseROAFormat(s string) (ROAFormat, error) {
	switch f := ROAFormat(strings.ToLower(s)); f {
	case ROAv4, ROAv6, ROAJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown ROA format %q (want v4, v6 or json)", s)
	}
}

// Client talks to the registry service over HTTP.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	tracer    trace.Tracer
	userAgent string
	timeout   *time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying client. Its transport is used as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTracer records a span per fetch and per HTTP round trip.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithTimeout sets the per-request timeout. It applies to the client given
// by WithHTTPClient as well, whatever the option order.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = &d }
}

// NewClient creates a client rooted at baseURL (for example
// "https://explorer.example.net/").
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q: missing host", baseURL)
	}

	c := &Client{
		baseURL:   u,
		http:      &http.Client{Timeout: DefaultTimeout},
		tracer:    noop.NewTracerProvider().Tracer("noop"),
		userAgent: "regview",
	}
	custom := false
	for _, opt := range opts {
		before := c.http
		opt(c)
		if c.http != before {
			custom = true
		}
	}
	if !custom {
		c.http.Transport = tracing.NewTransport(nil, c.tracer)
	}
	if c.timeout != nil {
		c.http.Timeout = *c.timeout
	}
	return c, nil
}

// BaseURL returns the service root the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Index fetches the full name index and session info.
// Failures wrap ErrIndexFetch.
func (c *Client) Index(ctx context.Context) (*Index, error) {
	ctx, span := c.tracer.Start(ctx, tracing.SpanIndexFetch)
	defer span.End()

	body, err := c.get(ctx, c.endpoint("index/"), maxIndexBytes)
	if err != nil {
		return nil, c.fail(span, fmt.Errorf("%w: %w", ErrIndexFetch, err))
	}

	var idx Index
	if err := idx.UnmarshalJSON(body); err != nil {
		return nil, c.fail(span, fmt.Errorf("%w: decode: %w", ErrIndexFetch, err))
	}

	span.AddEvent(tracing.EventDecoded)
	span.SetAttributes(attribute.Int(tracing.AttrIndexObjects, idx.Count()))
	span.SetStatus(codes.Ok, "")
	log.Info(log.CatHTTP, "index loaded", "categories", len(idx.Categories), "objects", idx.Count(), "commit", idx.Info.Commit)
	return &idx, nil
}

// Object fetches the detail payload for t. A target unknown to the service
// yields a *NotFoundError (matching ErrObjectNotFound); any other failure
// wraps ErrObjectFetch.
func (c *Client) Object(ctx context.Context, t Target) (*ObjectDetail, error) {
	ctx, span := c.tracer.Start(ctx, tracing.SpanObjectFetch, trace.WithAttributes(
		attribute.String(tracing.AttrTargetCategory, t.Category),
		attribute.String(tracing.AttrTargetName, t.Name),
	))
	defer span.End()

	u := c.endpoint("object/")
	u.RawQuery = url.Values{"name": {t.Name}, "type": {t.Category}}.Encode()

	body, err := c.get(ctx, u, maxObjectBytes)
	if err != nil {
		if isNotFound(err) {
			return nil, c.fail(span, &NotFoundError{Target: t})
		}
		return nil, c.fail(span, fmt.Errorf("%w: %s: %w", ErrObjectFetch, t.Path(), err))
	}

	detail, err := decodeObject(body)
	if err != nil {
		return nil, c.fail(span, fmt.Errorf("%w: %s: decode: %w", ErrObjectFetch, t.Path(), err))
	}

	span.AddEvent(tracing.EventDecoded)
	span.SetStatus(codes.Ok, "")
	log.Debug(log.CatHTTP, "object loaded", "target", t.Path(), "links", len(detail.ForwardLinks), "backlinks", len(detail.BackLinks))
	return detail, nil
}

// ROA fetches one of the ROA exports verbatim.
func (c *Client) ROA(ctx context.Context, format ROAFormat) ([]byte, error) {
	if _, err := ParseROAFormat(string(format)); err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, tracing.SpanROAFetch, trace.WithAttributes(
		attribute.String(tracing.AttrROAFormat, string(format)),
	))
	defer span.End()

	body, err := c.get(ctx, c.endpoint("roa/"+string(format)+"/"), maxIndexBytes)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusInternalServerError && se.Body == "" {
			return nil, c.fail(span, ErrROAUnavailable)
		}
		return nil, c.fail(span, fmt.Errorf("fetch ROA %s: %w", format, err))
	}
	span.SetStatus(codes.Ok, "")
	return body, nil
}

func (c *Client) endpoint(path string) *url.URL {
	return c.baseURL.JoinPath(path)
}

func (c *Client) get(ctx context.Context, u *url.URL, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.ErrorErr(log.CatHTTP, "request failed", err, "url", u.String())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
		log.Warn(log.CatHTTP, "unexpected status", "url", u.String(), "status", resp.StatusCode)
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("response exceeds %d bytes", limit)
	}
	log.Debug(log.CatHTTP, "GET", "url", u.String(), "status", resp.StatusCode, "bytes", len(body), "elapsed", time.Since(start))
	return body, nil
}

func (c *Client) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// isNotFound recognizes both a plain 404 and the service's 500 bodies for
// an unknown category or object.
func isNotFound(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	if se.Code == http.StatusNotFound {
		return true
	}
	return se.Body == "object not found" || se.Body == "category not found"
}
