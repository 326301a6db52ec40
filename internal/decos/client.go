// Package decos is the client for the Decos JOIN case-management API. It
// resolves a requester's address-book keys, pages through their folders and
// documents, and answers the workflow-date lookups that deferred case
// transforms make.
package decos

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Amsterdam/mijn-decos-join-api/internal/decos/metrics"
	"github.com/Amsterdam/mijn-decos-join-api/internal/zaken"
	"github.com/Amsterdam/mijn-decos-join-api/pkg/domain"
	"github.com/Amsterdam/mijn-decos-join-api/pkg/platform/circuit"
	"github.com/Amsterdam/mijn-decos-join-api/pkg/platform/sentinel"
	"github.com/Amsterdam/mijn-decos-join-api/pkg/requestcontext"
)

const (
	apiPath = "/decosweb/aspx/api/v1/"

	acceptItemData = "application/itemdata"
	acceptBlob     = "application/octet-stream"

	defaultTimeout  = 5 * time.Second
	defaultPageSize = 60
	defaultFanout   = 12

	defaultDocumentURLPrefix = "/decosjoin/document/"
)

// Config holds the connection settings for one Decos deployment.
type Config struct {
	// Host is the scheme and host of the Decos server, without the API path.
	Host     string
	Username string
	Password string

	// AddressBooks lists the book keys searched for each profile type, in
	// search order.
	AddressBooks map[domain.ProfileType][]string

	Timeout  time.Duration
	PageSize int
	Fanout   int
}

// CaseTransformer normalizes the folders fetched for one requester.
type CaseTransformer interface {
	Transform(ctx context.Context, records []zaken.RawRecord, scope string, wf zaken.WorkflowSource) ([]zaken.Zaak, error)
}

// TokenIssuer seals document keys for download URLs.
type TokenIssuer interface {
	Encrypt(value, scope string) (string, error)
}

// Client talks to the Decos API. It holds no per-request state and is safe for
// concurrent use.
type Client struct {
	baseURL     *url.URL
	username    string
	password    string
	books       map[domain.ProfileType][]string
	timeout     time.Duration
	pageSize    int
	fanout      int
	docPrefix   string
	transformer CaseTransformer
	tokens      TokenIssuer
	http        *http.Client
	breaker     *circuit.Breaker
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithBreaker guards every call with b. An open breaker fails calls fast with
// sentinel.ErrUnavailable.
func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

// WithDocumentURLPrefix changes the path document tokens are appended to.
func WithDocumentURLPrefix(prefix string) Option {
	return func(c *Client) {
		c.docPrefix = prefix
	}
}

// New builds a client for cfg. transformer turns fetched folders into zaken and
// tokens seals document keys.
func New(cfg Config, transformer CaseTransformer, tokens TokenIssuer, opts ...Option) (*Client, error) {
	if transformer == nil {
		return nil, errors.New("case transformer is required")
	}
	if tokens == nil {
		return nil, errors.New("token issuer is required")
	}
	base, err := parseBaseURL(cfg.Host)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:     base,
		username:    cfg.Username,
		password:    cfg.Password,
		books:       cfg.AddressBooks,
		timeout:     cfg.Timeout,
		pageSize:    cfg.PageSize,
		fanout:      cfg.Fanout,
		docPrefix:   defaultDocumentURLPrefix,
		transformer: transformer,
		tokens:      tokens,
		http:        &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()},
		logger:      slog.Default(),
		tracer:      otel.Tracer("github.com/Amsterdam/mijn-decos-join-api/internal/decos"),
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.pageSize <= 0 {
		c.pageSize = defaultPageSize
	}
	if c.fanout <= 0 {
		c.fanout = defaultFanout
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func parseBaseURL(host string) (*url.URL, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return nil, errors.New("decos host is required")
	}
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("parse decos host: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("decos host must include a host (got %q)", host)
	}
	u.Path = strings.TrimRight(u.Path, "/") + apiPath
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// item is one entry of an item-data response.
type item struct {
	Key    string         `json:"key"`
	Fields map[string]any `json:"fields"`
}

type itemPage struct {
	Count   int    `json:"count"`
	Content []item `json:"content"`
}

type response struct {
	body        []byte
	contentType string
}

// call performs one Decos request under the per-call timeout. op names the
// operation in spans, metrics and errors.
func (c *Client) call(ctx context.Context, op, method, path string, query url.Values, payload any, accept string) (*response, error) {
	if c.breaker != nil && !c.breaker.Allow() {
		c.metrics.IncFailure(op, "circuit_open")
		return nil, fmt.Errorf("decos %s: circuit open: %w", op, sentinel.ErrUnavailable)
	}

	ctx, span := c.tracer.Start(ctx, "decos."+op, trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("decos.path", path),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL.JoinPath(path)
	u.RawQuery = query.Encode()

	var body io.Reader
	if payload != nil {
		b, err := sonic.ConfigStd.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode decos %s body: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build decos %s request: %w", op, err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", accept)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.fail(ctx, span, op, "transport", start, err)
		return nil, fmt.Errorf("decos %s: %v: %w", op, err, sentinel.ErrUnavailable)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		c.fail(ctx, span, op, "transport", start, err)
		return nil, fmt.Errorf("read decos %s response: %v: %w", op, err, sentinel.ErrUnavailable)
	}

	if resp.StatusCode/100 != 2 {
		upstreamErr := &UpstreamError{StatusCode: resp.StatusCode, Method: method, Path: path}
		if upstreamErr.Retryable() {
			c.fail(ctx, span, op, "status", start, upstreamErr)
		} else {
			c.succeed(op, "client_error", start)
			span.SetStatus(codes.Error, upstreamErr.Error())
		}
		return nil, upstreamErr
	}

	c.succeed(op, "ok", start)
	return &response{body: b, contentType: resp.Header.Get("Content-Type")}, nil
}

func (c *Client) succeed(op, outcome string, start time.Time) {
	c.metrics.ObserveRequest(op, outcome, time.Since(start))
	if c.breaker == nil {
		return
	}
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.metrics.SetCircuitOpen(false)
		c.logger.Info("decos circuit closed", "breaker", c.breaker.Name())
	}
}

func (c *Client) fail(ctx context.Context, span trace.Span, op, kind string, start time.Time, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, kind)
	c.metrics.ObserveRequest(op, "error", time.Since(start))
	c.metrics.IncFailure(op, kind)
	c.logger.WarnContext(ctx, "decos request failed",
		"request_id", requestcontext.RequestID(ctx),
		"operation", op,
		"error", err,
	)
	if c.breaker == nil {
		return
	}
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.metrics.SetCircuitOpen(true)
		c.logger.WarnContext(ctx, "decos circuit opened", "breaker", c.breaker.Name())
	}
}

func (c *Client) getJSON(ctx context.Context, op, path string, query url.Values, out any) error {
	resp, err := c.call(ctx, op, http.MethodGet, path, query, nil, acceptItemData)
	if err != nil {
		return err
	}
	if err := sonic.ConfigStd.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("decode decos %s response: %w", op, err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, op, path string, query url.Values, payload, out any) error {
	resp, err := c.call(ctx, op, http.MethodPost, path, query, payload, acceptItemData)
	if err != nil {
		return err
	}
	if err := sonic.ConfigStd.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("decode decos %s response: %w", op, err)
	}
	return nil
}
