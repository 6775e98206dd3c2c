package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/lestrrat-go/backoff/v2"
	"golang.org/x/time/rate"

	"github.com/Skotchmaster/pawtopia/pkg/logging"
)

const (
	DefaultTimeout = 15 * time.Second
	maxBodyBytes   = 8 << 20
)

type Options struct {
	BaseURL string
	Tokens  TokenSource

	Timeout    time.Duration
	Retries    int
	RatePerSec float64

	// Transport overrides the base round tripper; nil uses a pooled http.Transport.
	Transport http.RoundTripper
}

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
	retries    int
}

func New(opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url must be absolute: %q", opts.BaseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	base := opts.Transport
	if base == nil {
		base = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 60 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		}
	}

	limit := rate.Inf
	if opts.RatePerSec > 0 {
		limit = rate.Limit(opts.RatePerSec)
	}

	retries := opts.Retries
	if retries < 0 {
		retries = 0
	}

	return &Client{
		baseURL: u,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: &bearerTransport{base: base, tokens: opts.Tokens},
		},
		limiter: rate.NewLimiter(limit, 1),
		retries: retries,
	}, nil
}

type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

func (c *Client) url(r Request) string {
	u := *c.baseURL
	// r.Path segments arrive already escaped (see Segment).
	raw := strings.TrimRight(c.baseURL.EscapedPath(), "/") + "/" + strings.TrimLeft(r.Path, "/")
	if p, err := url.PathUnescape(raw); err == nil {
		u.Path, u.RawPath = p, raw
	} else {
		u.Path, u.RawPath = raw, ""
	}
	if len(r.Query) > 0 {
		u.RawQuery = r.Query.Encode()
	}
	return u.String()
}

// Segment escapes a single path segment such as an email address.
func Segment(v any) string {
	return url.PathEscape(fmt.Sprint(v))
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

func retryableStatus(status int) bool {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Do issues one logical request. Idempotent requests are retried with exponential
// backoff on transport failures and gateway errors; POST is sent once.
// The returned error is always *Error.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	var payload []byte
	if r.Body != nil {
		b, err := json.Marshal(r.Body)
		if err != nil {
			return nil, &Error{Kind: KindValidation, Message: "could not encode request", Err: err}
		}
		payload = b
	}

	target := c.url(r)
	requestID := uuid.NewString()
	l := logging.FromContext(ctx).With(
		"method", r.Method,
		"path", r.Path,
		"request_id", requestID,
	)

	attempts := 1
	if idempotent(r.Method) {
		attempts += c.retries
	}

	policy := backoff.Exponential(
		backoff.WithMinInterval(200*time.Millisecond),
		backoff.WithMaxInterval(2*time.Second),
		backoff.WithJitterFactor(0.1),
		backoff.WithMaxRetries(attempts+1),
	)
	bctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		resp    *Response
		lastErr error
		n       int
	)
	b := policy.Start(bctx)
	for n < attempts && backoff.Continue(b) {
		n++
		resp, lastErr = c.attempt(ctx, r.Method, target, requestID, payload)
		if lastErr != nil {
			if ctx.Err() != nil {
				break
			}
			l.Warn("api_request_retryable", "attempt", n, "error", lastErr)
			continue
		}
		if retryableStatus(resp.Status) && n < attempts {
			l.Warn("api_request_retryable", "attempt", n, "status", resp.Status)
			continue
		}
		break
	}

	if resp == nil && lastErr == nil {
		lastErr = ctx.Err()
		if lastErr == nil {
			lastErr = errors.New("request was not attempted")
		}
	}
	if lastErr != nil {
		l.Error("api_request_failed", "attempts", n, "error", lastErr)
		return nil, Network(lastErr)
	}

	switch {
	case resp.Status >= 500:
		l.Error("api_request_completed", "status", resp.Status, "attempts", n)
	case resp.Status >= 400:
		l.Warn("api_request_completed", "status", resp.Status, "attempts", n)
	default:
		l.Info("api_request_completed", "status", resp.Status, "attempts", n)
	}

	if resp.Status < 200 || resp.Status > 299 {
		return resp, FromStatus(resp.Status, resp.Body)
	}
	return resp, nil
}

func (c *Client) attempt(ctx context.Context, method, target, requestID string, payload []byte) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	logging.FromContext(ctx).Debug("api_attempt",
		"method", method,
		"status", res.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
		"request_id", requestID,
	)

	return &Response{Status: res.StatusCode, Header: res.Header, Body: data}, nil
}
