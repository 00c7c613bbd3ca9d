package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"luxstay/models"
	"luxstay/services/session"
	"luxstay/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	// RefreshPath is the token refresh endpoint.
	RefreshPath = "/refresh-token"

	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 8 << 20
)

// Client calls the remote booking API. Authenticated calls carry the access
// token from the session store and recover from a 401 with at most one
// token refresh and one retry.
type Client struct {
	baseURL    string
	http       *http.Client
	store      session.Store
	logger     *zap.Logger
	limiter    *rate.Limiter
	metrics    *Metrics
	now        func() time.Time
	expirySkew time.Duration

	// refreshTimeout bounds the shared refresh and session writes that
	// outlive a cancelled caller.
	refreshTimeout time.Duration

	refreshGroup singleflight.Group
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every outbound call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
			c.refreshTimeout = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRateLimit throttles outbound calls to perSec with the given burst.
func WithRateLimit(perSec float64, burst int) Option {
	return func(c *Client) {
		if perSec > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithClock is used by tests to pin token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func NewClient(baseURL string, store session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		http:       &http.Client{Timeout: defaultTimeout},
		store:      store,
		logger:     zap.NewNop(),
		metrics:    NewMetrics(nil),
		now:        time.Now,
		expirySkew: 5 * time.Second,

		refreshTimeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends req and returns the buffered 2xx response.
//
// On a 401 for an authenticated request: without a refresh token the call
// fails with ErrUnauthorized; otherwise the token is refreshed once and the
// call retried once. If the refresh fails or the retry is rejected again the
// session is cleared and ErrSessionInvalid returned. Other failures are
// never retried. A caller that gives up while a refresh is in flight gets a
// TransportError; the refresh itself runs to completion.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	var sess models.Session
	if req.Auth {
		var err error
		sess, err = c.store.Load(ctx)
		if err != nil {
			c.logger.Warn("Session store unavailable, sending without credentials", zap.Error(err))
		}
	}

	token := sess.AccessToken
	refreshed := false
	if req.Auth && sess.RefreshToken != "" && utils.TokenExpired(token, c.now(), c.expirySkew) {
		c.logger.Debug("Access token expired, refreshing before call", zap.String("route", req.route()))
		next, err := c.refresh(ctx, sess)
		if err != nil {
			return nil, err
		}
		token, refreshed = next, true
	}

	resp, err := c.send(ctx, req, token)
	if err != nil {
		return nil, err
	}
	if !req.Auth || resp.Status != http.StatusUnauthorized {
		return check(resp)
	}

	if refreshed {
		return nil, c.invalidate(ctx, errors.New("fresh access token rejected"))
	}
	if sess.RefreshToken == "" {
		return nil, ErrUnauthorized
	}

	token, err = c.refresh(ctx, sess)
	if err != nil {
		return nil, err
	}
	resp, err = c.send(ctx, req, token)
	if err != nil {
		return nil, err
	}
	if resp.Status == http.StatusUnauthorized {
		return nil, c.invalidate(ctx, errors.New("retried call rejected"))
	}
	return check(resp)
}

// DoEnvelope sends req and decodes the {result, data} envelope into data.
func (c *Client) DoEnvelope(ctx context.Context, req *Request, data any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	_, err = resp.Envelope(data)
	return err
}

func check(resp *Response) (*Response, error) {
	if resp.Status >= 200 && resp.Status < 300 {
		return resp, nil
	}
	return nil, &APIError{Status: resp.Status, Message: errorMessage(resp.Body)}
}

// refresh returns the access token to use in place of the one sess holds.
// When another call has already rotated the stored tokens those are reused.
// Concurrent callers holding the same refresh token share one round-trip,
// which is detached from their contexts.
func (c *Client) refresh(ctx context.Context, sess models.Session) (string, error) {
	if current, err := c.store.Load(ctx); err == nil {
		switch {
		case current.AccessToken == "":
			return "", fmt.Errorf("%w: signed out", ErrSessionInvalid)
		case current.AccessToken != sess.AccessToken:
			c.logger.Debug("Tokens already rotated, reusing stored access token")
			return current.AccessToken, nil
		case current.RefreshToken != "":
			sess = current
		}
	}

	ch := c.refreshGroup.DoChan(sess.RefreshToken, func() (any, error) {
		rctx, cancel := c.detach(ctx)
		defer cancel()
		return c.doRefresh(rctx, sess.RefreshToken)
	})
	select {
	case <-ctx.Done():
		return "", &TransportError{Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		if res.Shared {
			c.logger.Debug("Joined in-flight token refresh")
		}
		return res.Val.(string), nil
	}
}

func (c *Client) doRefresh(ctx context.Context, refreshToken string) (string, error) {
	req, _ := NewRequest(http.MethodPost, RefreshPath, nil)
	resp, err := c.send(ctx, req, refreshToken)
	if err != nil {
		c.metrics.refreshes.WithLabelValues("transport_error").Inc()
		return c.refreshFailed(ctx, refreshToken, fmt.Errorf("refresh: %w", err))
	}
	if resp.Status < 200 || resp.Status >= 300 {
		c.metrics.refreshes.WithLabelValues("rejected").Inc()
		return c.refreshFailed(ctx, refreshToken, fmt.Errorf("refresh: status %d", resp.Status))
	}
	var pair models.TokenPair
	if _, err := resp.Envelope(&pair); err != nil {
		c.metrics.refreshes.WithLabelValues("rejected").Inc()
		return c.refreshFailed(ctx, refreshToken, fmt.Errorf("refresh: %w", err))
	}
	if pair.AccessToken == "" {
		c.metrics.refreshes.WithLabelValues("rejected").Inc()
		return c.refreshFailed(ctx, refreshToken, errors.New("refresh: no access token returned"))
	}

	current, ok, err := c.store.Rotate(ctx, refreshToken, pair)
	if err != nil {
		// The new token is still usable for this call.
		c.logger.Error("Failed to persist refreshed tokens", zap.Error(err))
		c.metrics.refreshes.WithLabelValues("ok").Inc()
		return pair.AccessToken, nil
	}
	if !ok {
		c.metrics.refreshes.WithLabelValues("discarded").Inc()
		if current.AccessToken == "" {
			c.logger.Info("Session cleared during token refresh, discarding new tokens")
			return "", fmt.Errorf("%w: signed out during refresh", ErrSessionInvalid)
		}
		c.logger.Info("Session replaced during token refresh, using stored tokens")
		return current.AccessToken, nil
	}
	c.metrics.refreshes.WithLabelValues("ok").Inc()
	c.logger.Info("Access token refreshed")
	return pair.AccessToken, nil
}

// refreshFailed clears the session unless it no longer holds the refresh
// token that failed. A session rotated by another call is adopted.
func (c *Client) refreshFailed(ctx context.Context, refreshToken string, cause error) (string, error) {
	current, err := c.store.Load(ctx)
	if err == nil && current.RefreshToken != refreshToken {
		if current.AccessToken != "" {
			c.logger.Info("Refresh token already rotated, using stored tokens", zap.Error(cause))
			return current.AccessToken, nil
		}
		return "", fmt.Errorf("%w: %v", ErrSessionInvalid, cause)
	}
	return "", c.invalidate(ctx, cause)
}

// invalidate clears the session and returns ErrSessionInvalid. The clear
// runs even when ctx is already done.
func (c *Client) invalidate(ctx context.Context, cause error) error {
	c.metrics.invalidation.Inc()
	c.logger.Warn("Clearing session after failed token refresh", zap.Error(cause))
	cctx, cancel := c.detach(ctx)
	defer cancel()
	if err := c.store.Clear(cctx); err != nil {
		c.logger.Error("Failed to clear session", zap.Error(err))
	}
	return fmt.Errorf("%w: %v", ErrSessionInvalid, cause)
}

func (c *Client) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout)
}

func (c *Client) send(ctx context.Context, req *Request, bearer string) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Err: err}
		}
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	} else {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+bearer)
	}
	requestID := uuid.New().String()
	httpReq.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	elapsed := time.Since(start)
	c.metrics.duration.WithLabelValues(req.Method, req.route()).Observe(elapsed.Seconds())
	if err != nil {
		c.metrics.requests.WithLabelValues(req.Method, req.route(), "error").Inc()
		c.logger.Warn("API call failed",
			zap.String("method", req.Method),
			zap.String("route", req.route()),
			zap.String("requestID", requestID),
			zap.Error(err))
		return nil, &TransportError{Err: err}
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		c.metrics.requests.WithLabelValues(req.Method, req.route(), "error").Inc()
		return nil, &TransportError{Err: err}
	}
	c.metrics.requests.WithLabelValues(req.Method, req.route(), strconv.Itoa(httpResp.StatusCode)).Inc()
	c.logger.Debug("API call",
		zap.String("method", req.Method),
		zap.String("route", req.route()),
		zap.Int("status", httpResp.StatusCode),
		zap.Duration("elapsed", elapsed),
		zap.String("requestID", requestID))

	return &Response{Status: httpResp.StatusCode, Header: httpResp.Header, Body: data}, nil
}
