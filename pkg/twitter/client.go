package twitter

import (
	"context"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	errs "twtimg/pkg/errors"
	"twtimg/pkg/logger"
	"twtimg/pkg/ratelimit"
)

// ClientConfig holds everything a Client needs. Zero values fall back to defaults.
type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	// Limiter paces timeline requests; image downloads are not paced
	Limiter ratelimit.Limiter
}

// Client talks to the Twitter v1.1 REST API with an app-only bearer token
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    ratelimit.Limiter
	token      *oauth2.Token
	logger     logger.Logger
}

// NewClient creates a new Twitter API client
func NewClient(cfg ClientConfig, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	limiter := cfg.Limiter
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		userAgent:  cfg.UserAgent,
		limiter:    limiter,
		logger:     log,
	}
}

// SetToken installs a bearer token obtained elsewhere
func (c *Client) SetToken(token *oauth2.Token) {
	c.token = token
}

// Token returns the bearer token, or nil before FetchBearerToken succeeded
func (c *Client) Token() *oauth2.Token {
	return c.token
}

// BaseURL returns the API base the client targets
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doRequest sends req, attaching the bearer token when authorized is set.
// Transport failures come back as network errors; any HTTP status is returned as-is.
func (c *Client) doRequest(req *http.Request, authorized bool) (*http.Response, error) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if authorized && c.token != nil {
		c.token.SetAuthHeader(req)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.WarnWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errs.New(errs.ErrorTypeNetwork, 0, err, "request to %s failed", req.URL.Host)
	}

	logger.LogRequest(c.logger, req.Method, req.URL.String(), resp.StatusCode, duration)
	return resp, nil
}

func (c *Client) get(ctx context.Context, url string, authorized bool) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeUnknown, 0, err, "failed to create request")
	}
	return c.doRequest(req, authorized)
}

// OpenImage fetches mediaURL at the given size variant.
// On 200 the caller owns the returned body. Any other status yields a nil body and
// that status with a nil error, since the caller drops those images silently.
func (c *Client) OpenImage(ctx context.Context, mediaURL, size string) (io.ReadCloser, int, error) {
	resp, err := c.get(ctx, ImageURL(mediaURL, size), false)
	if err != nil {
		return nil, 0, err
	}

	if resp.StatusCode != http.StatusOK {
		drainAndClose(resp.Body)
		return nil, resp.StatusCode, nil
	}
	return resp.Body, resp.StatusCode, nil
}

// bodyPreview reads a bounded prefix of an error response for diagnostics
func bodyPreview(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, 200))
	return string(data)
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	body.Close()
}

func statusError(status int, preview string) *errs.Error {
	return errs.New(errs.ClassifyStatus(status), status, nil, "unexpected status %d: %s", status, preview)
}
