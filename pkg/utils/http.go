package utils

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ajkula/jsonraven/pkg/config"
)

const userAgent = "jsonraven/1.0 JSON Injection Harness"

// HTTPClient is the HTTP client used by the headless delivery backend
type HTTPClient struct {
	client *http.Client
	config *config.TargetConfig

	// Pacing
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration

	// Request tracking
	mu           sync.Mutex
	requestCount int64
	totalTime    time.Duration
}

// HTTPResponse is a fully read response with timing metadata
type HTTPResponse struct {
	StatusCode int         `json:"status_code"`
	Header     http.Header `json:"-"`

	// Timing information
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`

	// Request information
	RequestURL    string `json:"request_url"`
	RequestMethod string `json:"request_method"`

	// Body content (limited)
	BodyPreview string `json:"body_preview"` // First 1024 chars
	BodySize    int64  `json:"body_size"`
}

// HTTPError represents an HTTP failure with classification context
type HTTPError struct {
	URL        string        `json:"url"`
	Method     string        `json:"method"`
	StatusCode int           `json:"status_code,omitempty"`
	Duration   time.Duration `json:"duration"`
	Message    string        `json:"message"`
	ErrorType  string        `json:"error_type"` // timeout, connection_refused, dns, tls, status, ...
	Retries    int           `json:"retries"`
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %s %s failed: %s (type: %s, retries: %d)",
		e.Method, e.URL, e.Message, e.ErrorType, e.Retries)
}

// NewHTTPClient creates a new HTTP client for the configured target
func NewHTTPClient(targetConfig *config.TargetConfig, engineConfig *config.EngineConfig) (*HTTPClient, error) {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     30 * time.Second,
		TLSClientConfig:     createTLSConfig(targetConfig),
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   engineConfig.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if engineConfig.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(engineConfig.RateLimit), engineConfig.RateLimit)
	}

	return &HTTPClient{
		client:     client,
		config:     targetConfig,
		limiter:    limiter,
		maxRetries: engineConfig.MaxRetries,
		retryDelay: engineConfig.RetryDelay,
	}, nil
}

// Get performs an HTTP GET request
func (hc *HTTPClient) Get(ctx context.Context, url string) (*HTTPResponse, error) {
	return hc.Do(ctx, http.MethodGet, url, nil, nil)
}

// Post performs an HTTP POST request
func (hc *HTTPClient) Post(ctx context.Context, url string, body []byte, headers map[string]string) (*HTTPResponse, error) {
	return hc.Do(ctx, http.MethodPost, url, body, headers)
}

// Do performs an HTTP request with optional retries.
// Status codes are returned as-is; callers decide what counts as failure.
func (hc *HTTPClient) Do(ctx context.Context, method, url string, body []byte, headers map[string]string) (*HTTPResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= hc.maxRetries; attempt++ {
		if err := hc.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, &HTTPError{
				URL:       url,
				Method:    method,
				Message:   err.Error(),
				ErrorType: "request_creation",
				Retries:   attempt,
			}
		}

		hc.setRequestHeaders(req, headers)

		startTime := time.Now()
		resp, err := hc.client.Do(req)
		duration := time.Since(startTime)
		hc.track(duration)

		if err != nil {
			errorType := classifyHTTPError(err)
			lastErr = &HTTPError{
				URL:       url,
				Method:    method,
				Duration:  duration,
				Message:   err.Error(),
				ErrorType: errorType,
				Retries:   attempt,
			}

			if shouldRetry(errorType) && attempt < hc.maxRetries {
				select {
				case <-time.After(time.Duration(attempt+1) * hc.retryDelay):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
				continue
			}

			return nil, lastErr
		}

		return readResponse(resp, req, startTime, duration)
	}

	return nil, lastErr
}

// setRequestHeaders applies target headers, call headers and authentication
func (hc *HTTPClient) setRequestHeaders(req *http.Request, additionalHeaders map[string]string) {
	req.Header.Set("User-Agent", userAgent)

	for key, value := range hc.config.Headers {
		req.Header.Set(key, value)
	}

	for key, value := range additionalHeaders {
		req.Header.Set(key, value)
	}

	hc.addAuthentication(req)

	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "*/*")
	}
}

// addAuthentication adds authentication headers based on configuration
func (hc *HTTPClient) addAuthentication(req *http.Request) {
	switch hc.config.Auth.Type {
	case "basic":
		if hc.config.Auth.Username != "" && hc.config.Auth.Password != "" {
			req.SetBasicAuth(hc.config.Auth.Username, hc.config.Auth.Password)
		}
	case "bearer":
		if hc.config.Auth.Token != "" {
			req.Header.Set("Authorization", "Bearer "+hc.config.Auth.Token)
		}
	case "custom":
		for key, value := range hc.config.Auth.CustomHeaders {
			req.Header.Set(key, value)
		}
	}
}

func readResponse(resp *http.Response, req *http.Request, startTime time.Time, duration time.Duration) (*HTTPResponse, error) {
	defer resp.Body.Close()

	out := &HTTPResponse{
		StatusCode:    resp.StatusCode,
		Header:        resp.Header,
		StartTime:     startTime,
		Duration:      duration,
		RequestURL:    req.URL.String(),
		RequestMethod: req.Method,
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	out.BodySize = int64(len(bodyBytes))
	if len(bodyBytes) > 1024 {
		out.BodyPreview = string(bodyBytes[:1024]) + "..."
	} else {
		out.BodyPreview = string(bodyBytes)
	}

	return out, nil
}

func (hc *HTTPClient) track(d time.Duration) {
	hc.mu.Lock()
	hc.requestCount++
	hc.totalTime += d
	hc.mu.Unlock()
}

// GetStats returns the request count and average request time
func (hc *HTTPClient) GetStats() (int64, time.Duration) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	if hc.requestCount == 0 {
		return 0, 0
	}
	return hc.requestCount, hc.totalTime / time.Duration(hc.requestCount)
}

// Close releases idle connections
func (hc *HTTPClient) Close() {
	hc.client.CloseIdleConnections()
}

// createTLSConfig creates TLS configuration based on target settings
func createTLSConfig(target *config.TargetConfig) *tls.Config {
	return &tls.Config{
		InsecureSkipVerify: target.TLS.InsecureSkipVerify,
	}
}

// classifyHTTPError classifies HTTP errors for retry logic
func classifyHTTPError(err error) string {
	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "context canceled"):
		return "canceled"
	case strings.Contains(errStr, "timeout"), strings.Contains(errStr, "deadline exceeded"):
		return "timeout"
	case strings.Contains(errStr, "connection refused"):
		return "connection_refused"
	case strings.Contains(errStr, "no such host"):
		return "dns"
	case strings.Contains(errStr, "tls"):
		return "tls"
	case strings.Contains(errStr, "certificate"):
		return "certificate"
	default:
		return "unknown"
	}
}

// shouldRetry determines if an error type should trigger a retry
func shouldRetry(errorType string) bool {
	switch errorType {
	case "timeout", "connection_refused", "unknown":
		return true
	}
	return false
}
