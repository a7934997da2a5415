// Package transport implements the headless delivery backend over HTTP and WebSocket
package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ajkula/jsonraven/pkg/delivery"
	"github.com/ajkula/jsonraven/pkg/utils"
)

// HTTPWindows opens the target with a GET and posts messages as JSON bodies
type HTTPWindows struct {
	client *utils.HTTPClient
	log    zerolog.Logger
}

// NewHTTPWindows creates a window provider backed by client
func NewHTTPWindows(client *utils.HTTPClient, log zerolog.Logger) *HTTPWindows {
	return &HTTPWindows{client: client, log: log}
}

// Open requests the target. A transport error or a 5xx status means the target is unavailable.
func (w *HTTPWindows) Open(ctx context.Context, targetURL, name string) (delivery.TargetHandle, error) {
	resp, err := w.client.Get(ctx, targetURL)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, &utils.HTTPError{
			URL:        targetURL,
			Method:     http.MethodGet,
			StatusCode: resp.StatusCode,
			Duration:   resp.Duration,
			Message:    fmt.Sprintf("target answered %d", resp.StatusCode),
			ErrorType:  "status",
		}
	}

	w.log.Debug().Str("url", targetURL).Int("status", resp.StatusCode).Dur("took", resp.Duration).Msg("Target acquired")
	return &httpHandle{client: w.client, url: targetURL, name: name, log: w.log}, nil
}

type httpHandle struct {
	client *utils.HTTPClient
	url    string
	name   string
	log    zerolog.Logger
}

// PostMessage sends the raw payload. The response is not inspected.
func (h *httpHandle) PostMessage(ctx context.Context, message, targetOrigin string) error {
	resp, err := h.client.Post(ctx, h.url, []byte(message), map[string]string{
		"Content-Type":    "application/json",
		"X-Target-Origin": targetOrigin,
		"X-Window-Name":   h.name,
	})
	if err != nil {
		return err
	}
	h.log.Debug().Int("status", resp.StatusCode).Msg("Message delivered")
	return nil
}

// HTTPDocument builds forms that are submitted as url-encoded POSTs
type HTTPDocument struct {
	client *utils.HTTPClient
}

// NewHTTPDocument creates a document backed by client
func NewHTTPDocument(client *utils.HTTPClient) *HTTPDocument {
	return &HTTPDocument{client: client}
}

// CreateForm prepares a pending form; nothing is sent until Submit
func (d *HTTPDocument) CreateForm(_ context.Context, spec delivery.HiddenForm) (delivery.Form, error) {
	if spec.Action == "" {
		return nil, fmt.Errorf("form action is required")
	}
	return &httpForm{client: d.client, spec: spec}, nil
}

type httpForm struct {
	client *utils.HTTPClient
	spec   delivery.HiddenForm

	mu      sync.Mutex
	removed bool
}

func (f *httpForm) Submit(ctx context.Context) error {
	f.mu.Lock()
	removed := f.removed
	f.mu.Unlock()
	if removed {
		return fmt.Errorf("form already removed")
	}

	body := url.Values{f.spec.Field: {f.spec.Value}}.Encode()
	_, err := f.client.Do(ctx, f.spec.Method, f.spec.Action, []byte(body), map[string]string{
		"Content-Type":  "application/x-www-form-urlencoded",
		"X-Window-Name": f.spec.Target,
	})
	return err
}

func (f *httpForm) Remove(context.Context) error {
	f.mu.Lock()
	f.removed = true
	f.mu.Unlock()
	return nil
}
