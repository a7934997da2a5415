package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"golang.org/x/net/websocket"

	"github.com/ajkula/jsonraven/pkg/delivery"
)

const fallbackOrigin = "http://localhost/"

// WebSocketDialer opens short-lived text-frame connections
type WebSocketDialer struct {
	origin   string
	insecure bool
}

// NewWebSocketDialer creates a dialer that presents origin in the handshake
func NewWebSocketDialer(origin string, insecureSkipVerify bool) *WebSocketDialer {
	if origin == "" {
		origin = fallbackOrigin
	}
	return &WebSocketDialer{origin: origin, insecure: insecureSkipVerify}
}

// Dial connects to endpoint
func (d *WebSocketDialer) Dial(ctx context.Context, endpoint string) (delivery.SocketConn, error) {
	cfg, err := websocket.NewConfig(endpoint, d.origin)
	if err != nil {
		return nil, fmt.Errorf("invalid socket endpoint: %w", err)
	}
	if d.insecure {
		cfg.TlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	conn, err := cfg.DialContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", endpoint, err)
	}
	return &wsConn{conn: conn}, nil
}

type wsConn struct {
	conn *websocket.Conn
}

// Send writes data as a single text frame
func (c *wsConn) Send(ctx context.Context, data []byte) error {
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(deadline)
		defer c.conn.SetWriteDeadline(time.Time{})
	}
	return websocket.Message.Send(c.conn, string(data))
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}
