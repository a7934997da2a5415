package delivery

import (
	"context"
	"time"
)

// WindowProvider opens or acquires a named target browsing context
type WindowProvider interface {
	Open(ctx context.Context, url, name string) (TargetHandle, error)
}

// TargetHandle is an opaque reference to the context under test
type TargetHandle interface {
	PostMessage(ctx context.Context, message, targetOrigin string) error
}

// Storage is a local key-value sink
type Storage interface {
	SetItem(ctx context.Context, key, value string) error
}

// Document builds hidden forms aimed at the target context
type Document interface {
	CreateForm(ctx context.Context, form HiddenForm) (Form, error)
}

// Form is a form attached to a Document
type Form interface {
	Submit(ctx context.Context) error
	Remove(ctx context.Context) error
}

// SocketDialer opens socket connections. A nil dialer means no socket support.
type SocketDialer interface {
	Dial(ctx context.Context, endpoint string) (SocketConn, error)
}

// SocketConn is a single socket connection
type SocketConn interface {
	Send(ctx context.Context, data []byte) error
	Close() error
}

// Reporter presents the summary of a finished run
type Reporter interface {
	Report(ctx context.Context, summary RunSummary) error
}

// Clock abstracts time so runs can be paced deterministically in tests
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

// SystemClock returns a Clock backed by the time package
func SystemClock() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
