package run

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ajkula/jsonraven/pkg/browser"
	"github.com/ajkula/jsonraven/pkg/config"
	"github.com/ajkula/jsonraven/pkg/delivery"
	"github.com/ajkula/jsonraven/pkg/storage"
	"github.com/ajkula/jsonraven/pkg/transport"
	"github.com/ajkula/jsonraven/pkg/utils"
)

// backend holds the delivery dependencies of one run and what must be released after it
type backend struct {
	deps    delivery.Dependencies
	closers []func() error
}

func (b *backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// buildBackend wires the configured backend. Disabled channels get no sink.
func buildBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backend, error) {
	switch cfg.Engine.Backend {
	case "http":
		return buildHTTPBackend(cfg, log)
	case "browser":
		return buildBrowserBackend(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Engine.Backend)
	}
}

func buildHTTPBackend(cfg *config.Config, log zerolog.Logger) (*backend, error) {
	client, err := utils.NewHTTPClient(&cfg.Target, &cfg.Engine)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	b := &backend{closers: []func() error{func() error {
		count, avg := client.GetStats()
		log.Debug().Int64("requests", count).Dur("avg", avg).Msg("HTTP backend closed")
		client.Close()
		return nil
	}}}
	b.deps.Windows = transport.NewHTTPWindows(client, log)

	if cfg.Channels.Storage {
		store, err := storage.Open(cfg.Storage, log)
		if err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("failed to open storage: %w", err)
		}
		b.deps.Storage = store
		b.closers = append(b.closers, store.Close)
	}
	if cfg.Channels.Form {
		b.deps.Document = transport.NewHTTPDocument(client)
	}
	if cfg.Channels.Socket {
		b.deps.Sockets = transport.NewWebSocketDialer(delivery.OriginOf(cfg.Target.URL), cfg.Target.TLS.InsecureSkipVerify)
	}

	return b, nil
}

func buildBrowserBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backend, error) {
	session, err := browser.Launch(ctx, browser.Config{
		ControlURL: cfg.Browser.ControlURL,
		Bin:        cfg.Browser.Bin,
		Headless:   cfg.Browser.Headless,
		NoSandbox:  cfg.Browser.NoSandbox,
		OriginURL:  cfg.Browser.OriginURL,
		TargetURL:  cfg.Target.URL,
	}, log)
	if err != nil {
		return nil, err
	}

	b := &backend{closers: []func() error{session.Close}}
	b.deps.Windows = session

	if cfg.Channels.Storage {
		b.deps.Storage = session
	}
	if cfg.Channels.Form {
		b.deps.Document = session
	}
	if cfg.Channels.Socket {
		origin := delivery.OriginOf(browser.HarnessURL(cfg.Browser.OriginURL, cfg.Target.URL))
		if origin == "" {
			origin = delivery.OriginOf(cfg.Target.URL)
		}
		b.deps.Sockets = transport.NewWebSocketDialer(origin, cfg.Target.TLS.InsecureSkipVerify)
	}

	return b, nil
}
