// Package browser implements the delivery backend on a real Chromium through go-rod.
//
// A harness page is opened at the configured origin. The target window, the
// local storage writes and the hidden forms all originate from that page.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"

	"github.com/ajkula/jsonraven/pkg/delivery"
)

// Config controls how the browser is reached
type Config struct {
	ControlURL string
	Bin        string
	Headless   bool
	NoSandbox  bool

	// Page hosting the harness; see HarnessURL
	OriginURL string
	TargetURL string
}

const blankPage = "about:blank"

// HarnessURL picks the page the harness runs on. Opaque origins such as
// about:blank have no local storage, so an empty or blank origin falls back
// to the target's own origin.
func HarnessURL(originURL, targetURL string) string {
	if originURL != "" && originURL != blankPage {
		return originURL
	}
	if origin := delivery.OriginOf(targetURL); origin != "" {
		return origin + "/"
	}
	return blankPage
}

// Session is a connected browser with one harness page
type Session struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	log      zerolog.Logger

	// serializes evaluations on the harness page
	mu     sync.Mutex
	formID atomic.Uint64
}

// Launch connects to cfg.ControlURL, or starts a local browser when it is empty
func Launch(ctx context.Context, cfg Config, log zerolog.Logger) (*Session, error) {
	s := &Session{log: log}

	controlURL := cfg.ControlURL
	if controlURL == "" {
		l := launcher.New().Headless(cfg.Headless).NoSandbox(cfg.NoSandbox)
		if cfg.Bin != "" {
			l = l.Bin(cfg.Bin)
		}
		u, err := l.Context(ctx).Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		s.launcher = l
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	s.browser = browser

	origin := HarnessURL(cfg.OriginURL, cfg.TargetURL)
	if origin == blankPage {
		log.Warn().Msg("Harness page has an opaque origin; local storage writes will fail")
	}
	page, err := browser.Page(proto.TargetCreateTarget{URL: origin})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to open harness page: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		s.Close()
		return nil, fmt.Errorf("harness page did not load: %w", err)
	}
	s.page = page

	log.Debug().Str("control_url", controlURL).Str("origin", origin).Msg("Browser session ready")
	return s, nil
}

// Close disconnects and, for launched browsers, kills the process
func (s *Session) Close() error {
	var err error
	if s.browser != nil {
		err = s.browser.Close()
	}
	s.cleanup()
	return err
}

func (s *Session) cleanup() {
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher.Cleanup()
	}
}

// eval runs js on the harness page as a user gesture
func (s *Session) eval(ctx context.Context, js string, args ...interface{}) (*proto.RuntimeRemoteObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page.Context(ctx).Evaluate(rod.Eval(js, args...).ByUser())
}

// Open calls window.open on the harness page and keeps the returned window by name
func (s *Session) Open(ctx context.Context, url, name string) (delivery.TargetHandle, error) {
	res, err := s.eval(ctx, openWindowJS, url, name)
	if err != nil {
		return nil, err
	}
	if !res.Value.Bool() {
		// popup blocked
		return nil, nil
	}
	return &windowHandle{session: s, name: name}, nil
}

type windowHandle struct {
	session *Session
	name    string
}

func (h *windowHandle) PostMessage(ctx context.Context, message, targetOrigin string) error {
	_, err := h.session.eval(ctx, postMessageJS, h.name, message, targetOrigin)
	return evalError(err)
}

// SetItem writes to the harness page's localStorage
func (s *Session) SetItem(ctx context.Context, key, value string) error {
	_, err := s.eval(ctx, setItemJS, key, value)
	return evalError(err)
}

// CreateForm appends a hidden form to the harness document
func (s *Session) CreateForm(ctx context.Context, spec delivery.HiddenForm) (delivery.Form, error) {
	id := fmt.Sprintf("jsonraven-form-%d", s.formID.Add(1))
	_, err := s.eval(ctx, createFormJS, id, spec.Method, spec.Action, spec.Target, spec.Field, spec.Value)
	if err != nil {
		return nil, evalError(err)
	}
	return &domForm{session: s, id: id}, nil
}

type domForm struct {
	session *Session
	id      string
}

func (f *domForm) Submit(ctx context.Context) error {
	_, err := f.session.eval(ctx, submitFormJS, f.id)
	return evalError(err)
}

func (f *domForm) Remove(ctx context.Context) error {
	_, err := f.session.eval(ctx, removeFormJS, f.id)
	return evalError(err)
}

// evalError keeps the page exception text and drops the CDP noise
func evalError(err error) error {
	var evalErr *rod.EvalError
	if errors.As(err, &evalErr) && evalErr.Exception != nil {
		return errors.New(evalErr.Exception.Description)
	}
	return err
}
