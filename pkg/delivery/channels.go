package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ajkula/jsonraven/pkg/payloads"
)

// Channel names
const (
	ChannelMessaging = "messaging"
	ChannelStorage   = "storage"
	ChannelForm      = "form"
	ChannelSocket    = "socket"
)

// Channel is one independent transport used to deliver a payload.
// Only the primary channel's failure is recorded against a case.
type Channel interface {
	Name() string
	Primary() bool
	Deliver(ctx context.Context, index int, c payloads.Case) error
}

// spawnFunc runs fn in the background; its error is absorbed
type spawnFunc func(ctx context.Context, channel string, index int, fn func(ctx context.Context) error)

// messagingChannel posts the raw payload to the target handle
type messagingChannel struct {
	handle TargetHandle
	origin string
}

func (c *messagingChannel) Name() string  { return ChannelMessaging }
func (c *messagingChannel) Primary() bool { return true }

func (c *messagingChannel) Deliver(ctx context.Context, _ int, pc payloads.Case) error {
	return c.handle.PostMessage(ctx, pc.Payload, c.origin)
}

// storageChannel writes the payload under a fixed key
type storageChannel struct {
	store Storage
	key   string
}

func (c *storageChannel) Name() string  { return ChannelStorage }
func (c *storageChannel) Primary() bool { return false }

func (c *storageChannel) Deliver(ctx context.Context, _ int, pc payloads.Case) error {
	return c.store.SetItem(ctx, c.key, pc.Payload)
}

// formChannel builds a hidden POST form, then submits and removes it after a short delay
type formChannel struct {
	doc      Document
	clock    Clock
	settings Settings
	spawn    spawnFunc
}

func (c *formChannel) Name() string  { return ChannelForm }
func (c *formChannel) Primary() bool { return false }

func (c *formChannel) Deliver(ctx context.Context, index int, pc payloads.Case) error {
	form, err := c.doc.CreateForm(ctx, HiddenForm{
		Method: "POST",
		Action: c.settings.TargetURL,
		Target: c.settings.TargetName,
		Field:  c.settings.VulnerableParam,
		Value:  pc.Payload,
	})
	if err != nil {
		return fmt.Errorf("failed to create form: %w", err)
	}

	c.spawn(ctx, ChannelForm, index, func(bctx context.Context) error {
		if err := c.clock.Sleep(bctx, c.settings.FormSubmitDelay); err != nil {
			return errors.Join(err, form.Remove(bctx))
		}
		submitErr := form.Submit(bctx)
		return errors.Join(submitErr, form.Remove(bctx))
	})
	return nil
}

// socketChannel sends {param: payload} over a short-lived socket connection
type socketChannel struct {
	dialer   SocketDialer
	endpoint string
	param    string
	spawn    spawnFunc
}

func (c *socketChannel) Name() string  { return ChannelSocket }
func (c *socketChannel) Primary() bool { return false }

func (c *socketChannel) Deliver(ctx context.Context, index int, pc payloads.Case) error {
	if c.endpoint == "" {
		return fmt.Errorf("no socket endpoint")
	}
	body, err := json.Marshal(map[string]string{c.param: pc.Payload})
	if err != nil {
		return fmt.Errorf("failed to encode socket message: %w", err)
	}

	c.spawn(ctx, ChannelSocket, index, func(bctx context.Context) error {
		conn, err := c.dialer.Dial(bctx, c.endpoint)
		if err != nil {
			return err
		}
		defer conn.Close()
		return conn.Send(bctx, body)
	})
	return nil
}

// buildChannels assembles the channels available for this run, primary first
func (t *Tester) buildChannels(handle TargetHandle) []Channel {
	channels := []Channel{
		&messagingChannel{handle: handle, origin: t.settings.TargetOrigin},
	}
	if t.deps.Storage != nil {
		channels = append(channels, &storageChannel{store: t.deps.Storage, key: t.settings.StorageKey})
	}
	if t.deps.Document != nil {
		channels = append(channels, &formChannel{doc: t.deps.Document, clock: t.clock, settings: t.settings, spawn: t.spawn})
	}
	if t.deps.Sockets != nil {
		channels = append(channels, &socketChannel{
			dialer:   t.deps.Sockets,
			endpoint: t.settings.SocketEndpoint,
			param:    t.settings.VulnerableParam,
			spawn:    t.spawn,
		})
	}
	return channels
}
