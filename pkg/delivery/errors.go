package delivery

import (
	"errors"
	"fmt"
)

// ErrTargetUnavailable is returned when the window provider yields no handle (e.g. a blocked popup)
var ErrTargetUnavailable = errors.New("target handle unavailable")

// AcquisitionError aborts a run before any payload is dispatched
type AcquisitionError struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Err  error  `json:"-"`
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("failed to acquire target %q (%s): %v", e.Name, e.URL, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

// ChannelError wraps a failure raised by a single delivery channel
type ChannelError struct {
	Channel string `json:"channel"`
	Case    int    `json:"case"`
	Err     error  `json:"-"`
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("%s channel failed on case %d: %v", e.Channel, e.Case+1, e.Err)
}

func (e *ChannelError) Unwrap() error { return e.Err }

// errorMessage returns the message recorded in a DeliveryResult. It is never empty.
func errorMessage(err error) string {
	var chErr *ChannelError
	if errors.As(err, &chErr) && chErr.Err != nil {
		err = chErr.Err
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "delivery failed"
}
