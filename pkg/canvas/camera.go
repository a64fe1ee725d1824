package canvas

import (
	"time"

	"github.com/charmbracelet/log"
)

// DefaultRetryDelay is how long the camera waits for a shape's bounds to
// become available before giving up. Freshly created shapes can take one
// sync tick to get measured bounds, so a single short retry covers the
// common case without polling.
const DefaultRetryDelay = 100 * time.Millisecond

// Camera centers the viewport on shapes. It owns no state beyond its
// configuration; all document access goes through the [Host].
type Camera struct {
	Host Host

	// RetryDelay overrides DefaultRetryDelay; used by tests.
	RetryDelay time.Duration

	// AnimationDuration is passed through to FitViewportToSelection.
	AnimationDuration time.Duration

	// Inset is the margin kept around the centered shape.
	Inset float64

	// Logger, when set, records the silent-skip path at debug level.
	Logger *log.Logger
}

// CenterOn selects the shape and fits the viewport to it. If the shape's
// bounds are not available yet it waits RetryDelay and tries exactly once
// more; if they are still missing the call returns without touching the
// selection or the camera. Callers get no error: a shape that never
// materializes is not worth surfacing to the user as a failure.
func (c *Camera) CenterOn(id string) {
	delay := c.RetryDelay
	if delay <= 0 {
		delay = DefaultRetryDelay
	}

	if _, ok := c.Host.ShapeBounds(id); !ok {
		time.Sleep(delay)
		if _, ok := c.Host.ShapeBounds(id); !ok {
			if c.Logger != nil {
				c.Logger.Debug("shape bounds never became available, skipping camera move", "shape", id)
			}
			return
		}
	}

	ids := []string{id}
	c.Host.SelectShapes(ids)
	c.Host.FitViewportToSelection(ids, FitOptions{
		Duration: c.AnimationDuration,
		Inset:    c.Inset,
	})
}
