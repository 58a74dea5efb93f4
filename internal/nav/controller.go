// Package nav translates raw input events into stack navigation calls.
// Wheel events are throttled to keep fast scrolling from flooding the
// session with loads; key navigation always goes through.
package nav

import (
	"time"

	"github.com/mleroi/dicomstack/internal/viewport"
)

// Stepper is the navigation surface of a session.
type Stepper interface {
	NavigateRelative(delta int)
}

// Controller turns wheel and key input into slice steps.
type Controller struct {
	session  Stepper
	throttle time.Duration
	now      func() time.Time

	lastWheel time.Time
}

// New creates a controller with the given wheel throttle interval. A
// non-positive interval disables throttling.
func New(session Stepper, throttle time.Duration) *Controller {
	return &Controller{
		session:  session,
		throttle: throttle,
		now:      time.Now,
	}
}

// Wheel handles one wheel event. The scroll amount only contributes its
// sign: one event is one slice, regardless of device acceleration.
// Events arriving within the throttle interval of the last accepted one
// are dropped; it reports whether the event was accepted.
func (c *Controller) Wheel(deltaY float64) bool {
	if deltaY == 0 {
		return false
	}
	now := c.now()
	if c.throttle > 0 && !c.lastWheel.IsZero() && now.Sub(c.lastWheel) < c.throttle {
		return false
	}
	c.lastWheel = now

	step := 1
	if deltaY < 0 {
		step = -1
	}
	c.session.NavigateRelative(step)
	return true
}

// Key handles arrow/page navigation. Key input is never throttled.
func (c *Controller) Key(delta int) {
	if delta == 0 {
		return
	}
	c.session.NavigateRelative(delta)
}

var _ Stepper = (*viewport.Session)(nil)
