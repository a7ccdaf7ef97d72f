// Package window owns the bubble window's existence, position,
// visibility, and layering. The Controller is a state machine driven
// from the agent's single event loop; the actual popup mechanics live
// behind the Surface interface so the machine is testable without a
// terminal.
package window

import (
	"fmt"

	"github.com/bubblechat/bubblechat/internal/logging/events"
)

// State enumerates the bubble window lifecycle.
type State int

const (
	Uninitialized State = iota
	Loading
	Ready
	Visible
	Hidden
	Errored
	Destroyed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Visible:
		return "visible"
	case Hidden:
		return "hidden"
	case Errored:
		return "errored"
	case Destroyed:
		return "destroyed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// CreateSpec tells the surface what content the bubble hosts: the
// widget pointed at the backend, or a synthesized diagnostic page when
// the load probe failed.
type CreateSpec struct {
	Endpoint   string
	Fallback   bool
	Diagnostic string
}

// Surface performs the platform-side window operations. Implementations
// must be safe to call repeatedly with the same arguments.
type Surface interface {
	// Create brings the window's content into existence without
	// showing it.
	Create(spec CreateSpec) error
	// Show maps the window at the given geometry, raises it above
	// other surfaces, and gives it input focus.
	Show(g Geometry) error
	// Hide unmaps the window, preserving its content.
	Hide() error
	// Destroy tears the window down entirely.
	Destroy() error
}

// Loader produces the create spec for the window content. It must not
// fail: a broken backend yields a fallback spec instead of an error.
type Loader interface {
	Load() CreateSpec
}

// Controller is the bubble window state machine. It is not safe for
// concurrent use; the agent serializes all calls onto one goroutine.
type Controller struct {
	surface Surface
	loader  Loader
	dims    Dimensions

	state State
	area  WorkArea
}

// New builds a controller over the given surface and loader. The
// initial work area may be zero; it is updated by the watcher before
// the first show in practice, and geometry clamps defensively anyway.
func New(surface Surface, loader Loader, dims Dimensions, area WorkArea) *Controller {
	return &Controller{
		surface: surface,
		loader:  loader,
		dims:    dims,
		state:   Uninitialized,
		area:    area,
	}
}

// State reports the current lifecycle state.
func (c *Controller) State() State { return c.state }

// Visible reports whether the bubble is currently mapped.
func (c *Controller) Visible() bool { return c.state == Visible }

// Ensure creates the window content if it does not exist yet. Creation
// failure leaves the controller in Uninitialized so the next
// user-triggered Show or Toggle can retry.
func (c *Controller) Ensure() error {
	switch c.state {
	case Destroyed:
		return fmt.Errorf("window destroyed")
	case Uninitialized, Errored:
	default:
		return nil
	}

	c.transition(Loading)
	spec := c.loader.Load()
	if spec.Fallback {
		// The diagnostic substitute still becomes visible; Errored is
		// a waypoint, not a terminal state.
		c.transition(Errored)
	}
	if err := c.surface.Create(spec); err != nil {
		c.transition(Uninitialized)
		events.Window.EnsureFailed(err)
		return fmt.Errorf("create bubble window: %w", err)
	}
	c.transition(Ready)
	return nil
}

// Show makes the bubble visible: geometry is recomputed against the
// current work area, the window is raised top-most and focused.
// Calling Show while already visible only reinforces position and
// layering.
func (c *Controller) Show() error {
	if c.state == Destroyed {
		return fmt.Errorf("window destroyed")
	}
	if err := c.Ensure(); err != nil {
		return err
	}
	g := ComputeGeometry(c.area, c.dims)
	if err := c.surface.Show(g); err != nil {
		return fmt.Errorf("show bubble window: %w", err)
	}
	events.Window.Show(g.X, g.Y, g.Width, g.Height)
	c.transition(Visible)
	return nil
}

// Hide unmaps the bubble; content and conversation state survive.
// Hiding a window that is not visible is a no-op.
func (c *Controller) Hide() error {
	if c.state != Visible {
		return nil
	}
	if err := c.surface.Hide(); err != nil {
		return fmt.Errorf("hide bubble window: %w", err)
	}
	events.Window.Hide()
	c.transition(Hidden)
	return nil
}

// Toggle flips visibility: visible becomes hidden, anything else
// (creating the window first when needed) becomes visible.
func (c *Controller) Toggle() error {
	if c.state == Visible {
		return c.Hide()
	}
	return c.Show()
}

// Reload tears down the window content and rebuilds it through the
// loader, preserving visibility.
func (c *Controller) Reload() error {
	if c.state == Destroyed {
		return fmt.Errorf("window destroyed")
	}
	wasVisible := c.state == Visible
	if c.state != Uninitialized {
		if err := c.surface.Destroy(); err != nil {
			return fmt.Errorf("reload bubble window: %w", err)
		}
		c.transition(Uninitialized)
	}
	if err := c.Ensure(); err != nil {
		return err
	}
	if wasVisible {
		return c.Show()
	}
	return nil
}

// SetWorkArea records a display-configuration change. A visible bubble
// is repositioned in place; visibility never changes here.
func (c *Controller) SetWorkArea(area WorkArea) error {
	if area == c.area {
		return nil
	}
	c.area = area
	if c.state != Visible {
		return nil
	}
	g := ComputeGeometry(c.area, c.dims)
	if err := c.surface.Show(g); err != nil {
		return fmt.Errorf("reposition bubble window: %w", err)
	}
	events.Window.Reposition(g.X, g.Y, g.Width, g.Height)
	return nil
}

// SyncVisibility reconciles the machine with the actual mapped state
// reported by the watcher, e.g. after the user dismisses the popup
// directly.
func (c *Controller) SyncVisibility(mapped bool) {
	switch {
	case c.state == Visible && !mapped:
		c.transition(Hidden)
	case c.state == Hidden && mapped:
		c.transition(Visible)
	}
}

// Destroy tears the window down for good. Only an explicit quit should
// reach here; afterwards every operation fails.
func (c *Controller) Destroy() {
	if c.state == Destroyed {
		return
	}
	if c.state != Uninitialized {
		if err := c.surface.Destroy(); err != nil {
			events.Window.EnsureFailed(err)
		}
	}
	events.Window.Destroy()
	c.transition(Destroyed)
}

func (c *Controller) transition(to State) {
	if c.state == to {
		return
	}
	events.Window.Transition(c.state.String(), to.String())
	c.state = to
}
