// Package highlight implements the click-to-highlight state machine.
//
// A [Controller] owns a single highlight slot. It is either Idle, or
// Highlighted with exactly one feature and the style that feature had before
// it was emphasized. Events move it between the two states:
//
//	Idle            --hit f-->  Highlighted(f)  emphasize f
//	Highlighted(f)  --hit f-->  Highlighted(f)  nothing restyled
//	Highlighted(f)  --hit g-->  Highlighted(g)  restore f, emphasize g
//	Highlighted(f)  --miss--->  Idle            restore f
//
// Restoring a feature that has since been removed is silently skipped.
//
// A Controller belongs to one session and is not safe for concurrent use;
// the session serializes events.
package highlight

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/thermogrid/pkg/feature"
	"github.com/matzehuels/thermogrid/pkg/observability"
	"github.com/matzehuels/thermogrid/pkg/pick"
	"github.com/matzehuels/thermogrid/pkg/style"
)

// State is the controller state.
type State int

const (
	Idle State = iota
	Highlighted
)

func (s State) String() string {
	if s == Highlighted {
		return "highlighted"
	}
	return "idle"
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "idle":
		*s = Idle
	case "highlighted":
		*s = Highlighted
	default:
		return fmt.Errorf("unknown highlight state %q", b)
	}
	return nil
}

// Styler reads and applies per-feature styles. Both methods report false for
// features that no longer exist. [style.Sheet] implements it.
type Styler interface {
	Style(f *feature.Feature) (*style.Spec, bool)
	SetStyle(f *feature.Feature, s *style.Spec) bool
}

// Picker resolves a pixel to the topmost eligible feature.
// [pick.Picker] implements it.
type Picker interface {
	PickAt(ctx context.Context, px pick.Pixel) (pick.Hit, bool)
}

// Transition describes the effect of one event.
type Transition struct {
	From, To State
	// Previous is the feature highlighted before the event, if any.
	Previous *feature.Feature
	// Current is the feature highlighted after the event, if any.
	Current *feature.Feature
	// Layer is the layer Current was picked from.
	Layer *feature.Layer
	// Restored reports whether Previous got its saved style back.
	Restored bool
	// Changed is false when the event left everything as it was.
	Changed bool
}

// Controller is the highlight state machine of one session.
type Controller struct {
	picker    Picker
	styler    Styler
	emphasize func(*style.Spec) *style.Spec
	logger    *log.Logger

	current *feature.Feature
	layer   *feature.Layer
	saved   *style.Spec
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for transition debug output.
func WithLogger(l *log.Logger) Option { return func(c *Controller) { c.logger = l } }

// WithEmphasis replaces [style.Emphasize] as the highlight style.
func WithEmphasis(fn func(*style.Spec) *style.Spec) Option {
	return func(c *Controller) { c.emphasize = fn }
}

// New returns an idle controller.
func New(p Picker, s Styler, opts ...Option) *Controller {
	c := &Controller{picker: p, styler: s, emphasize: style.Emphasize}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	if c.current != nil {
		return Highlighted
	}
	return Idle
}

// Current returns the highlighted feature and its layer.
func (c *Controller) Current() (pick.Hit, bool) {
	if c.current == nil {
		return pick.Hit{}, false
	}
	return pick.Hit{Feature: c.current, Layer: c.layer}, true
}

// Saved returns the base style the highlighted feature will be restored to.
func (c *Controller) Saved() *style.Spec { return c.saved }

// Click handles a click at px: a hit highlights the picked feature, a miss
// clears the highlight.
func (c *Controller) Click(ctx context.Context, px pick.Pixel) Transition {
	hit, ok := c.picker.PickAt(ctx, px)
	if !ok {
		return c.Leave(ctx)
	}
	return c.Select(ctx, hit)
}

// Select highlights hit.Feature as if it had been clicked.
func (c *Controller) Select(ctx context.Context, hit pick.Hit) Transition {
	if hit.Feature == nil {
		return c.Leave(ctx)
	}
	t := Transition{From: c.State(), Previous: c.current}
	if hit.Feature == c.current {
		t.To, t.Current, t.Layer = Highlighted, c.current, c.layer
		return t
	}

	t.Restored = c.restore()
	t.Changed = true

	base, ok := c.styler.Style(hit.Feature)
	if !ok {
		// The feature vanished between picking and styling.
		t.To = Idle
		c.emit(ctx, t)
		return t
	}
	c.styler.SetStyle(hit.Feature, c.emphasize(base))
	c.current, c.layer, c.saved = hit.Feature, hit.Layer, base

	t.To, t.Current, t.Layer = Highlighted, hit.Feature, hit.Layer
	c.emit(ctx, t)
	return t
}

// Leave clears the highlight, restoring the saved style. It handles both a
// click that hit nothing and the pointer leaving all eligible targets.
func (c *Controller) Leave(ctx context.Context) Transition {
	t := Transition{From: c.State(), To: Idle, Previous: c.current}
	if c.current == nil {
		return t
	}
	t.Restored = c.restore()
	t.Changed = true
	c.emit(ctx, t)
	return t
}

// Reset returns the controller to Idle on session teardown.
func (c *Controller) Reset(ctx context.Context) {
	c.Leave(ctx)
}

func (c *Controller) restore() bool {
	if c.current == nil {
		return false
	}
	ok := c.styler.SetStyle(c.current, c.saved)
	c.current, c.layer, c.saved = nil, nil, nil
	return ok
}

func (c *Controller) emit(ctx context.Context, t Transition) {
	c.logger.Debug("highlight transition", "from", t.From, "to", t.To, "restored", t.Restored)
	observability.Interaction().OnTransition(ctx, t.From.String(), t.To.String(), t.Restored)
}
