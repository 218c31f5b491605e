// Package session manages per-viewer interaction sessions.
//
// Every map viewer connected to the service gets its own [Session]: a style
// sheet holding the styles currently applied to its features and a highlight
// controller owning its highlight slot. Layers and breakpoint tables are
// shared, read-only configuration; only the sheet and the controller are
// per-session.
//
// Events for one session must not interleave. [Session.Do] serializes them
// with a per-session mutex, so the controller itself stays lock-free.
//
// # Usage
//
//	store := session.NewMemoryStore()
//	sess := session.New(picker, session.NewSheet(canvas, styles), session.DefaultTTL)
//	store.Set(ctx, sess)
//
//	err := sess.Do(func(s *session.Session) error {
//	    t := s.Controller().Click(ctx, px)
//	    // ...
//	    return nil
//	})
//
//	store.Delete(ctx, sess.ID) // resets the highlight and drops the session
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/thermogrid/pkg/feature"
	"github.com/matzehuels/thermogrid/pkg/highlight"
	"github.com/matzehuels/thermogrid/pkg/pick"
	"github.com/matzehuels/thermogrid/pkg/style"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("session expired")
)

// DefaultTTL is the default session lifetime.
const DefaultTTL = 2 * time.Hour

// Session is one viewer's interaction state.
type Session struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time

	mu    sync.Mutex
	sheet *style.Sheet
	ctrl  *highlight.Controller
}

// New creates a session with a fresh random ID. The controller picks through
// p and styles through sheet.
func New(p highlight.Picker, sheet *style.Sheet, ttl time.Duration, opts ...highlight.Option) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		sheet:     sheet,
		ctrl:      highlight.New(p, sheet, opts...),
	}
}

// NewSheet returns a style sheet with every canvas layer registered under
// its style callback. Layers without a callback draw with [style.Base].
func NewSheet(c *pick.Canvas, styles map[string]style.Func) *style.Sheet {
	sheet := style.NewSheet()
	for _, l := range c.Layers() {
		fn, ok := styles[l.Name]
		if !ok {
			fn = style.Static(style.Base)
		}
		sheet.AddLayer(l, fn)
	}
	return sheet
}

// IsExpired reports whether the session has outlived its TTL.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Do runs fn while holding the session lock.
func (s *Session) Do(fn func(*Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s)
}

// Controller returns the highlight controller. Use it only inside [Session.Do].
func (s *Session) Controller() *highlight.Controller { return s.ctrl }

// Sheet returns the session style sheet. Use it only inside [Session.Do].
func (s *Session) Sheet() *style.Sheet { return s.sheet }

// Styled returns l styled as this session currently shows it.
func (s *Session) Styled(l *feature.Layer) (styled []byte, err error) {
	err = s.Do(func(s *Session) error {
		styled, err = s.sheet.Styled(l).MarshalJSON()
		return err
	})
	return styled, err
}

// Close resets the highlight, restoring the highlighted feature's style.
func (s *Session) Close(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.Reset(ctx)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns ErrNotFound if it doesn't exist and ErrExpired if it has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, s *Session) error

	// Delete tears a session down and removes it.
	Delete(ctx context.Context, id string) error

	// Cleanup tears down and removes expired sessions.
	Cleanup(ctx context.Context) error
}
