package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/paulmach/orb"

	"github.com/matzehuels/thermogrid/pkg/feature"
	"github.com/matzehuels/thermogrid/pkg/highlight"
	"github.com/matzehuels/thermogrid/pkg/pick"
	"github.com/matzehuels/thermogrid/pkg/style"
)

type world struct {
	canvas *pick.Canvas
	picker *pick.Picker
	layer  *feature.Layer
	hex    *feature.Feature
}

func newWorld(t *testing.T) *world {
	t.Helper()
	c, err := pick.NewCanvas(pick.Viewport{Bound: orb.Bound{Max: orb.Point{10, 10}}, Width: 10, Height: 10})
	if err != nil {
		t.Fatal(err)
	}
	l := feature.NewLayer("Hexagons 2021", feature.Meta{Kind: feature.KindStats, Attribute: "m", Table: "lst"}, nil)
	f := feature.NewPolygon(orb.Polygon{orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}}, feature.Attrs{"m": 1})
	l.Add(f)
	if err := c.AddLayer(l); err != nil {
		t.Fatal(err)
	}
	return &world{canvas: c, picker: pick.NewPicker(c, nil), layer: l, hex: f}
}

func (w *world) session(ttl time.Duration) *Session {
	return New(w.picker, NewSheet(w.canvas, nil), ttl)
}

func TestSessionsAreIndependent(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	a, b := w.session(DefaultTTL), w.session(DefaultTTL)
	if a.ID == b.ID {
		t.Fatal("session IDs collide")
	}

	a.Do(func(s *Session) error {
		s.Controller().Click(ctx, pick.Pixel{X: 5, Y: 5})
		return nil
	})

	if a.Controller().State() != highlight.Highlighted {
		t.Error("session a should be highlighted")
	}
	if b.Controller().State() != highlight.Idle {
		t.Error("session b should stay idle")
	}
	if s, _ := b.Sheet().Style(w.hex); s.Highlighted {
		t.Error("session b sees session a's highlight")
	}
}

func TestSessionStyled(t *testing.T) {
	w := newWorld(t)
	s := w.session(DefaultTTL)
	s.Do(func(s *Session) error {
		s.Controller().Click(context.Background(), pick.Pixel{X: 5, Y: 5})
		return nil
	})

	data, err := s.Styled(w.layer)
	if err != nil {
		t.Fatalf("Styled() error = %v", err)
	}
	var out struct {
		Features []struct {
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Features) != 1 || out.Features[0].Properties["highlighted"] != true {
		t.Errorf("Styled() = %s", data)
	}
}

func TestNewSheetUsesLayerStyles(t *testing.T) {
	w := newWorld(t)
	custom := style.Base
	custom.StrokeWidth = 4
	sheet := NewSheet(w.canvas, map[string]style.Func{w.layer.Name: style.Static(custom)})
	if s, ok := sheet.Style(w.hex); !ok || s.StrokeWidth != 4 {
		t.Errorf("Style() = %+v, %v", s, ok)
	}
}

func TestMemoryStore(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	store := NewMemoryStore()
	s := w.session(DefaultTTL)

	if err := store.Set(ctx, s); err != nil {
		t.Fatal(err)
	}
	got, err := store.Get(ctx, s.ID)
	if err != nil || got != s {
		t.Fatalf("Get() = %v, %v", got, err)
	}
	if _, err := store.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(unknown) error = %v", err)
	}

	s.Do(func(s *Session) error {
		s.Controller().Click(ctx, pick.Pixel{X: 5, Y: 5})
		return nil
	})
	if err := store.Delete(ctx, s.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if s.Controller().State() != highlight.Idle {
		t.Error("Delete() should reset the highlight")
	}
	if spec, _ := s.Sheet().Style(w.hex); spec.Highlighted {
		t.Error("Delete() should restore the saved style")
	}
	if err := store.Delete(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	store := NewMemoryStore()

	expired := w.session(-time.Second)
	live := w.session(DefaultTTL)
	store.Set(ctx, expired)
	store.Set(ctx, live)

	if _, err := store.Get(ctx, expired.ID); !errors.Is(err, ErrExpired) {
		t.Errorf("Get(expired) error = %v", err)
	}
	if _, err := store.Get(ctx, expired.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired session should be dropped after Get, got %v", err)
	}

	other := w.session(-time.Second)
	store.Set(ctx, other)
	if err := store.Cleanup(ctx); err != nil {
		t.Fatal(err)
	}
	if store.Len() != 1 {
		t.Errorf("Len() after Cleanup = %d, want 1", store.Len())
	}
}

func TestSessionDoSerializes(t *testing.T) {
	w := newWorld(t)
	s := w.session(DefaultTTL)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Do(func(s *Session) error {
				if i%2 == 0 {
					s.Controller().Click(ctx, pick.Pixel{X: 5, Y: 5})
				} else {
					s.Controller().Leave(ctx)
				}
				return nil
			})
		}()
	}
	wg.Wait()

	spec, _ := s.Sheet().Style(w.hex)
	if spec.Highlighted != (s.Controller().State() == highlight.Highlighted) {
		t.Error("style and controller state diverged")
	}
}
