package highlight

import (
	"context"
	"testing"

	"github.com/paulmach/orb"

	"github.com/matzehuels/thermogrid/pkg/classify"
	"github.com/matzehuels/thermogrid/pkg/feature"
	"github.com/matzehuels/thermogrid/pkg/pick"
	"github.com/matzehuels/thermogrid/pkg/style"
)

// countingStyler records SetStyle calls on top of a real sheet.
type countingStyler struct {
	*style.Sheet
	sets int
}

func (c *countingStyler) SetStyle(f *feature.Feature, s *style.Spec) bool {
	c.sets++
	return c.Sheet.SetStyle(f, s)
}

type fixture struct {
	ctrl   *Controller
	styler *countingStyler
	layer  *feature.Layer
	a, b   *feature.Feature
}

// Two hexagon stand-ins: a covers pixels x<50, b covers x>=50 on a 100x100
// screen over a 10x10 map. The bottom strip (y > 80 px) is empty.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	vp := pick.Viewport{Bound: orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 10}}, Width: 100, Height: 100}
	canvas, err := pick.NewCanvas(vp)
	if err != nil {
		t.Fatal(err)
	}

	l := feature.NewLayer("Hexagons 2021", feature.Meta{Kind: feature.KindStats, Attribute: "s_mean_21", Table: "lst"}, nil)
	a := feature.NewPolygon(orb.Polygon{orb.Ring{{0, 2}, {5, 2}, {5, 10}, {0, 10}, {0, 2}}}, feature.Attrs{"s_mean_21": 25})
	b := feature.NewPolygon(orb.Polygon{orb.Ring{{5, 2}, {10, 2}, {10, 10}, {5, 10}, {5, 2}}}, feature.Attrs{"s_mean_21": 40})
	l.Add(a)
	l.Add(b)
	if err := canvas.AddLayer(l); err != nil {
		t.Fatal(err)
	}

	tbl := classify.MustTable([]classify.Breakpoint{
		{Threshold: 24.74, Color: classify.MustParseColor("#ffffb2")},
		{Threshold: 26.72, Color: classify.MustParseColor("#fecc5c")},
		{Threshold: 34.5, Color: classify.MustParseColor("#bd0026")},
	})
	sheet := style.NewSheet()
	sheet.AddLayer(l, style.ForLayer(l.Meta, tbl, style.Base))
	st := &countingStyler{Sheet: sheet}

	return &fixture{
		ctrl:   New(pick.NewPicker(canvas, pick.StatsLayers()), st),
		styler: st,
		layer:  l,
		a:      a,
		b:      b,
	}
}

var (
	onA  = pick.Pixel{X: 20, Y: 20}
	onB  = pick.Pixel{X: 80, Y: 20}
	miss = pick.Pixel{X: 50, Y: 95}
)

func (fx *fixture) highlighted() []*feature.Feature {
	var out []*feature.Feature
	for _, f := range fx.layer.Features() {
		if s, ok := fx.styler.Style(f); ok && s.Highlighted {
			out = append(out, f)
		}
	}
	return out
}

func TestClickHighlights(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	base, _ := fx.styler.Style(fx.a)

	tr := fx.ctrl.Click(ctx, onA)
	if tr.From != Idle || tr.To != Highlighted || tr.Current != fx.a || !tr.Changed || tr.Layer != fx.layer {
		t.Fatalf("Click() = %+v", tr)
	}
	if fx.ctrl.Saved() != base {
		t.Error("saved style should be the pre-highlight spec")
	}
	got, _ := fx.styler.Style(fx.a)
	if !got.Highlighted || got.Fill != base.Fill {
		t.Errorf("highlight style = %+v", got)
	}
}

func TestRepickIsNoop(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.ctrl.Click(ctx, onA)
	applied, _ := fx.styler.Style(fx.a)
	sets := fx.styler.sets

	tr := fx.ctrl.Click(ctx, onA)
	if tr.Changed || tr.Restored || tr.From != Highlighted || tr.To != Highlighted {
		t.Errorf("re-pick transition = %+v", tr)
	}
	if fx.styler.sets != sets {
		t.Errorf("re-pick restyled %d times", fx.styler.sets-sets)
	}
	if again, _ := fx.styler.Style(fx.a); again != applied {
		t.Error("re-pick replaced the applied style pointer")
	}
}

func TestSwitchRestoresPrevious(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	baseA, _ := fx.styler.Style(fx.a)
	savedA := *baseA

	fx.ctrl.Click(ctx, onA)
	tr := fx.ctrl.Click(ctx, onB)

	if tr.Previous != fx.a || tr.Current != fx.b || !tr.Restored {
		t.Fatalf("switch transition = %+v", tr)
	}
	restored, _ := fx.styler.Style(fx.a)
	if restored != baseA || *restored != savedA {
		t.Errorf("restored style = %+v, want %+v", restored, savedA)
	}
	if h := fx.highlighted(); len(h) != 1 || h[0] != fx.b {
		t.Errorf("highlighted features = %v", h)
	}
}

func TestMissClears(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	baseA, _ := fx.styler.Style(fx.a)

	fx.ctrl.Click(ctx, onA)
	tr := fx.ctrl.Click(ctx, miss)
	if tr.To != Idle || !tr.Restored || tr.Previous != fx.a {
		t.Fatalf("miss transition = %+v", tr)
	}
	if got, _ := fx.styler.Style(fx.a); got != baseA {
		t.Error("miss did not restore the saved style")
	}
	if fx.ctrl.State() != Idle {
		t.Errorf("State() = %v", fx.ctrl.State())
	}

	tr = fx.ctrl.Click(ctx, miss)
	if tr.Changed {
		t.Errorf("miss while idle changed state: %+v", tr)
	}
}

func TestAtMostOneHighlighted(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	for i, px := range []pick.Pixel{onA, onB, onB, miss, onB, onA, onA, miss, onA} {
		fx.ctrl.Click(ctx, px)
		h := fx.highlighted()
		if len(h) > 1 {
			t.Fatalf("step %d: %d features highlighted", i, len(h))
		}
		if cur, ok := fx.ctrl.Current(); ok != (len(h) == 1) || (ok && cur.Feature != h[0]) {
			t.Fatalf("step %d: Current() disagrees with styles", i)
		}
	}
}

func TestRemovedFeatureRestoreIsNoop(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.ctrl.Click(ctx, onA)
	fx.layer.Remove(fx.a)

	tr := fx.ctrl.Click(ctx, onB)
	if tr.Restored {
		t.Error("restore of removed feature reported success")
	}
	if tr.Current != fx.b || fx.ctrl.State() != Highlighted {
		t.Errorf("transition after removal = %+v", tr)
	}

	fx.layer.Remove(fx.b)
	tr = fx.ctrl.Leave(ctx)
	if tr.Restored || tr.To != Idle {
		t.Errorf("Leave() with removed feature = %+v", tr)
	}
}

func TestSelectRemovedFeature(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.layer.Remove(fx.a)
	tr := fx.ctrl.Select(ctx, pick.Hit{Feature: fx.a, Layer: fx.layer})
	if tr.To != Idle || fx.ctrl.State() != Idle {
		t.Errorf("Select(removed) = %+v", tr)
	}
}

func TestReset(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	baseB, _ := fx.styler.Style(fx.b)

	fx.ctrl.Click(ctx, onB)
	fx.ctrl.Reset(ctx)

	if fx.ctrl.State() != Idle || fx.ctrl.Saved() != nil {
		t.Error("Reset() did not return to idle")
	}
	if got, _ := fx.styler.Style(fx.b); got != baseB {
		t.Error("Reset() did not restore the saved style")
	}
	if _, ok := fx.ctrl.Current(); ok {
		t.Error("Current() after Reset() ok = true")
	}
}

func TestWithEmphasis(t *testing.T) {
	fx := newFixture(t)
	fx.ctrl = New(fx.ctrl.picker, fx.styler, WithEmphasis(func(s *style.Spec) *style.Spec {
		h := s.Clone()
		h.Highlighted = true
		h.StrokeWidth = 7
		return h
	}))

	fx.ctrl.Click(context.Background(), onA)
	if got, _ := fx.styler.Style(fx.a); got.StrokeWidth != 7 {
		t.Errorf("custom emphasis not applied: %+v", got)
	}
}

func TestStateString(t *testing.T) {
	if Idle.String() != "idle" || Highlighted.String() != "highlighted" {
		t.Errorf("State strings = %q, %q", Idle, Highlighted)
	}
}
