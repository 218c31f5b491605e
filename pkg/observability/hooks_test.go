package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	i := NoopInteractionHooks{}
	i.OnPick(ctx, "Hexagons 2021", true, time.Millisecond)
	i.OnTransition(ctx, "idle", "highlighted", false)

	s := NoopSessionHooks{}
	s.OnSessionCreate(ctx, "6f1c")
	s.OnSessionClose(ctx, "6f1c", "expired", time.Hour)

	p := NoopPipelineHooks{}
	p.OnStyleStart(ctx, "Hexagons 2021", 120)
	p.OnStyleComplete(ctx, "Hexagons 2021", time.Second, nil)
	p.OnAggregateStart(ctx, 120, 2)
	p.OnAggregateComplete(ctx, 120, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "styled")
	c.OnCacheMiss(ctx, "hexgrid")
	c.OnCacheSet(ctx, "styled", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/api/sessions/{id}/click")
	h.OnResponse(ctx, "POST", "/api/sessions/{id}/click", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Interaction().(NoopInteractionHooks); !ok {
		t.Error("Interaction() should return NoopInteractionHooks by default")
	}
	if _, ok := Session().(NoopSessionHooks); !ok {
		t.Error("Session() should return NoopSessionHooks by default")
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customInteraction := &testInteractionHooks{}
	SetInteractionHooks(customInteraction)
	if Interaction() != customInteraction {
		t.Error("SetInteractionHooks should set custom hooks")
	}

	customSession := &testSessionHooks{}
	SetSessionHooks(customSession)
	if Session() != customSession {
		t.Error("SetSessionHooks should set custom hooks")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Interaction().(NoopInteractionHooks); !ok {
		t.Error("Reset() should restore NoopInteractionHooks")
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testInteractionHooks{}
	SetInteractionHooks(custom)
	SetInteractionHooks(nil)

	if Interaction() != custom {
		t.Error("SetInteractionHooks(nil) should be ignored")
	}
}

type testInteractionHooks struct{ NoopInteractionHooks }
type testSessionHooks struct{ NoopSessionHooks }
type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
