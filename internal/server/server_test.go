package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/thermogrid/pkg/classify"
	"github.com/matzehuels/thermogrid/pkg/config"
	"github.com/matzehuels/thermogrid/pkg/feature"
	"github.com/matzehuels/thermogrid/pkg/pick"
	"github.com/matzehuels/thermogrid/pkg/session"
	"github.com/matzehuels/thermogrid/pkg/style"
)

func square(x, y, d float64) orb.Polygon {
	return orb.Polygon{{{x, y}, {x + d, y}, {x + d, y + d}, {x, y + d}, {x, y}}}
}

// newTestScene stacks one stats layer over a 10x10 degree viewport drawn at
// 100x100 pixels. The left hexagon holds 25 °C, the right one 33 °C.
func newTestScene(t *testing.T) *config.Scene {
	t.Helper()
	canvas, err := pick.NewCanvas(pick.Viewport{
		Bound:  orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 10}},
		Width:  100,
		Height: 100,
	})
	require.NoError(t, err)

	fc := geojson.NewFeatureCollection()
	fc.Append(feature.NewPolygon(square(0, 0, 5), feature.Attrs{"s_mean_21": 25}).GeoJSON())
	fc.Append(feature.NewPolygon(square(5, 0, 5), feature.Attrs{"s_mean_21": 33}).GeoJSON())
	meta := feature.Meta{Kind: feature.KindStats, Attribute: "s_mean_21", Table: "lst"}
	layer := feature.NewLayer("Hexagons 2021", meta, fc)
	require.NoError(t, canvas.AddLayer(layer))

	table, err := config.DefaultTable.Build()
	require.NoError(t, err)
	return &config.Scene{
		Canvas: canvas,
		Tables: map[string]*classify.Table{"lst": table},
		Styles: map[string]style.Func{layer.Name: style.ForLayer(meta, table, style.Base)},
	}
}

func newTestServer(t *testing.T, ttl time.Duration) (*httptest.Server, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore()
	srv := New(newTestScene(t), store, Config{SessionTTL: ttl, Logger: log.New(io.Discard)})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

func do(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, url, r)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func createSession(t *testing.T, base string) string {
	t.Helper()
	resp, data := do(t, http.MethodPost, base+"/api/sessions", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var info sessionInfo
	require.NoError(t, json.Unmarshal(data, &info))
	require.NotEmpty(t, info.ID)
	return info.ID
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t, 0)
	createSession(t, ts.URL)
	resp, data := do(t, http.MethodGet, ts.URL+"/healthz", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var h health
	require.NoError(t, json.Unmarshal(data, &h))
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, 1, h.Sessions)
	assert.Equal(t, "dev", h.Build.Version)
}

func TestLayers(t *testing.T) {
	ts, _ := newTestServer(t, 0)
	resp, data := do(t, http.MethodGet, ts.URL+"/api/layers", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var layers []layerInfo
	require.NoError(t, json.Unmarshal(data, &layers))
	require.Len(t, layers, 1)
	assert.Equal(t, "Hexagons 2021", layers[0].Name)
	assert.Equal(t, "stats", layers[0].Kind)
	assert.Equal(t, 2, layers[0].Features)
}

func TestLegend(t *testing.T) {
	ts, _ := newTestServer(t, 0)

	resp, data := do(t, http.MethodGet, ts.URL+"/api/tables/lst/legend", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var lg legend
	require.NoError(t, json.Unmarshal(data, &lg))
	require.NotEmpty(t, lg.Bands)
	assert.Nil(t, lg.Bands[0].Min)
	assert.Equal(t, "<= 24.74", lg.Bands[0].Label)

	resp, data = do(t, http.MethodGet, ts.URL+"/api/tables/nope/legend", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(data), "TABLE_NOT_FOUND")
}

func TestClickHighlightsAndRestores(t *testing.T) {
	ts, _ := newTestServer(t, 0)
	id := createSession(t, ts.URL)
	base := ts.URL + "/api/sessions/" + id

	resp, data := do(t, http.MethodPost, base+"/click", map[string]float64{"x": 25, "y": 75})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tr transitionResponse
	require.NoError(t, json.Unmarshal(data, &tr))
	assert.Equal(t, "idle", tr.From.String())
	assert.Equal(t, "highlighted", tr.To.String())
	assert.True(t, tr.Changed)
	assert.Equal(t, "Hexagons 2021", tr.Layer)
	assert.EqualValues(t, 25, tr.Properties["s_mean_21"])

	// The session's layer shows exactly one highlighted feature.
	resp, data = do(t, http.MethodGet, base+"/layers/Hexagons%202021", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	var highlighted int
	for _, f := range fc.Features {
		if f.Properties["highlighted"] == true {
			highlighted++
		}
	}
	assert.Equal(t, 1, highlighted)

	// Same feature again is a no-op.
	_, data = do(t, http.MethodPost, base+"/click", map[string]float64{"x": 20, "y": 60})
	require.NoError(t, json.Unmarshal(data, &tr))
	assert.False(t, tr.Changed)

	// Leaving restores.
	_, data = do(t, http.MethodPost, base+"/leave", nil)
	tr = transitionResponse{}
	require.NoError(t, json.Unmarshal(data, &tr))
	assert.Equal(t, "idle", tr.To.String())
	assert.True(t, tr.Restored)
}

func TestSessionsAreIndependent(t *testing.T) {
	ts, _ := newTestServer(t, 0)
	a := createSession(t, ts.URL)
	b := createSession(t, ts.URL)
	require.NotEqual(t, a, b)

	do(t, http.MethodPost, ts.URL+"/api/sessions/"+a+"/click", map[string]float64{"x": 75, "y": 75})

	_, data := do(t, http.MethodGet, ts.URL+"/api/sessions/"+b+"/layers/Hexagons%202021", nil)
	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	for _, f := range fc.Features {
		assert.Equal(t, false, f.Properties["highlighted"])
	}
}

func TestClickValidation(t *testing.T) {
	ts, _ := newTestServer(t, 0)
	id := createSession(t, ts.URL)

	resp, data := do(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/click", map[string]float64{"x": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(data), "INVALID_INPUT")
}

func TestSessionErrors(t *testing.T) {
	ts, _ := newTestServer(t, 0)

	tests := []struct {
		name   string
		method string
		path   string
		status int
		code   string
	}{
		{"unknown session layer", http.MethodGet, "/api/sessions/missing/layers/x", http.StatusNotFound, "SESSION_NOT_FOUND"},
		{"unknown session click", http.MethodPost, "/api/sessions/missing/leave", http.StatusNotFound, "SESSION_NOT_FOUND"},
		{"unknown session delete", http.MethodDelete, "/api/sessions/missing", http.StatusNotFound, "SESSION_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := do(t, tt.method, ts.URL+tt.path, nil)
			assert.Equal(t, tt.status, resp.StatusCode)
			var body errorBody
			require.NoError(t, json.Unmarshal(data, &body))
			assert.Equal(t, tt.code, string(body.Code))
		})
	}

	id := createSession(t, ts.URL)
	resp, data := do(t, http.MethodGet, ts.URL+"/api/sessions/"+id+"/layers/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(data), "LAYER_NOT_FOUND")
}

func TestDeleteSession(t *testing.T) {
	ts, store := newTestServer(t, 0)
	id := createSession(t, ts.URL)
	require.Equal(t, 1, store.Len())

	resp, _ := do(t, http.MethodDelete, ts.URL+"/api/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 0, store.Len())
}

func TestExpiredSession(t *testing.T) {
	ts, _ := newTestServer(t, time.Millisecond)
	id := createSession(t, ts.URL)
	time.Sleep(5 * time.Millisecond)

	resp, data := do(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/leave", nil)
	assert.Equal(t, http.StatusGone, resp.StatusCode)
	assert.Contains(t, string(data), "SESSION_EXPIRED")
}
