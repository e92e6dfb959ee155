package main

import (
	"encoding/json"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBounds() orb.Bound {
	return orb.Bound{Min: orb.Point{-10, -20}, Max: orb.Point{30, 40}}
}

func TestNewStyleSchema(t *testing.T) {
	s := NewStyle("Test Map", "mbtiles-source", testBounds(), 2, 9, DefaultZoomCap)

	assert.Equal(t, 8, s.Version)
	assert.Equal(t, "Test Map", s.Name)

	src := s.Sources["mbtiles-source"]
	require.NotNil(t, src)
	assert.Equal(t, "png", src.Format)
	assert.Equal(t, "raster", src.Type)
	assert.Equal(t, "xyz", src.Scheme)
	assert.Equal(t, 2, src.MinZoom)
	assert.Equal(t, 9, src.MaxZoom)
	assert.Equal(t, []float64{-10, -20, 30, 40}, src.Bounds)
	assert.Equal(t, []string{"smp://maps.v1/s/0/{z}/{x}/{y}.png"}, src.Tiles)

	require.Len(t, s.Layers, 2)
	assert.Equal(t, "background", s.Layers[0].ID)
	assert.Equal(t, "raster", s.Layers[1].ID)
	assert.Equal(t, "mbtiles-source", s.Layers[1].Source)

	assert.Equal(t, []float64{-10, -20, 30, 40}, s.Metadata.Bounds)
	assert.Equal(t, 9, s.Metadata.MaxZoom)
	assert.Equal(t, map[string]string{"mbtiles-source": "0"}, s.Metadata.SourceFolders)

	assert.Equal(t, []float64{10, 10}, s.Center)
}

func TestNewStyleDefaultZoom(t *testing.T) {
	tests := []struct {
		name             string
		minZoom, maxZoom int
		cap              int
		want             int
	}{
		{name: "two below max", minZoom: 0, maxZoom: 8, cap: 11, want: 6},
		{name: "capped", minZoom: 0, maxZoom: 18, cap: 11, want: 11},
		{name: "higher cap", minZoom: 0, maxZoom: 18, cap: 14, want: 14},
		{name: "never below min", minZoom: 3, maxZoom: 4, cap: 11, want: 3},
		{name: "single level", minZoom: 0, maxZoom: 0, cap: 11, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStyle("m", "s", testBounds(), tt.minZoom, tt.maxZoom, tt.cap)
			assert.Equal(t, tt.want, s.Zoom)
		})
	}
}

func TestStyleJSONKeys(t *testing.T) {
	s := NewStyle("m", "src", testBounds(), 0, 5, DefaultZoomCap)
	data, err := json.Marshal(s)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))

	meta, ok := doc["metadata"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, meta, "smp:bounds")
	assert.Contains(t, meta, "smp:maxzoom")
	assert.Contains(t, meta, "smp:sourceFolders")

	folders := meta["smp:sourceFolders"].(map[string]interface{})
	assert.Equal(t, "0", folders["src"])
}
