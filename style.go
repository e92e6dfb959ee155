package main

import (
	"github.com/paulmach/orb"
)

// TileURLTemplate smp内部瓦片地址, {z}/{x}/{y} substituted by the consuming
// client, not by us.
const TileURLTemplate = "smp://maps.v1/s/0/{z}/{x}/{y}.png"

// DefaultZoomCap 默认打开级别上限
const DefaultZoomCap = 11

// Style MapLibre样式文档, written as style.json at the package root.
type Style struct {
	Version  int                     `json:"version"`
	Name     string                  `json:"name"`
	Sources  map[string]*StyleSource `json:"sources"`
	Layers   []StyleLayer            `json:"layers"`
	Metadata StyleMetadata           `json:"metadata"`
	Center   []float64               `json:"center"`
	Zoom     int                     `json:"zoom"`
}

// StyleSource 栅格数据源
type StyleSource struct {
	Format  string    `json:"format"`
	Name    string    `json:"name"`
	Version string    `json:"version"`
	Type    string    `json:"type"`
	MinZoom int       `json:"minzoom"`
	MaxZoom int       `json:"maxzoom"`
	Scheme  string    `json:"scheme"`
	Bounds  []float64 `json:"bounds"`
	Center  []float64 `json:"center"`
	Tiles   []string  `json:"tiles"`
}

// StyleLayer 渲染图层
type StyleLayer struct {
	ID     string                 `json:"id"`
	Type   string                 `json:"type"`
	Source string                 `json:"source,omitempty"`
	Paint  map[string]interface{} `json:"paint"`
}

// StyleMetadata smp扩展元数据
type StyleMetadata struct {
	Bounds        []float64         `json:"smp:bounds"`
	MaxZoom       int               `json:"smp:maxzoom"`
	SourceFolders map[string]string `json:"smp:sourceFolders"`
}

// NewStyle 创建样式文档. bounds is the WGS84 extent of the pyramid. The
// default zoom opens two levels below max, capped, never below min.
func NewStyle(name, sourceID string, bounds orb.Bound, minZoom, maxZoom, zoomCap int) *Style {
	b := []float64{bounds.Left(), bounds.Bottom(), bounds.Right(), bounds.Top()}

	defaultZoom := maxZoom - 2
	if defaultZoom > zoomCap {
		defaultZoom = zoomCap
	}
	if defaultZoom < minZoom {
		defaultZoom = minZoom
	}

	return &Style{
		Version: 8,
		Name:    name,
		Sources: map[string]*StyleSource{
			sourceID: {
				Format:  PNG,
				Name:    name,
				Version: "2.0",
				Type:    "raster",
				MinZoom: minZoom,
				MaxZoom: maxZoom,
				Scheme:  "xyz",
				Bounds:  b,
				Center:  []float64{0, 0, 6},
				Tiles:   []string{TileURLTemplate},
			},
		},
		Layers: []StyleLayer{
			{
				ID:   "background",
				Type: "background",
				Paint: map[string]interface{}{
					"background-color": "white",
				},
			},
			{
				ID:     "raster",
				Type:   "raster",
				Source: sourceID,
				Paint: map[string]interface{}{
					"raster-opacity": 1,
				},
			},
		},
		Metadata: StyleMetadata{
			Bounds:  b,
			MaxZoom: maxZoom,
			SourceFolders: map[string]string{
				sourceID: "0",
			},
		},
		Center: []float64{(bounds.Left() + bounds.Right()) / 2, (bounds.Bottom() + bounds.Top()) / 2},
		Zoom:   defaultZoom,
	}
}
