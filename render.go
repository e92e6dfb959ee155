package main

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// Renderer 地图渲染器. Paints a geographic rectangle into a fixed-size RGBA
// buffer, transparent where nothing is drawn. Each call is independent and
// synchronous.
type Renderer interface {
	Render(extent orb.Bound, crs CRS, width, height int, layers []string) (*image.RGBA, error)
}

// LayerSource 项目图层, read once at the start of a run.
type LayerSource interface {
	CRS() CRS
	VisibleLayers() []string
}

// ProgressSink 进度上报, optional.
type ProgressSink interface {
	SetProgress(pct float64)
	Info(msg string)
}

// StaticLayerSource 固定图层配置
type StaticLayerSource struct {
	Crs    CRS
	Layers []string
}

func (s *StaticLayerSource) CRS() CRS                { return s.Crs }
func (s *StaticLayerSource) VisibleLayers() []string { return s.Layers }

// RenderContext 一次生成任务所需的全部协作对象, passed explicitly,
// never resolved from globals.
type RenderContext struct {
	CRS       CRS
	Layers    []string
	Renderer  Renderer
	Transform CoordinateTransform

	// the renderer owns its output surface, one render job at a time
	mu sync.Mutex
}

// NewRenderContext 创建渲染上下文
func NewRenderContext(src LayerSource, r Renderer, tr CoordinateTransform) *RenderContext {
	return &RenderContext{
		CRS:       src.CRS(),
		Layers:    src.VisibleLayers(),
		Renderer:  r,
		Transform: tr,
	}
}

func (c *RenderContext) toWGS84(b orb.Bound) (orb.Bound, error) {
	return c.Transform.TransformBound(b, c.CRS, CRSWGS84)
}

func (c *RenderContext) fromWGS84(b orb.Bound) (orb.Bound, error) {
	return c.Transform.TransformBound(b, CRSWGS84, c.CRS)
}

// renderTile 渲染单张瓦片: XYZ bound -> source CRS -> renderer
func renderTile(ctx *RenderContext, t maptile.Tile, size int) (*image.RGBA, error) {
	rect, err := ctx.fromWGS84(tileBound(t))
	if err != nil {
		return nil, fmt.Errorf("render tile %d/%d/%d: %w", t.Z, t.X, t.Y, err)
	}

	ctx.mu.Lock()
	img, err := ctx.Renderer.Render(rect, ctx.CRS, size, size, ctx.Layers)
	ctx.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("render tile %d/%d/%d: %w", t.Z, t.X, t.Y, err)
	}
	if img == nil || img.Bounds().Dx() != size || img.Bounds().Dy() != size {
		return nil, fmt.Errorf("render tile %d/%d/%d: renderer returned wrong size", t.Z, t.X, t.Y)
	}
	return img, nil
}

// FlatRenderer 纯色渲染器, used for dry runs and smoke tests.
type FlatRenderer struct {
	Color color.NRGBA
}

func (f *FlatRenderer) Render(_ orb.Bound, _ CRS, width, height int, _ []string) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = f.Color.R
		img.Pix[i+1] = f.Color.G
		img.Pix[i+2] = f.Color.B
		img.Pix[i+3] = f.Color.A
	}
	return img, nil
}

// parseHexColor "#rrggbb" or "#rrggbbaa"
func parseHexColor(s string) (color.NRGBA, error) {
	c := color.NRGBA{A: 0xff}
	var err error
	switch len(s) {
	case 7:
		_, err = fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B)
	case 9:
		_, err = fmt.Sscanf(s, "#%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A)
	default:
		err = fmt.Errorf("invalid length %d", len(s))
	}
	if err != nil {
		return c, fmt.Errorf("parse color %q: %w", s, err)
	}
	return c, nil
}
