package main

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	pb "gopkg.in/cheggaaa/pb.v1"
)

// ErrAborted 任务被取消
var ErrAborted = errors.New("generation aborted")

// Pyramid 瓦片金字塔生成任务. Renders every tile covering the extent for
// each zoom level in [MinZoom, MaxZoom] and hands the encoded PNGs to a
// TileWriter.
type Pyramid struct {
	Ctx     *RenderContext
	Extent  orb.Bound // in Ctx.CRS
	WGS84   orb.Bound
	MinZoom int
	MaxZoom int
	Size    int
	Sink    ProgressSink

	Ranges  []TileRange
	Total   int64
	Current int64

	bar       *pb.ProgressBar
	abort     chan struct{}
	abortOnce sync.Once
}

// NewPyramid 创建生成任务. Transforms the extent to WGS84 and precomputes
// the per-zoom tile ranges; an extent that cannot be related to WGS84 fails
// here, before any tile work.
func NewPyramid(ctx *RenderContext, extent orb.Bound, minZoom, maxZoom int, sink ProgressSink) (*Pyramid, error) {
	if err := validateZoom(minZoom, maxZoom); err != nil {
		return nil, err
	}
	wgs, err := ctx.toWGS84(extent)
	if err != nil {
		return nil, err
	}

	p := &Pyramid{
		Ctx:     ctx,
		Extent:  extent,
		WGS84:   wgs,
		MinZoom: minZoom,
		MaxZoom: maxZoom,
		Size:    TileSize,
		Sink:    sink,
		abort:   make(chan struct{}),
	}
	for z := minZoom; z <= maxZoom; z++ {
		r := tileRange(wgs, maptile.Zoom(z))
		log.Infof("zoom: %d, tiles: %d (%dx%d)", z, r.Count(), r.MaxX-r.MinX+1, r.MaxY-r.MinY+1)
		p.Ranges = append(p.Ranges, r)
		p.Total += r.Count()
	}
	return p, nil
}

// AbortFun 结束任务, safe to call more than once. Observed between tiles.
func (p *Pyramid) AbortFun() {
	p.abortOnce.Do(func() {
		close(p.abort)
	})
}

// Build 逐级生成瓦片. Strictly sequential, the renderer is exclusive. The
// first failed tile aborts the whole run, the caller cleans up.
func (p *Pyramid) Build(w TileWriter) error {
	log.Infof("total tiles to generate: %d", p.Total)

	p.bar = pb.New64(p.Total).Prefix("Tiles: ")
	p.bar.SetRefreshRate(time.Second)
	p.bar.Start()
	defer p.bar.Finish()

	for _, r := range p.Ranges {
		if err := p.buildZoom(r, w); err != nil {
			return err
		}
	}
	p.info(fmt.Sprintf("generated %d tiles", p.Current))
	return nil
}

func (p *Pyramid) buildZoom(r TileRange, w TileWriter) error {
	for x := r.MinX; x <= r.MaxX; x++ {
		for y := r.MinY; y <= r.MaxY; y++ {
			select {
			case <-p.abort:
				return fmt.Errorf("zoom %d: %w", r.Zoom, ErrAborted)
			default:
			}

			t := maptile.Tile{X: x, Y: y, Z: r.Zoom}
			img, err := renderTile(p.Ctx, t, p.Size)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := png.Encode(&buf, img); err != nil {
				return fmt.Errorf("encode tile %d/%d/%d: %w", t.Z, t.X, t.Y, err)
			}
			if err := w.WriteTile(t, buf.Bytes()); err != nil {
				return fmt.Errorf("write tile %d/%d/%d: %w", t.Z, t.X, t.Y, err)
			}

			p.Current++
			p.bar.Increment()
			if p.Sink != nil {
				p.Sink.SetProgress(float64(p.Current) / float64(p.Total) * 100)
			}
		}
	}
	return nil
}

func (p *Pyramid) info(msg string) {
	log.Infoln(msg)
	if p.Sink != nil {
		p.Sink.Info(msg)
	}
}

// validateZoom 校验级别参数, rejected before any staging is allocated.
func validateZoom(minZoom, maxZoom int) error {
	if minZoom < ZoomMin || maxZoom > ZoomMax {
		return fmt.Errorf("%w: zoom must be within [%d, %d], got [%d, %d]",
			ErrInvalidZoom, ZoomMin, ZoomMax, minZoom, maxZoom)
	}
	if minZoom > maxZoom {
		return fmt.Errorf("%w: min zoom %d > max zoom %d", ErrInvalidZoom, minZoom, maxZoom)
	}
	return nil
}
