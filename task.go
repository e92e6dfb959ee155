package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/paulmach/orb"
)

// 参数错误, rejected before staging or tile work starts
var (
	ErrInvalidZoom   = errors.New("invalid zoom range")
	ErrInvalidExtent = errors.New("invalid extent")
)

// InitTask 开始生成任务
func InitTask() {
	start := time.Now()

	extent, err := confExtent()
	if err != nil {
		log.Fatalf("bad extent: %s", err)
	}
	renderer, err := confRenderer()
	if err != nil {
		log.Fatalf("bad renderer: %s", err)
	}

	src := &StaticLayerSource{
		Crs:    normalizeCRS(CRS(conf.Extent.CRS)),
		Layers: conf.Renderer.Layers,
	}
	ctx := NewRenderContext(src, renderer, NewEPSGTransform())

	pyramid, err := NewPyramid(ctx, extent, conf.Zoom.Min, conf.Zoom.Max, nil)
	if err != nil {
		log.Fatalf("task setup failed: %s", err)
	}
	// 注册安全退出
	SafeExitInst.Register(pyramid.AbortFun)

	out := outputPath
	if out == "" {
		out = conf.Output.Path
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			log.Fatalf("create output directory: %s", err)
		}
	}

	switch conf.Output.Format {
	case FormatSMP:
		gen := &SMPGenerator{
			Pyramid:     pyramid,
			Name:        conf.Style.Name,
			SourceID:    conf.Style.SourceID,
			ZoomCap:     conf.Style.DefaultZoomCap,
			KeepStaging: conf.Output.KeepStaging,
		}
		if _, err := gen.Generate(out); err != nil {
			log.Fatalf("generation failed: %s", err)
		}
		log.Infof("smp file generated: %s", out)
	case FormatMBTiles:
		w, err := NewMBTilesWriter(out, conf.Style.Name, pyramid.WGS84, conf.Zoom.Min, conf.Zoom.Max)
		if err != nil {
			log.Fatalf("generation failed: %s", err)
		}
		buildErr := pyramid.Build(w)
		if err := w.Close(); err != nil {
			log.Errorf("close %s error ~ %s", out, err)
		}
		if buildErr != nil {
			if err := os.Remove(out); err != nil && !os.IsNotExist(err) {
				log.Errorf("remove partial output %s error ~ %s", out, err)
			}
			log.Fatalf("generation failed: %s", buildErr)
		}
		log.Infof("mbtiles generated: %s", out)
	case FormatFiles:
		if err := pyramid.Build(NewFileTileWriter(out)); err != nil {
			log.Fatalf("generation failed: %s", err)
		}
		log.Infof("tile tree generated: %s", out)
	default:
		log.Fatalf("unknown output format: %s", conf.Output.Format)
	}

	secs := time.Since(start).Seconds()
	log.Printf("\n%.3fs finished...", secs)
}

// confExtent 读取并规范化范围配置
func confExtent() (orb.Bound, error) {
	west, south := conf.Extent.West, conf.Extent.South
	east, north := conf.Extent.East, conf.Extent.North
	// normalize, a reversed rectangle is the same rectangle
	if west > east {
		west, east = east, west
	}
	if south > north {
		south, north = north, south
	}
	for _, v := range []float64{west, south, east, north} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return orb.Bound{}, fmt.Errorf("%w: coordinates must be finite", ErrInvalidExtent)
		}
	}
	return orb.Bound{Min: orb.Point{west, south}, Max: orb.Point{east, north}}, nil
}

// confRenderer 创建配置指定的渲染器
func confRenderer() (Renderer, error) {
	switch conf.Renderer.Type {
	case "xyz":
		if conf.Renderer.URL == "" {
			return nil, fmt.Errorf("renderer.url is required for the xyz renderer")
		}
		return NewXYZRenderer(conf.Renderer.URL), nil
	case "flat":
		c, err := parseHexColor(conf.Renderer.Color)
		if err != nil {
			return nil, err
		}
		return &FlatRenderer{Color: c}, nil
	}
	return nil, fmt.Errorf("unknown renderer type: %s", conf.Renderer.Type)
}
