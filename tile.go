package main

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// TileSize 默认瓦片大小
const TileSize = 256

// ZoomMin 最小级别
const ZoomMin = 0

// ZoomMax 最大级别
const ZoomMax = 22

// WebMercatorLatMax web mercator is only defined within this latitude
const WebMercatorLatMax = 85.0511

// deg2tile lat/lon to tile numbers at zoom, per the OSM slippy map scheme.
// No clamping here, callers clamp.
// https://wiki.openstreetmap.org/wiki/Slippy_map_tilenames
func deg2tile(lat, lon float64, zoom maptile.Zoom) (x, y int64) {
	latRad := lat * math.Pi / 180
	n := float64(int64(1) << zoom)
	x = int64(math.Floor((lon + 180.0) / 360.0 * n))
	y = int64(math.Floor((1.0 - math.Asinh(math.Tan(latRad))/math.Pi) / 2.0 * n))
	return
}

// tile2deg tile numbers to lat/lon of the tile's NW corner. The SE corner
// of tile (x,y) is the NW corner of tile (x+1,y+1).
func tile2deg(x, y int64, zoom maptile.Zoom) (lat, lon float64) {
	n := float64(int64(1) << zoom)
	lon = float64(x)/n*360.0 - 180.0
	latRad := math.Atan(math.Sinh(math.Pi * (1 - 2*float64(y)/n)))
	lat = latRad * 180 / math.Pi
	return
}

// tileBound WGS84 rectangle of a tile
func tileBound(t maptile.Tile) orb.Bound {
	north, west := tile2deg(int64(t.X), int64(t.Y), t.Z)
	south, east := tile2deg(int64(t.X)+1, int64(t.Y)+1, t.Z)
	return orb.Bound{Min: orb.Point{west, south}, Max: orb.Point{east, north}}
}

// TileRange 某一级别覆盖范围内的瓦片行列区间, bounds inclusive
type TileRange struct {
	Zoom maptile.Zoom
	MinX uint32
	MaxX uint32
	MinY uint32
	MaxY uint32
}

// Count 瓦片数
func (r TileRange) Count() int64 {
	return int64(r.MaxX-r.MinX+1) * int64(r.MaxY-r.MinY+1)
}

// Contains reports whether the tile sits inside the range.
func (r TileRange) Contains(t maptile.Tile) bool {
	return t.Z == r.Zoom &&
		t.X >= r.MinX && t.X <= r.MaxX &&
		t.Y >= r.MinY && t.Y <= r.MaxY
}

// tileRange tiles covering a WGS84 extent at one zoom level. Latitude is
// clamped to the web mercator range first. Tile y grows southward, so the
// north edge yields MinY and the south edge MaxY.
func tileRange(extent orb.Bound, zoom maptile.Zoom) TileRange {
	north := clampFloat(extent.Top(), -WebMercatorLatMax, WebMercatorLatMax)
	south := clampFloat(extent.Bottom(), -WebMercatorLatMax, WebMercatorLatMax)

	minX, minY := deg2tile(north, extent.Left(), zoom)
	maxX, maxY := deg2tile(south, extent.Right(), zoom)

	max := int64(1)<<zoom - 1
	return TileRange{
		Zoom: zoom,
		MinX: uint32(clampInt(minX, 0, max)),
		MaxX: uint32(clampInt(maxX, 0, max)),
		MinY: uint32(clampInt(minY, 0, max)),
		MaxY: uint32(clampInt(maxY, 0, max)),
	}
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func clampInt(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
