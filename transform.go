package main

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/paulmach/orb"
)

// CRS 坐标系标识, e.g. "EPSG:4326"
type CRS string

const (
	CRSWGS84       CRS = "EPSG:4326"
	CRSWebMercator CRS = "EPSG:3857"
)

// ErrUnsupportedProjection 该坐标系无法与WGS84互转
var ErrUnsupportedProjection = errors.New("unsupported projection")

// CoordinateTransform 坐标转换
type CoordinateTransform interface {
	TransformBound(b orb.Bound, from, to CRS) (orb.Bound, error)
}

// epsgTransform 内置坐标转换, identity plus EPSG:4326 <-> EPSG:3857
type epsgTransform struct{}

// NewEPSGTransform 创建内置坐标转换
func NewEPSGTransform() CoordinateTransform {
	return epsgTransform{}
}

func (epsgTransform) TransformBound(b orb.Bound, from, to CRS) (orb.Bound, error) {
	from, to = normalizeCRS(from), normalizeCRS(to)
	switch {
	case from == to:
		return b, nil
	case from == CRSWGS84 && to == CRSWebMercator:
		minX, minY := project(b.Bottom(), b.Left())
		maxX, maxY := project(b.Top(), b.Right())
		return orb.Bound{Min: orb.Point{minX, minY}, Max: orb.Point{maxX, maxY}}, nil
	case from == CRSWebMercator && to == CRSWGS84:
		south, west := unproject(b.Left(), b.Bottom())
		north, east := unproject(b.Right(), b.Top())
		return orb.Bound{Min: orb.Point{west, south}, Max: orb.Point{east, north}}, nil
	}
	return orb.Bound{}, fmt.Errorf("%w: no transform from %s to %s", ErrUnsupportedProjection, from, to)
}

// normalizeCRS 规范坐标系名称
func normalizeCRS(crs CRS) CRS {
	switch strings.ToUpper(strings.TrimSpace(string(crs))) {
	case "EPSG:4326", "CRS:84", "WGS84", "":
		return CRSWGS84
	case "EPSG:3857", "EPSG:900913", "EPSG:102100":
		return CRSWebMercator
	}
	return CRS(strings.ToUpper(strings.TrimSpace(string(crs))))
}

// originShift 2 * pi * 6378137 / 2
const originShift = 20037508.342789244

// project WGS84 lat/lon to spherical mercator meters
func project(lat, lon float64) (x, y float64) {
	x = lon * originShift / 180.0
	y = math.Log(math.Tan((90+lat)*math.Pi/360.0)) / (math.Pi / 180.0)
	y = y * originShift / 180.0
	return
}

// unproject spherical mercator meters to WGS84 lat/lon
func unproject(x, y float64) (lat, lon float64) {
	lon = x / originShift * 180.0
	lat = math.Atan(math.Sinh(y/originShift*math.Pi)) * 180.0 / math.Pi
	return
}
