package main

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// XYZRenderer 在线XYZ瓦片服务渲染器. Repackages a remote raster basemap by
// fetching the tile matching the requested rectangle. Rectangles must be
// tile aligned (they always are, the tile adapter produces them); z/x/y is
// re-derived from the rectangle.
type XYZRenderer struct {
	URL    string
	client *http.Client
}

// NewXYZRenderer 创建XYZ渲染器
func NewXYZRenderer(url string) *XYZRenderer {
	return &XYZRenderer{
		URL:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// TileURL 获取瓦片URL
func (r *XYZRenderer) TileURL(t maptile.Tile) string {
	url := strings.Replace(r.URL, "{x}", strconv.Itoa(int(t.X)), -1)
	url = strings.Replace(url, "{y}", strconv.Itoa(int(t.Y)), -1)
	url = strings.Replace(url, "{z}", strconv.Itoa(int(t.Z)), -1)
	return url
}

func (r *XYZRenderer) Render(extent orb.Bound, crs CRS, width, height int, _ []string) (*image.RGBA, error) {
	switch normalizeCRS(crs) {
	case CRSWGS84:
	case CRSWebMercator:
		b, err := NewEPSGTransform().TransformBound(extent, CRSWebMercator, CRSWGS84)
		if err != nil {
			return nil, err
		}
		extent = b
	default:
		return nil, fmt.Errorf("%w: xyz renderer cannot render %s", ErrUnsupportedProjection, crs)
	}

	t, err := boundTile(extent)
	if err != nil {
		return nil, err
	}

	url := r.TileURL(t)
	resp, err := r.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status code %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("fetch %s: empty tile", url)
	}

	img, err := decodeTileImage(body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	if img.Bounds().Dx() != width || img.Bounds().Dy() != height {
		return nil, fmt.Errorf("fetch %s: wrong tile size %dx%d, expected %dx%d",
			url, img.Bounds().Dx(), img.Bounds().Dy(), width, height)
	}
	return toRGBA(img), nil
}

// boundTile recovers z/x/y from a tile aligned WGS84 rectangle. The zoom
// follows from the longitude span, the indices from the center point.
func boundTile(b orb.Bound) (maptile.Tile, error) {
	span := b.Right() - b.Left()
	if span <= 0 {
		return maptile.Tile{}, fmt.Errorf("degenerate tile extent %v", b)
	}
	z := math.Round(math.Log2(360.0 / span))
	if z < ZoomMin || z > ZoomMax || math.Abs(360.0/math.Exp2(z)-span) > 1e-9 {
		return maptile.Tile{}, fmt.Errorf("extent %v is not tile aligned", b)
	}
	zoom := maptile.Zoom(z)
	x, y := deg2tile((b.Top()+b.Bottom())/2, (b.Left()+b.Right())/2, zoom)
	max := int64(1)<<zoom - 1
	if x < 0 || x > max || y < 0 || y > max {
		return maptile.Tile{}, fmt.Errorf("extent %v is outside the tile grid", b)
	}
	return maptile.Tile{X: uint32(x), Y: uint32(y), Z: zoom}, nil
}

// decodeTileImage sniffs the format from magic bytes, PNG or JPEG.
func decodeTileImage(data []byte) (image.Image, error) {
	switch {
	case len(data) >= 4 && bytes.Equal(data[:4], []byte{0x89, 0x50, 0x4E, 0x47}):
		return png.Decode(bytes.NewReader(data))
	case len(data) >= 2 && bytes.Equal(data[:2], []byte{0xFF, 0xD8}):
		return jpeg.Decode(bytes.NewReader(data))
	}
	return nil, fmt.Errorf("unrecognized image format")
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba
}
