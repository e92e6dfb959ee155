package main

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stagingDirs(t *testing.T) map[string]bool {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(os.TempDir(), "smp-*"))
	require.NoError(t, err)
	set := make(map[string]bool, len(matches))
	for _, m := range matches {
		set[m] = true
	}
	return set
}

func newStagingDirs(before, after map[string]bool) []string {
	var diff []string
	for d := range after {
		if !before[d] {
			diff = append(diff, d)
		}
	}
	return diff
}

func worldGenerator(t *testing.T, r Renderer, minZoom, maxZoom int) *SMPGenerator {
	t.Helper()
	ctx := wgs84Context(r)
	p, err := NewPyramid(ctx, worldBound(), minZoom, maxZoom, nil)
	require.NoError(t, err)
	return &SMPGenerator{
		Pyramid:  p,
		Name:     "Test Map",
		SourceID: "mbtiles-source",
		ZoomCap:  DefaultZoomCap,
	}
}

func TestGenerateArchiveRoundTrip(t *testing.T) {
	before := stagingDirs(t)

	out := filepath.Join(t.TempDir(), "world.smp")
	gen := worldGenerator(t, &FlatRenderer{}, 0, 2)

	path, err := gen.Generate(out)
	require.NoError(t, err)
	assert.Equal(t, out, path)

	// 无残留临时目录
	assert.Empty(t, newStagingDirs(before, stagingDirs(t)))

	zr, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer zr.Close()

	var styleData []byte
	pngCount := 0
	for _, f := range zr.File {
		switch {
		case f.Name == "style.json":
			rc, err := f.Open()
			require.NoError(t, err)
			styleData, err = io.ReadAll(rc)
			rc.Close()
			require.NoError(t, err)
		case strings.HasPrefix(f.Name, "s/0/") && strings.HasSuffix(f.Name, ".png"):
			pngCount++
			assert.Equal(t, zip.Deflate, f.Method, "entry %s", f.Name)
		default:
			t.Errorf("unexpected archive entry: %s", f.Name)
		}
	}

	// 1 + 4 + 16 tiles
	assert.Equal(t, 21, pngCount)

	require.NotNil(t, styleData, "style.json missing from archive")
	var style Style
	require.NoError(t, json.Unmarshal(styleData, &style))
	assert.Equal(t, 2, style.Metadata.MaxZoom)
	assert.Equal(t, map[string]string{"mbtiles-source": "0"}, style.Metadata.SourceFolders)
	assert.Equal(t, []string{TileURLTemplate}, style.Sources["mbtiles-source"].Tiles)
}

func TestGenerateSingleTileWorld(t *testing.T) {
	out := filepath.Join(t.TempDir(), "z0.smp")
	gen := worldGenerator(t, &FlatRenderer{}, 0, 0)

	_, err := gen.Generate(out)
	require.NoError(t, err)

	zr, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer zr.Close()

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"style.json", "s/0/0/0/0.png"}, names)
}

func TestGenerateCleansUpOnFailure(t *testing.T) {
	before := stagingDirs(t)

	out := filepath.Join(t.TempDir(), "broken.smp")
	gen := worldGenerator(t, &recordingRenderer{err: errors.New("render broke")}, 0, 1)

	_, err := gen.Generate(out)
	require.Error(t, err)

	assert.Empty(t, newStagingDirs(before, stagingDirs(t)))
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no archive should remain after a failed run")
}

func TestGenerateKeepStaging(t *testing.T) {
	before := stagingDirs(t)

	out := filepath.Join(t.TempDir(), "keep.smp")
	gen := worldGenerator(t, &FlatRenderer{}, 0, 0)
	gen.KeepStaging = true

	_, err := gen.Generate(out)
	require.NoError(t, err)

	kept := newStagingDirs(before, stagingDirs(t))
	require.Len(t, kept, 1)
	_, err = os.Stat(filepath.Join(kept[0], "style.json"))
	assert.NoError(t, err)
	os.RemoveAll(kept[0])
}
