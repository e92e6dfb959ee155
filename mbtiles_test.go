package main

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlipY(t *testing.T) {
	tests := []struct {
		tile maptile.Tile
		want uint32
	}{
		{maptile.Tile{X: 0, Y: 0, Z: 0}, 0},
		{maptile.Tile{X: 0, Y: 0, Z: 1}, 1},
		{maptile.Tile{X: 0, Y: 1, Z: 1}, 0},
		{maptile.Tile{X: 5, Y: 3, Z: 4}, 12},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, flipY(tt.tile), "tile %v", tt.tile)
	}
}

func TestMBTilesWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.mbtiles")
	bounds := orb.Bound{Min: orb.Point{-10, -20}, Max: orb.Point{30, 40}}

	w, err := NewMBTilesWriter(path, "Test Map", bounds, 0, 3)
	require.NoError(t, err)

	require.NoError(t, w.WriteTile(maptile.Tile{X: 1, Y: 0, Z: 1}, []byte("tile-a")))
	require.NoError(t, w.WriteTile(maptile.Tile{X: 0, Y: 1, Z: 1}, []byte("tile-b")))
	// overwrite is allowed
	require.NoError(t, w.WriteTile(maptile.Tile{X: 1, Y: 0, Z: 1}, []byte("tile-a2")))
	require.NoError(t, w.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM tiles`).Scan(&count))
	assert.Equal(t, 2, count)

	// XYZ (1,0,z1) is TMS row 1
	var data []byte
	require.NoError(t, db.QueryRow(
		`SELECT tile_data FROM tiles WHERE zoom_level = 1 AND tile_column = 1 AND tile_row = 1`,
	).Scan(&data))
	assert.Equal(t, []byte("tile-a2"), data)

	var maxzoom string
	require.NoError(t, db.QueryRow(
		`SELECT value FROM metadata WHERE name = 'maxzoom'`,
	).Scan(&maxzoom))
	assert.Equal(t, "3", maxzoom)
}

func TestMBTilesWriterReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.mbtiles")
	bounds := worldBound()

	w, err := NewMBTilesWriter(path, "first", bounds, 0, 1)
	require.NoError(t, err)
	require.NoError(t, w.WriteTile(maptile.Tile{X: 0, Y: 0, Z: 0}, []byte("x")))
	require.NoError(t, w.Close())

	w, err = NewMBTilesWriter(path, "second", bounds, 0, 1)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM tiles`).Scan(&count))
	assert.Equal(t, 0, count)
}
