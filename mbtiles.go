package main

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// MBTilesWriter MBTiles输出. Writes the pyramid into an MBTiles 1.3
// database; rows are TMS, so y is flipped on the way in.
type MBTilesWriter struct {
	db     *sql.DB
	insert *sql.Stmt
}

// NewMBTilesWriter 创建MBTiles输出, replaces any existing file.
func NewMBTilesWriter(path, name string, bounds orb.Bound, minZoom, maxZoom int) (*MBTilesWriter, error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("remove %s: %w", path, err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	ddl := []string{
		`CREATE TABLE metadata (name TEXT, value TEXT)`,
		`CREATE TABLE tiles (zoom_level INTEGER, tile_column INTEGER, tile_row INTEGER, tile_data BLOB)`,
		`CREATE UNIQUE INDEX tile_index ON tiles (zoom_level, tile_column, tile_row)`,
	}
	for _, stmt := range ddl {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init %s: %w", path, err)
		}
	}

	center := fmt.Sprintf("%f,%f,%d",
		(bounds.Left()+bounds.Right())/2, (bounds.Bottom()+bounds.Top())/2, minZoom)
	metadata := [][2]string{
		{"name", name},
		{"format", PNG},
		{"type", "baselayer"},
		{"version", "1"},
		{"bounds", fmt.Sprintf("%f,%f,%f,%f", bounds.Left(), bounds.Bottom(), bounds.Right(), bounds.Top())},
		{"center", center},
		{"minzoom", fmt.Sprintf("%d", minZoom)},
		{"maxzoom", fmt.Sprintf("%d", maxZoom)},
	}
	for _, kv := range metadata {
		if _, err := db.Exec(`INSERT INTO metadata (name, value) VALUES (?, ?)`, kv[0], kv[1]); err != nil {
			db.Close()
			return nil, fmt.Errorf("write metadata: %w", err)
		}
	}

	insert, err := db.Prepare(`INSERT OR REPLACE INTO tiles (zoom_level, tile_column, tile_row, tile_data) VALUES (?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	return &MBTilesWriter{db: db, insert: insert}, nil
}

func (w *MBTilesWriter) WriteTile(t maptile.Tile, data []byte) error {
	_, err := w.insert.Exec(int(t.Z), int(t.X), int(flipY(t)), data)
	return err
}

// Close 关闭数据库
func (w *MBTilesWriter) Close() error {
	w.insert.Close()
	return w.db.Close()
}

// flipY XYZ row to TMS row
func flipY(t maptile.Tile) uint32 {
	return (1 << uint32(t.Z)) - t.Y - 1
}
