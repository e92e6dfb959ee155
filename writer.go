package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulmach/orb/maptile"
)

// TileWriter 瓦片落地
type TileWriter interface {
	WriteTile(t maptile.Tile, data []byte) error
}

// FileTileWriter 文件树输出, {root}/{z}/{x}/{y}.png. Directory creation is
// idempotent, safe if callers ever run tiles concurrently.
type FileTileWriter struct {
	Root string
}

// NewFileTileWriter 创建文件输出
func NewFileTileWriter(root string) *FileTileWriter {
	return &FileTileWriter{Root: root}
}

func (w *FileTileWriter) WriteTile(t maptile.Tile, data []byte) error {
	dir := filepath.Join(w.Root, fmt.Sprintf("%d", t.Z), fmt.Sprintf("%d", t.X))
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}
	fileName := filepath.Join(dir, fmt.Sprintf("%d.png", t.Y))
	return os.WriteFile(fileName, data, 0o644)
}
