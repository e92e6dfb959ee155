package main

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/teris-io/shortid"
)

// SMPGenerator SMP包生成器. Lays out a staging tree (style.json at the root,
// tiles under s/0), zips it up and always releases the staging directory,
// success or failure.
type SMPGenerator struct {
	Pyramid     *Pyramid
	Name        string
	SourceID    string
	ZoomCap     int
	KeepStaging bool
}

// Generate 生成SMP文件, returns the archive path.
func (g *SMPGenerator) Generate(outputPath string) (string, error) {
	id, err := shortid.Generate()
	if err != nil {
		return "", fmt.Errorf("staging id: %w", err)
	}
	staging, err := os.MkdirTemp("", "smp-"+id+"-")
	if err != nil {
		return "", fmt.Errorf("create staging directory: %w", err)
	}
	log.Infof("using staging directory: %s", staging)
	defer g.cleanup(staging)

	style := NewStyle(g.Name, g.SourceID, g.Pyramid.WGS84, g.Pyramid.MinZoom, g.Pyramid.MaxZoom, g.ZoomCap)
	if err := writeStyle(style, filepath.Join(staging, "style.json")); err != nil {
		return "", err
	}

	if err := g.Pyramid.Build(NewFileTileWriter(filepath.Join(staging, "s", "0"))); err != nil {
		return "", err
	}

	if err := zipTree(staging, outputPath); err != nil {
		// a half written archive is worse than none
		if rmErr := os.Remove(outputPath); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Errorf("remove partial archive %s error ~ %s", outputPath, rmErr)
		}
		return "", fmt.Errorf("create archive %s: %w", outputPath, err)
	}
	return outputPath, nil
}

// cleanup 清理临时目录, best effort, errors are logged and never raised.
func (g *SMPGenerator) cleanup(staging string) {
	if g.KeepStaging {
		log.Warnf("keeping staging directory: %s", staging)
		return
	}
	if err := os.RemoveAll(staging); err != nil {
		log.Errorf("clean staging directory %s error ~ %s", staging, err)
		return
	}
	log.Infof("cleaned up staging directory: %s", staging)
}

// writeStyle 写出样式文档
func writeStyle(style *Style, path string) error {
	data, err := json.MarshalIndent(style, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal style: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// zipTree 打包目录, deflate compressed, entry names relative to root.
func zipTree(root, outputPath string) error {
	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(out)
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
	if err != nil {
		zw.Close()
		out.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
