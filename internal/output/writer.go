// Package output encodes and writes the files produced for each image:
// the full image, an optional thumbnail, its tiles and the JSON sidecar.
package output

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/kiesman99/leptile/pkg/tile"
)

// ErrOutputExists is returned when a target file exists and overwriting is
// disabled. Nothing is written in that case.
var ErrOutputExists = errors.New("output exists")

// DefaultQuality is the JPEG quality used when none is configured.
const DefaultQuality = 90

// TilesDir is the subfolder of an image's output folder holding its tiles.
const TilesDir = "tiles"

// Writer writes encoded outputs through the overwrite gate.
type Writer struct {
	Overwrite bool
	Quality   int
}

// NewWriter creates a writer. A quality outside 1-100 falls back to
// DefaultQuality.
func NewWriter(overwrite bool, quality int) *Writer {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	return &Writer{Overwrite: overwrite, Quality: quality}
}

// EncodeJPEG encodes img at the writer's quality.
func (w *Writer) EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(w.Quality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteImage encodes img as JPEG and writes it to dir/name.
func (w *Writer) WriteImage(dir, name string, img image.Image) (string, error) {
	data, err := w.EncodeJPEG(img)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	return path, w.WriteFile(path, data)
}

// EncodeTile crops region out of img and encodes it. The returned name is
// relative to the tiles folder and is either the grid position or, with
// hashNames, the SHA-1 of the encoded tile.
func (w *Writer) EncodeTile(img image.Image, region tile.Region, hashNames bool) (string, []byte, error) {
	// Regions are zero-origin; shift them into the image's bounds.
	rect := region.Rect().Add(img.Bounds().Min)
	data, err := w.EncodeJPEG(imaging.Crop(img, rect))
	if err != nil {
		return "", nil, err
	}

	name := TileName(region)
	if hashNames {
		name = HashName(data)
	}
	return name, data, nil
}

// TilePath returns where a tile named name lives under an image's folder.
func TilePath(dir, name string) string {
	return filepath.Join(dir, TilesDir, name)
}

// WriteSidecar writes v as indented JSON to dir/name.
func (w *Writer) WriteSidecar(dir, name string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal sidecar: %w", err)
	}
	path := filepath.Join(dir, name)
	return path, w.WriteFile(path, append(data, '\n'))
}

// WriteFile writes data to path, creating parent folders. Existing files are
// left alone unless the writer overwrites.
func (w *Writer) WriteFile(path string, data []byte) error {
	if !w.Overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrOutputExists, path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to stat output: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output folder: %w", err)
	}

	// Written through a temp file so readers never see a partial tile.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".leptile-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// TileName returns the positional file name of a tile, e.g. r002_c010.jpg.
func TileName(region tile.Region) string {
	return fmt.Sprintf("r%03d_c%03d.jpg", region.Row, region.Col)
}

// HashName returns the content-addressed file name of an encoded tile.
func HashName(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:]) + ".jpg"
}
