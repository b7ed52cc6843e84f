// Package testutil builds JPEG fixtures for tests: plain images, and images
// carrying hand-assembled EXIF and XMP segments.
package testutil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// ExifField is one ASCII entry in IFD0.
type ExifField struct {
	Tag   uint16
	Value string
}

// Common IFD0 tags.
const (
	TagMake     uint16 = 0x010F
	TagModel    uint16 = 0x0110
	TagDateTime uint16 = 0x0132
)

// Gradient returns a width x height image whose pixels differ per position,
// so distinct tiles encode to distinct bytes.
func Gradient(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 255 / max(1, width-1)), uint8(y * 255 / max(1, height-1)), 96, 255})
		}
	}
	return img
}

// JPEG encodes a gradient image of the given size.
func JPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, Gradient(width, height), &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

// SolidJPEG encodes an image filled with a single colour.
func SolidJPEG(t *testing.T, width, height int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

// WithExif inserts an APP1 EXIF segment with the given ASCII fields right
// after the start-of-image marker. Apply it after WithXMP: EXIF readers
// expect the EXIF segment to be the first APP1.
func WithExif(t *testing.T, data []byte, fields ...ExifField) []byte {
	t.Helper()
	require.True(t, len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8, "not a jpeg")

	var tiff bytes.Buffer
	le := binary.LittleEndian
	tiff.WriteString("II")
	binary.Write(&tiff, le, uint16(42))
	binary.Write(&tiff, le, uint32(8))

	dataOffset := 8 + 2 + 12*len(fields) + 4
	var values bytes.Buffer
	binary.Write(&tiff, le, uint16(len(fields)))
	for _, f := range fields {
		v := append([]byte(f.Value), 0)
		binary.Write(&tiff, le, f.Tag)
		binary.Write(&tiff, le, uint16(2)) // ASCII
		binary.Write(&tiff, le, uint32(len(v)))
		if len(v) <= 4 {
			padded := make([]byte, 4)
			copy(padded, v)
			tiff.Write(padded)
			continue
		}
		binary.Write(&tiff, le, uint32(dataOffset+values.Len()))
		values.Write(v)
	}
	binary.Write(&tiff, le, uint32(0))
	tiff.Write(values.Bytes())

	payload := append([]byte("Exif\x00\x00"), tiff.Bytes()...)
	return insertSegment(t, data, 0xE1, payload)
}

// WithXMP inserts an APP1 XMP segment listing subjects as dc:subject keywords.
func WithXMP(t *testing.T, data []byte, subjects ...string) []byte {
	t.Helper()

	var items strings.Builder
	for _, s := range subjects {
		fmt.Fprintf(&items, "<rdf:li>%s</rdf:li>", s)
	}
	packet := `<?xpacket begin="" id="W5M0MpCehiHzreSzNTczkc9d"?>` +
		`<x:xmpmeta xmlns:x="adobe:ns:meta/">` +
		`<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">` +
		`<rdf:Description rdf:about="" xmlns:dc="http://purl.org/dc/elements/1.1/">` +
		`<dc:subject><rdf:Bag>` + items.String() + `</rdf:Bag></dc:subject>` +
		`</rdf:Description></rdf:RDF></x:xmpmeta><?xpacket end="w"?>`

	payload := append([]byte("http://ns.adobe.com/xap/1.0/\x00"), packet...)
	return insertSegment(t, data, 0xE1, payload)
}

func insertSegment(t *testing.T, data []byte, marker byte, payload []byte) []byte {
	t.Helper()
	require.Less(t, len(payload)+2, 0x10000, "segment too large")

	out := make([]byte, 0, len(data)+len(payload)+4)
	out = append(out, data[:2]...)
	out = append(out, 0xFF, marker)
	out = binary.BigEndian.AppendUint16(out, uint16(len(payload)+2))
	out = append(out, payload...)
	out = append(out, data[2:]...)
	return out
}

// WriteFile writes data under dir, creating parent folders, and returns the path.
func WriteFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}
