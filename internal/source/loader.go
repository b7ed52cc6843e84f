package source

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
)

// ErrUnsupportedFormat is returned for input that is not a JPEG image.
var ErrUnsupportedFormat = errors.New("unsupported image format")

var jpegMagic = []byte{0xFF, 0xD8, 0xFF}

// IsJPEG reports whether data starts with the JPEG start-of-image marker.
func IsJPEG(data []byte) bool {
	return len(data) >= len(jpegMagic) && bytes.Equal(data[:len(jpegMagic)], jpegMagic)
}

// Load reads and decodes the JPEG at path. The EXIF orientation tag is
// applied so the returned pixels are upright. The raw file bytes are
// returned whenever the read succeeded, even if decoding failed.
func Load(path string) (image.Image, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read image: %w", err)
	}
	img, err := Decode(data)
	return img, data, err
}

// Decode decodes JPEG bytes, rejecting anything else.
func Decode(data []byte) (image.Image, error) {
	if !IsJPEG(data) {
		return nil, ErrUnsupportedFormat
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}
