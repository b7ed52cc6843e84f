// Package metadata extracts EXIF and XMP information from JPEG files and
// defines the sidecar record written next to each processed image.
package metadata

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// ErrMissingMetadata is returned when EXIF data is absent or unreadable. It
// is never fatal: the accompanying Metadata is still usable.
var ErrMissingMetadata = errors.New("missing metadata")

// Metadata is what could be read from one image.
type Metadata struct {
	Exif       map[string]string
	Tags       []string
	CapturedAt *time.Time
	Latitude   *float64
	Longitude  *float64

	// XMPErr records why no tags were read, ErrNoXMP when the image simply
	// has no XMP packet. It does not make the metadata missing.
	XMPErr error `json:"-"`
}

// tagCollector implements exif.Walker and renders every tag as a string.
type tagCollector struct {
	tags map[string]string
}

func (c *tagCollector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	if tag.Format() == tiff.StringVal {
		if s, err := tag.StringVal(); err == nil {
			c.tags[string(name)] = s
			return nil
		}
	}
	c.tags[string(name)] = tag.String()
	return nil
}

// Extract reads EXIF and XMP metadata from JPEG bytes. The returned Metadata
// is never nil. On ErrMissingMetadata it holds whatever was found, possibly
// only XMP tags.
func Extract(data []byte) (*Metadata, error) {
	md := &Metadata{
		Exif: make(map[string]string),
	}

	md.Tags, md.XMPErr = ReadXMPTags(data)

	if err := md.readExif(data); err != nil {
		return md, fmt.Errorf("%w: %w", ErrMissingMetadata, err)
	}
	return md, nil
}

func (md *Metadata) readExif(data []byte) error {
	x, err := exif.Decode(bytes.NewReader(data))
	if x == nil {
		if err == nil {
			err = errors.New("no exif data")
		}
		return fmt.Errorf("exif: %w", err)
	}

	collector := &tagCollector{tags: md.Exif}
	if err := x.Walk(collector); err != nil {
		return fmt.Errorf("exif walk: %w", err)
	}

	if t, err := x.DateTime(); err == nil {
		md.CapturedAt = &t
	}
	if lat, long, err := x.LatLong(); err == nil {
		md.Latitude = &lat
		md.Longitude = &long
	}

	return nil
}
