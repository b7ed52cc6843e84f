package metadata

import "time"

// Sidecar is the JSON record written alongside each processed image.
type Sidecar struct {
	Source         string            `json:"source"`
	OriginalWidth  int               `json:"original_width"`
	OriginalHeight int               `json:"original_height"`
	Width          int               `json:"width"`
	Height         int               `json:"height"`
	Image          string            `json:"image"`
	Thumbnail      string            `json:"thumbnail,omitempty"`
	TileSize       int               `json:"tile_size"`
	Rows           int               `json:"rows"`
	Cols           int               `json:"cols"`
	Tiles          [][]string        `json:"tiles"` // rows, then columns
	Tags           []string          `json:"tags"`
	Exif           map[string]string `json:"exif"`
	CapturedAt     *time.Time        `json:"captured_at,omitempty"`
	Latitude       *float64          `json:"latitude,omitempty"`
	Longitude      *float64          `json:"longitude,omitempty"`
	MissingMeta    bool              `json:"missing_metadata"`
}

// Apply copies extracted metadata into the sidecar.
func (s *Sidecar) Apply(md *Metadata) {
	if md == nil {
		s.Exif = map[string]string{}
		s.Tags = []string{}
		return
	}
	s.Exif = md.Exif
	s.Tags = md.Tags
	s.CapturedAt = md.CapturedAt
	s.Latitude = md.Latitude
	s.Longitude = md.Longitude
}
