package preprocess

import (
	"fmt"

	"github.com/google/uuid"
)

// Options contains all configuration for a preprocessing run
type Options struct {
	Output        string
	SourceRoot    string // folder target; output paths mirror the tree below it
	TileSize      int
	Resize        int // 0 disables
	ThumbnailSize int // 0 disables
	Quality       int
	HashNames     bool
	Overwrite     bool
	IgnoreErrors  bool
}

// DefaultTileSize is used when no tile size is configured.
const DefaultTileSize = 256

// Status is the outcome of processing one file.
type Status string

const (
	StatusProcessed Status = "processed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Stage names the step a file failed in.
type Stage string

const (
	StageRead     Stage = "read"
	StageDecode   Stage = "decode"
	StageResize   Stage = "resize"
	StagePlan     Stage = "plan"
	StageWrite    Stage = "write"
	StageCanceled Stage = "canceled"
)

// FileError is returned when a single file cannot be processed.
type FileError struct {
	Path  string
	Stage Stage
	Err   error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Stage, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one file.
type Result struct {
	Path    string
	Status  Status
	Rows    int
	Cols    int
	Written int // files written
	Skipped int // files left alone by the overwrite gate
	Err     error
}

// Summary collects the results of a run.
type Summary struct {
	RunID     uuid.UUID
	Results   []Result
	Processed int
	Skipped   int
	Failed    int
}

func (s *Summary) add(r Result) {
	s.Results = append(s.Results, r)
	switch r.Status {
	case StatusProcessed:
		s.Processed++
	case StatusSkipped:
		s.Skipped++
	case StatusFailed:
		s.Failed++
	}
}
