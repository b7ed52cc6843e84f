// Package preprocess runs the per-image pipeline: load, extract metadata,
// resize, thumbnail, tile and write outputs.
package preprocess

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kiesman99/leptile/internal/metadata"
	"github.com/kiesman99/leptile/internal/output"
	"github.com/kiesman99/leptile/internal/source"
	"github.com/kiesman99/leptile/pkg/tile"
)

// Processor handles the per-file preprocessing logic
type Processor struct {
	options *Options
	writer  *output.Writer
	log     logrus.FieldLogger
}

// New creates a new processor instance
func New(opts *Options, log logrus.FieldLogger) *Processor {
	if opts.TileSize == 0 {
		opts.TileSize = DefaultTileSize
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Processor{
		options: opts,
		writer:  output.NewWriter(opts.Overwrite, opts.Quality),
		log:     log,
	}
}

// Run processes files in order. Without IgnoreErrors the first failing file
// stops the run and its error is returned along with the partial summary.
func (p *Processor) Run(ctx context.Context, files []string) (*Summary, error) {
	summary := &Summary{RunID: uuid.New()}
	log := p.log.WithField("run", summary.RunID.String())

	log.WithFields(logrus.Fields{
		"files":     len(files),
		"output":    p.options.Output,
		"tile_size": p.options.TileSize,
	}).Info("Starting run")

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			fe := &FileError{Path: path, Stage: StageCanceled, Err: err}
			log.WithError(err).Warn("Run interrupted")
			return summary, fe
		}

		log.WithFields(logrus.Fields{
			"file":     path,
			"progress": fmt.Sprintf("%d/%d", i+1, len(files)),
		}).Debug("Processing file")

		res := p.ProcessFile(ctx, path)
		summary.add(res)

		entry := log.WithFields(logrus.Fields{
			"file":    path,
			"status":  res.Status,
			"written": res.Written,
			"skipped": res.Skipped,
		})
		switch res.Status {
		case StatusFailed:
			if !p.options.IgnoreErrors {
				entry.WithError(res.Err).Error("Failed to process file")
				return summary, res.Err
			}
			entry.WithError(res.Err).Warn("Failed to process file; continuing")
		case StatusSkipped:
			entry.Info("Outputs already exist; skipped")
		default:
			entry.WithFields(logrus.Fields{
				"rows": res.Rows,
				"cols": res.Cols,
			}).Info("Processed file")
		}
	}

	log.WithFields(logrus.Fields{
		"processed": summary.Processed,
		"skipped":   summary.Skipped,
		"failed":    summary.Failed,
	}).Info("Run finished")

	return summary, nil
}

// ProcessFile runs the full pipeline for a single image.
func (p *Processor) ProcessFile(ctx context.Context, path string) Result {
	res := Result{Path: path}
	log := p.log.WithField("file", path)

	fail := func(stage Stage, err error) Result {
		res.Status = StatusFailed
		res.Err = &FileError{Path: path, Stage: stage, Err: err}
		return res
	}

	img, data, err := source.Load(path)
	if err != nil {
		if data == nil {
			return fail(StageRead, err)
		}
		return fail(StageDecode, err)
	}
	origW, origH := img.Bounds().Dx(), img.Bounds().Dy()

	md, mdErr := metadata.Extract(data)
	if mdErr != nil {
		log.WithError(mdErr).Warn("Could not read EXIF data; writing partial sidecar")
	}
	switch {
	case errors.Is(md.XMPErr, metadata.ErrNoXMP):
		log.Debug("No XMP packet; assuming there are no tags")
	case md.XMPErr != nil:
		log.WithError(md.XMPErr).Warn("Could not read XMP tags; assuming there are no tags")
	}

	primary := img
	if p.options.Resize > 0 {
		primary, err = fitImage(img, p.options.Resize)
		if err != nil {
			return fail(StageResize, err)
		}
		if primary != img {
			log.WithFields(logrus.Fields{
				"from": fmt.Sprintf("%dx%d", origW, origH),
				"to":   fmt.Sprintf("%dx%d", primary.Bounds().Dx(), primary.Bounds().Dy()),
			}).Debug("Resized image")
		}
	}

	grid, err := tile.Plan(primary.Bounds().Dx(), primary.Bounds().Dy(), p.options.TileSize)
	if err != nil {
		return fail(StagePlan, err)
	}
	res.Rows, res.Cols = grid.Rows, grid.Cols

	if primary.Bounds().Dx()%grid.Size != 0 || primary.Bounds().Dy()%grid.Size != 0 {
		log.WithFields(logrus.Fields{
			"edge_width":  primary.Bounds().Dx() % grid.Size,
			"edge_height": primary.Bounds().Dy() % grid.Size,
		}).Debug("Dimensions are not multiples of the tile size; edge tiles are clipped")
	}

	dir := p.outputDir(path)
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	sidecar := &metadata.Sidecar{
		Source:         filepath.Base(path),
		OriginalWidth:  origW,
		OriginalHeight: origH,
		Width:          primary.Bounds().Dx(),
		Height:         primary.Bounds().Dy(),
		Image:          stem + ".jpg",
		TileSize:       grid.Size,
		Rows:           grid.Rows,
		Cols:           grid.Cols,
		MissingMeta:    errors.Is(mdErr, metadata.ErrMissingMetadata),
	}
	sidecar.Apply(md)

	// record reports whether a write error should abort the file.
	record := func(err error) error {
		switch {
		case err == nil:
			res.Written++
			return nil
		case errors.Is(err, output.ErrOutputExists):
			res.Skipped++
			log.WithError(err).Debug("Skipping existing output")
			return nil
		default:
			return err
		}
	}

	// Hashed names repeat for identical tiles; each is written once.
	written := make(map[string]bool)
	tiles := make([][]string, grid.Rows)
	for row := 0; row < grid.Rows; row++ {
		tiles[row] = make([]string, 0, grid.Cols)
		for col := 0; col < grid.Cols; col++ {
			if err := ctx.Err(); err != nil {
				return fail(StageCanceled, err)
			}
			region, _ := grid.At(row, col)
			name, encoded, err := p.writer.EncodeTile(primary, region, p.options.HashNames)
			if err != nil {
				return fail(StageWrite, err)
			}
			if !written[name] {
				written[name] = true
				if err := record(p.writer.WriteFile(output.TilePath(dir, name), encoded)); err != nil {
					return fail(StageWrite, err)
				}
			}
			tiles[row] = append(tiles[row], filepath.ToSlash(filepath.Join(output.TilesDir, name)))
			log.WithFields(logrus.Fields{
				"row":  row,
				"col":  col,
				"tile": name,
			}).Debug("Saved tile")
		}
	}
	sidecar.Tiles = tiles

	_, err = p.writer.WriteImage(dir, sidecar.Image, primary)
	if err := record(err); err != nil {
		return fail(StageWrite, err)
	}

	if p.options.ThumbnailSize > 0 {
		thumb, err := fitImage(img, p.options.ThumbnailSize)
		if err != nil {
			return fail(StageResize, err)
		}
		sidecar.Thumbnail = stem + "_thumb.jpg"
		_, err = p.writer.WriteImage(dir, sidecar.Thumbnail, thumb)
		if err := record(err); err != nil {
			return fail(StageWrite, err)
		}
	}

	_, err = p.writer.WriteSidecar(dir, stem+".json", sidecar)
	if err := record(err); err != nil {
		return fail(StageWrite, err)
	}

	res.Status = StatusProcessed
	if res.Written == 0 {
		res.Status = StatusSkipped
	}
	return res
}

// outputDir returns the folder for one image's outputs, mirroring its
// location below the source root. The folder is named after the full file
// name so bear.jpg and bear.jpeg never share one.
func (p *Processor) outputDir(path string) string {
	name := filepath.Base(path)
	if p.options.SourceRoot != "" {
		if rel, err := filepath.Rel(p.options.SourceRoot, filepath.Dir(path)); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
			return filepath.Join(p.options.Output, rel, name)
		}
	}
	return filepath.Join(p.options.Output, name)
}

// fitImage scales img down so its long edge is at most bound. The same image
// is returned when it already fits.
func fitImage(img image.Image, bound int) (image.Image, error) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	nw, nh, err := tile.FitWithin(w, h, bound)
	if err != nil {
		return nil, err
	}
	if nw == w && nh == h {
		return img, nil
	}
	return imaging.Resize(img, nw, nh, imaging.Lanczos), nil
}
