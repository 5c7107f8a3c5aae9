package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/mandelsoft/vfs/pkg/vfs"

	"github.com/nicoalimin/talentscan/db/models"
	"github.com/nicoalimin/talentscan/db/types"
)

// Supported resume document types, by file extension.
var mimeTypes = map[string]string{
	".pdf": "application/pdf",
	".txt": "text/plain",
	".md":  "text/markdown",
}

// Processor ingests resume documents from a directory into the database.
type Processor struct {
	fs        vfs.FileSystem
	db        types.Querier
	extractor Extractor
	logger    *slog.Logger
}

// NewProcessor creates a new resume processor.
func NewProcessor(fs vfs.FileSystem, db types.Querier, extractor Extractor, logger *slog.Logger) *Processor {
	return &Processor{fs: fs, db: db, extractor: extractor, logger: logger}
}

// Result summarizes a single processing run.
type Result struct {
	Processed []string
	Skipped   []string
}

// ProcessDir extracts and stores candidate data from every supported resume
// file in dir. Files already ingested are skipped, keyed by their filename.
func (p *Processor) ProcessDir(ctx context.Context, dir string) (*Result, error) {
	entries, err := vfs.ReadDir(p.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed reading resume directory '%s': %w", dir, err)
	}

	res := &Result{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		filename := entry.Name()
		mimeType, ok := mimeTypes[strings.ToLower(filepath.Ext(filename))]
		if !ok {
			p.logger.Debug("skipping unsupported file", "filename", filename)
			continue
		}

		ingested, err := p.alreadyIngested(ctx, filename)
		if err != nil {
			return res, err
		}
		if ingested {
			p.logger.Info("skipping already processed resume", "filename", filename)
			res.Skipped = append(res.Skipped, filename)
			continue
		}

		p.logger.Info("processing resume", "filename", filename)
		data, err := vfs.ReadFile(p.fs, filepath.Join(dir, filename))
		if err != nil {
			return res, fmt.Errorf("failed reading resume '%s': %w", filename, err)
		}

		profile, err := p.extractor.Extract(ctx, &Document{
			Filename: filename,
			MIMEType: mimeType,
			Data:     data,
		})
		if err != nil {
			return res, fmt.Errorf("failed extracting data from '%s': %w", filename, err)
		}

		candidate := profile.Candidate(filename)
		if err := candidate.Save(ctx, p.db); err != nil {
			var dupErr *types.DuplicateError
			if errors.As(err, &dupErr) {
				// Raced with another ingestion of the same file.
				res.Skipped = append(res.Skipped, filename)
				continue
			}
			return res, err
		}

		res.Processed = append(res.Processed, filename)
		p.logger.Info("added candidate", "filename", filename, "name", candidate.Name)
	}

	return res, nil
}

func (p *Processor) alreadyIngested(ctx context.Context, filename string) (bool, error) {
	c := &models.Candidate{Filename: filename}
	err := c.Load(ctx, p.db)
	if err == nil {
		return true, nil
	}

	var nrErr types.NoResultError
	if errors.As(err, &nrErr) {
		return false, nil
	}

	return false, err
}
