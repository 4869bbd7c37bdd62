// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rewrite

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/pdiddy/to-webp/pkg/types"
)

// Lister enumerates the entry names of a posts directory.
type Lister interface {
	List(dir string) ([]string, error)
}

// DirLister lists every entry of a directory on an afero filesystem, one
// level deep, with no filtering. Subdirectories are returned too and fail
// later as documents.
type DirLister struct {
	Fs afero.Fs
}

// List returns entry names in the order afero reports them (by name).
func (l DirLister) List(dir string) ([]string, error) {
	infos, err := afero.ReadDir(l.Fs, dir)
	if err != nil {
		return nil, fmt.Errorf("reading posts directory %s: %w", dir, err)
	}
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name()
	}
	return names, nil
}

// DocumentFailure pairs a document path with the error that stopped it.
type DocumentFailure struct {
	Path string
	Err  error
}

// BatchResult holds the outcome of a batch run.
type BatchResult struct {
	Rewritten int
	Unchanged int
	Failed    int

	Documents []DocumentResult
	Failures  []DocumentFailure
}

// Total returns the number of documents processed.
func (r BatchResult) Total() int {
	return r.Rewritten + r.Unchanged + r.Failed
}

// HasFailures reports whether any document failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// RunBatch processes every entry of postsDir in listing order. A failing
// document is logged and counted and the batch moves on; only a listing
// failure is returned as an error.
func (p *Pipeline) RunBatch(ctx context.Context, lister Lister, postsDir, imagesRoot string) (BatchResult, error) {
	var result BatchResult

	names, err := lister.List(postsDir)
	if err != nil {
		return result, err
	}

	for _, name := range names {
		docPath := filepath.Join(postsDir, name)
		p.logger.Info().Str("document", docPath).Msgf("Start: %s", name)

		doc, err := p.ProcessDocument(ctx, docPath, imagesRoot)
		result.Documents = append(result.Documents, doc)

		switch {
		case err != nil:
			result.Failed++
			result.Failures = append(result.Failures, DocumentFailure{Path: docPath, Err: err})
			p.logger.Error().Err(err).Str("document", docPath).Msgf("Failed: %s", name)
		case doc.Status == types.DocumentUnchanged:
			result.Unchanged++
			p.logger.Debug().Str("document", docPath).Msg("unchanged")
		default:
			result.Rewritten++
		}
	}

	p.logger.Info().
		Int("rewritten", result.Rewritten).
		Int("unchanged", result.Unchanged).
		Int("failed", result.Failed).
		Msgf("Batch summary: %d rewritten, %d unchanged, %d failed (total: %d)",
			result.Rewritten, result.Unchanged, result.Failed, result.Total())
	return result, nil
}
