// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rewrite converts the images referenced by blog posts and rewrites
// the posts to point at the converted files.
//
// Each document goes through four steps: scan for references, convert each
// referenced image in textual order, splice the canonical WebP reference
// into the text, and replace the file. A malformed reference stops the
// document before any image is touched. A conversion failure stops the
// document before its text is written; images converted earlier in the same
// document stay converted and the next run picks them up through the
// already-converted skip.
package rewrite

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/pdiddy/to-webp/internal/fsutil"
	"github.com/pdiddy/to-webp/internal/reference"
	"github.com/pdiddy/to-webp/pkg/types"
)

// Recoder converts one image. *recode.Recoder implements it.
type Recoder interface {
	Recode(ctx context.Context, sourcePath, targetPath string) (types.RecodeResult, error)
}

// DocumentResult summarizes one processed document.
type DocumentResult struct {
	Path       string
	Status     types.DocumentStatus
	References int
	Converted  int
	Skipped    int
}

// Pipeline rewrites documents on fs, converting images with recoder.
type Pipeline struct {
	fs      afero.Fs
	recoder Recoder
	logger  zerolog.Logger
}

// New returns a Pipeline.
func New(fs afero.Fs, recoder Recoder, logger zerolog.Logger) *Pipeline {
	return &Pipeline{fs: fs, recoder: recoder, logger: logger}
}

// ProcessDocument converts every image referenced by the document at
// documentPath and rewrites the document in place. The document is written
// only when every reference was converted or skipped; otherwise it is left
// exactly as it was and the error is returned.
func (p *Pipeline) ProcessDocument(ctx context.Context, documentPath, imagesRoot string) (DocumentResult, error) {
	result := DocumentResult{Path: documentPath, Status: types.DocumentFailed}

	info, err := p.fs.Stat(documentPath)
	if err != nil {
		return result, fmt.Errorf("reading document %s: %w", documentPath, err)
	}
	if info.IsDir() {
		return result, fmt.Errorf("reading document %s: is a directory", documentPath)
	}
	data, err := afero.ReadFile(p.fs, documentPath)
	if err != nil {
		return result, fmt.Errorf("reading document %s: %w", documentPath, err)
	}
	text := string(data)

	refs, err := reference.Find(text)
	if err != nil {
		return result, fmt.Errorf("scanning %s: %w", documentPath, err)
	}
	result.References = len(refs)
	p.logger.Debug().Str("document", documentPath).Int("references", len(refs)).Msg("scanned")

	for _, ref := range refs {
		res, err := p.recoder.Recode(ctx, ref.SourcePath(imagesRoot), ref.TargetPath(imagesRoot))
		if err != nil {
			return result, fmt.Errorf("processing %s: %w", documentPath, err)
		}
		switch res.Status {
		case types.RecodeConverted:
			result.Converted++
		case types.RecodeSkipped:
			result.Skipped++
		}
	}

	spliced := reference.Splice(text, refs, types.TargetExtension)
	if spliced == text {
		result.Status = types.DocumentUnchanged
		return result, nil
	}

	if err := fsutil.WriteFile(p.fs, documentPath, []byte(spliced), info.Mode().Perm()); err != nil {
		return result, fmt.Errorf("writing document: %w", err)
	}
	result.Status = types.DocumentRewritten
	return result, nil
}
