// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/pdiddy/to-webp/pkg/types"
)

// Recoder converts one image. *recode.Recoder and any rewrite.Recoder
// satisfy it.
type Recoder interface {
	Recode(ctx context.Context, sourcePath, targetPath string) (types.RecodeResult, error)
}

// RecordingRecoder wraps a recoder and records every outcome in a Store.
// A failed ledger write is logged and does not change the outcome.
type RecordingRecoder struct {
	next   Recoder
	store  *Store
	logger zerolog.Logger
}

// NewRecordingRecoder returns a RecordingRecoder.
func NewRecordingRecoder(next Recoder, store *Store, logger zerolog.Logger) *RecordingRecoder {
	return &RecordingRecoder{next: next, store: store, logger: logger}
}

// Recode delegates to the wrapped recoder and records the result.
func (r *RecordingRecoder) Recode(ctx context.Context, sourcePath, targetPath string) (types.RecodeResult, error) {
	result, err := r.next.Recode(ctx, sourcePath, targetPath)

	e := Entry{
		Source:      sourcePath,
		Target:      targetPath,
		Status:      result.Status,
		SourceBytes: result.SourceBytes,
		TargetBytes: result.TargetBytes,
		Checksum:    result.Checksum,
	}
	if err != nil {
		e.Status = types.RecodeFailed
		e.Error = err.Error()
	}
	if recErr := r.store.Record(ctx, e); recErr != nil {
		r.logger.Warn().Err(recErr).Str("source", sourcePath).Msg("ledger write failed")
	}

	return result, err
}
