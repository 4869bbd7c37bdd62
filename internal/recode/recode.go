// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package recode converts referenced images to WebP in place on disk.
//
// A conversion writes <name>.webp next to the source and removes the
// source once the new file is in place. When only the target exists the
// image was converted by an earlier run and Recode does nothing.
package recode

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	// Source formats accepted besides WebP (registered by webp.go).
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/pdiddy/to-webp/internal/fsutil"
	"github.com/pdiddy/to-webp/pkg/types"
)

// ErrConversion matches every *ConversionError.
var ErrConversion = errors.New("image conversion failed")

// ConversionError carries the paths of a failed conversion.
type ConversionError struct {
	Source string
	Target string
	Err    error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("converting %s: %v", e.Source, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

func (e *ConversionError) Is(target error) bool { return target == ErrConversion }

// Encoder writes img to w in the target format.
type Encoder interface {
	Encode(w io.Writer, img image.Image) error
}

// Recoder converts images on fs with enc.
type Recoder struct {
	fs     afero.Fs
	enc    Encoder
	logger zerolog.Logger
}

// New returns a Recoder. Pass NewWebPEncoder(types.DefaultQuality) for
// production use.
func New(fs afero.Fs, enc Encoder, logger zerolog.Logger) *Recoder {
	return &Recoder{fs: fs, enc: enc, logger: logger}
}

// Recode converts sourcePath into targetPath and removes sourcePath.
//
// It returns a skipped result, without touching anything, when the target
// exists and the source does not, or when both paths name the same existing
// file. The same path with no file behind it is a failure.
// When both files exist the target is overwritten from the source. On
// failure nothing is deleted and the error is a *ConversionError.
func (r *Recoder) Recode(ctx context.Context, sourcePath, targetPath string) (types.RecodeResult, error) {
	from := filepath.Base(sourcePath)
	to := filepath.Base(targetPath)
	r.logger.Info().Str("source", sourcePath).Msgf("From:%s To:%s", from, to)

	if filepath.Clean(sourcePath) == filepath.Clean(targetPath) {
		exists, err := fsutil.Exists(r.fs, targetPath)
		if err != nil {
			return r.fail(sourcePath, targetPath, err)
		}
		if !exists {
			return r.fail(sourcePath, targetPath, os.ErrNotExist)
		}
		r.logger.Warn().Str("source", sourcePath).Msgf("Ignore:%s", from)
		return types.RecodeResult{Status: types.RecodeSkipped}, nil
	}

	targetExists, err := fsutil.Exists(r.fs, targetPath)
	if err != nil {
		return r.fail(sourcePath, targetPath, err)
	}
	sourceExists, err := fsutil.Exists(r.fs, sourcePath)
	if err != nil {
		return r.fail(sourcePath, targetPath, err)
	}
	if targetExists && !sourceExists {
		r.logger.Warn().Str("source", sourcePath).Msgf("Ignore:%s", from)
		return types.RecodeResult{Status: types.RecodeSkipped}, nil
	}

	result, err := r.convert(sourcePath, targetPath)
	if err != nil {
		return r.fail(sourcePath, targetPath, err)
	}

	if err := r.fs.Remove(sourcePath); err != nil {
		return r.fail(sourcePath, targetPath, fmt.Errorf("removing source: %w", err))
	}
	return result, nil
}

func (r *Recoder) convert(sourcePath, targetPath string) (types.RecodeResult, error) {
	f, err := r.fs.Open(sourcePath)
	if err != nil {
		return types.RecodeResult{}, err
	}
	defer f.Close()

	h := xxhash.New()
	counter := &countingReader{r: io.TeeReader(f, h)}
	img, _, err := image.Decode(counter)
	if err != nil {
		return types.RecodeResult{}, fmt.Errorf("decoding: %w", err)
	}
	// Hash the whole file even when the decoder stopped short of EOF.
	if _, err := io.Copy(io.Discard, counter); err != nil {
		return types.RecodeResult{}, fmt.Errorf("reading: %w", err)
	}

	perm := fsutil.ModeOf(r.fs, sourcePath, 0o644)
	if err := fsutil.WriteWith(r.fs, targetPath, perm, func(w io.Writer) error {
		return r.enc.Encode(w, img)
	}); err != nil {
		return types.RecodeResult{}, err
	}

	info, err := r.fs.Stat(targetPath)
	if err != nil {
		return types.RecodeResult{}, err
	}

	return types.RecodeResult{
		Status:      types.RecodeConverted,
		SourceBytes: counter.n,
		TargetBytes: info.Size(),
		Checksum:    strconv.FormatUint(h.Sum64(), 16),
	}, nil
}

func (r *Recoder) fail(sourcePath, targetPath string, err error) (types.RecodeResult, error) {
	r.logger.Error().Err(err).Str("source", sourcePath).Msgf("Failed:%s", filepath.Base(sourcePath))
	return types.RecodeResult{Status: types.RecodeFailed}, &ConversionError{
		Source: sourcePath,
		Target: targetPath,
		Err:    err,
	}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
