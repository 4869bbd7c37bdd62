// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recode

import (
	"image"
	"io"

	"github.com/gen2brain/webp"
)

// WebPEncoder encodes lossy WebP at a fixed quality.
type WebPEncoder struct {
	Quality int
}

// NewWebPEncoder returns an encoder for the given quality (0-100).
func NewWebPEncoder(quality int) WebPEncoder {
	return WebPEncoder{Quality: quality}
}

func (e WebPEncoder) Encode(w io.Writer, img image.Image) error {
	return webp.Encode(w, img, webp.Options{Quality: e.Quality})
}
