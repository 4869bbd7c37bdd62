// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RecodeStatus is the outcome of converting one image.
type RecodeStatus string

const (
	RecodeConverted RecodeStatus = "converted"
	RecodeSkipped   RecodeStatus = "skipped"
	RecodeFailed    RecodeStatus = "failed"
)

// RecodeResult describes a single conversion attempt.
type RecodeResult struct {
	Status RecodeStatus `json:"status" yaml:"status"`

	// SourceBytes and TargetBytes are file sizes; zero when not applicable.
	SourceBytes int64 `json:"source_bytes" yaml:"source_bytes"`
	TargetBytes int64 `json:"target_bytes" yaml:"target_bytes"`

	// Checksum is the xxhash64 of the source image, hex encoded. Empty when
	// the source was never read.
	Checksum string `json:"checksum,omitempty" yaml:"checksum,omitempty"`
}

// DocumentStatus is the outcome of processing one document.
type DocumentStatus string

const (
	DocumentRewritten DocumentStatus = "rewritten"
	DocumentUnchanged DocumentStatus = "unchanged"
	DocumentFailed    DocumentStatus = "failed"
)
