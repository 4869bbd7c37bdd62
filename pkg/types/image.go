// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "path/filepath"

const (
	// TargetExtension is the extension every converted image receives.
	TargetExtension = "webp"

	// DefaultQuality is the WebP quality (0-100) used for every conversion.
	DefaultQuality = 75
)

// ImageReference is one image embed found in a document. Offset and Length
// locate Raw in the document text so the match can be spliced out.
type ImageReference struct {
	Raw    string `json:"raw" yaml:"raw"`
	Offset int    `json:"offset" yaml:"offset"`
	Length int    `json:"length" yaml:"length"`

	// Year and Month are digit-only path segments; they are not validated
	// as calendar values.
	Year  string `json:"year" yaml:"year"`
	Month string `json:"month" yaml:"month"`

	// BaseName is the file stem. It may contain further path segments.
	BaseName string `json:"base_name" yaml:"base_name"`

	// SourceExtension is the extension found in the document (jpg, png, ...).
	SourceExtension string `json:"source_extension" yaml:"source_extension"`
}

// End returns the offset just past the match.
func (r ImageReference) End() int {
	return r.Offset + r.Length
}

// File returns the image addressed by r under the given images root.
func (r ImageReference) File(root string) ImageFile {
	return ImageFile{
		Root:     root,
		Year:     r.Year,
		Month:    r.Month,
		BaseName: r.BaseName,
	}
}

// SourcePath is the on-disk path of the referenced image as written.
func (r ImageReference) SourcePath(root string) string {
	return r.File(root).Path(r.SourceExtension)
}

// TargetPath is the on-disk path of the converted image.
func (r ImageReference) TargetPath(root string) string {
	return r.File(root).Path(TargetExtension)
}

// ImageFile identifies an image by its addressing triple under a root
// directory. The extension is supplied per path.
type ImageFile struct {
	Root     string
	Year     string
	Month    string
	BaseName string
}

// Path returns <Root>/<Year>/<Month>/<BaseName>.<ext>.
func (f ImageFile) Path(ext string) string {
	return filepath.Join(f.Root, f.Year, f.Month, filepath.FromSlash(f.BaseName)+"."+ext)
}
