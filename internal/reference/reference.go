// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reference finds templated image embeds in post text and rewrites
// them. The only supported shape is
//
//	![]({{ "/images/<year>/<month>/<name>.<ext>" | prepend: site.baseurl }})
//
// Spaces or tabs around the template delimiters and the pipe are accepted on
// read; Format always emits the canonical spacing above.
//
// The name may contain further path segments, but a ".." segment makes the
// reference malformed even though the path pattern itself would accept it,
// so no reference resolves outside the images root.
package reference

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/to-webp/pkg/types"
)

// ErrMalformedReference matches every *MalformedReferenceError.
var ErrMalformedReference = errors.New("malformed image reference")

var (
	tagPattern = regexp.MustCompile(
		`!\[\]\(\{\{[ \t]*"([0-9a-zA-Z\-_/.]+)"[ \t]*\|[ \t]*prepend:[ \t]*site\.baseurl[ \t]*\}\}\)`,
	)
	pathPattern = regexp.MustCompile(`^/images/([0-9]+)/([0-9]+)/(.+)\.([0-9a-zA-Z]+)$`)
)

// MalformedReferenceError reports an embed whose quoted path does not have
// the /images/<digits>/<digits>/<name>.<ext> shape.
type MalformedReferenceError struct {
	Offset int
	Raw    string
	Path   string
	Reason string
}

func (e *MalformedReferenceError) Error() string {
	return fmt.Sprintf("malformed image reference at offset %d (%s): %s", e.Offset, e.Path, e.Reason)
}

func (e *MalformedReferenceError) Is(target error) bool {
	return target == ErrMalformedReference
}

// Find returns every reference in text, in order of appearance. It stops at
// the first embed whose path does not decompose and returns that error with
// no references.
func Find(text string) ([]types.ImageReference, error) {
	matches := tagPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil, nil
	}

	refs := make([]types.ImageReference, 0, len(matches))
	for _, m := range matches {
		start, end := m[0], m[1]
		path := text[m[2]:m[3]]

		ref, err := decompose(path)
		if err != nil {
			return nil, &MalformedReferenceError{
				Offset: start,
				Raw:    text[start:end],
				Path:   path,
				Reason: err.Error(),
			}
		}
		ref.Raw = text[start:end]
		ref.Offset = start
		ref.Length = end - start
		refs = append(refs, ref)
	}
	return refs, nil
}

func decompose(path string) (types.ImageReference, error) {
	sub := pathPattern.FindStringSubmatch(path)
	if sub == nil {
		return types.ImageReference{}, errors.New("expected /images/<year>/<month>/<name>.<ext>")
	}
	name := sub[3]
	for _, seg := range strings.Split(name, "/") {
		if seg == ".." {
			return types.ImageReference{}, errors.New("name escapes the images directory")
		}
	}
	return types.ImageReference{
		Year:            sub[1],
		Month:           sub[2],
		BaseName:        name,
		SourceExtension: sub[4],
	}, nil
}

// Format returns the canonical embed for the given address.
func Format(year, month, name, ext string) string {
	return fmt.Sprintf(`![]({{ "/images/%s/%s/%s.%s" | prepend: site.baseurl }})`, year, month, name, ext)
}

// Splice replaces each reference in text with its canonical form using ext
// as the extension. refs must come from Find on the same text.
func Splice(text string, refs []types.ImageReference, ext string) string {
	if len(refs) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	end := 0
	for _, r := range refs {
		b.WriteString(text[end:r.Offset])
		b.WriteString(Format(r.Year, r.Month, r.BaseName, ext))
		end = r.End()
	}
	b.WriteString(text[end:])
	return b.String()
}
