// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package audit reports, without changing anything, which image references
// in a posts directory still need conversion, which would fail for lack of
// a source file, and which plain markdown images the converter ignores.
package audit

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/pdiddy/to-webp/internal/fsutil"
	"github.com/pdiddy/to-webp/internal/reference"
	"github.com/pdiddy/to-webp/pkg/types"
)

// Report is the audit of one document.
type Report struct {
	Path string

	// Pending references still name a non-WebP file.
	Pending []types.ImageReference
	// Converted references already name a .webp file.
	Converted []types.ImageReference
	// Missing lists image paths a conversion run would fail on: pending
	// references with neither the source nor the converted file, and
	// converted references whose .webp file is absent.
	Missing []string
	// Plain holds destinations of standard markdown images pointing at local
	// files. The converter does not rewrite these.
	Plain []string

	// Err is set when the document could not be read or scanned.
	Err error
}

// Clean reports whether the document needs no attention.
func (r Report) Clean() bool {
	return r.Err == nil && len(r.Pending) == 0 && len(r.Missing) == 0 && len(r.Plain) == 0
}

// Lister enumerates the entry names of a posts directory.
type Lister interface {
	List(dir string) ([]string, error)
}

// Auditor scans documents with a goldmark parser.
type Auditor struct {
	fs       afero.Fs
	markdown goldmark.Markdown
}

// New returns an Auditor reading from fs.
func New(fs afero.Fs) *Auditor {
	return &Auditor{fs: fs, markdown: goldmark.New()}
}

// Scan classifies the references in src. Only a malformed templated
// reference produces an error.
func (a *Auditor) Scan(src []byte) (Report, error) {
	var r Report

	refs, err := reference.Find(string(src))
	if err != nil {
		return r, err
	}
	for _, ref := range refs {
		if ref.SourceExtension == types.TargetExtension {
			r.Converted = append(r.Converted, ref)
		} else {
			r.Pending = append(r.Pending, ref)
		}
	}

	doc := a.markdown.Parser().Parse(text.NewReader(src))
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		img, ok := n.(*ast.Image)
		if !ok {
			return ast.WalkContinue, nil
		}
		dest := string(img.Destination)
		if isLocalImage(dest) {
			r.Plain = append(r.Plain, dest)
		}
		return ast.WalkContinue, nil
	})
	return r, err
}

// isLocalImage reports whether dest points at a file on the site rather than
// another host. Template expressions are the templated form and are skipped.
func isLocalImage(dest string) bool {
	switch {
	case dest == "":
		return false
	case strings.HasPrefix(dest, "{{"):
		return false
	case strings.HasPrefix(dest, "//"):
		return false
	case strings.Contains(dest, "://"), strings.HasPrefix(dest, "data:"):
		return false
	}
	return true
}

// ScanDirectory audits every entry of postsDir. Per-document problems are
// reported in Report.Err; only a listing failure returns an error.
func (a *Auditor) ScanDirectory(lister Lister, postsDir, imagesRoot string) ([]Report, error) {
	names, err := lister.List(postsDir)
	if err != nil {
		return nil, err
	}

	reports := make([]Report, 0, len(names))
	for _, name := range names {
		path := filepath.Join(postsDir, name)
		reports = append(reports, a.scanFile(path, imagesRoot))
	}
	return reports, nil
}

func (a *Auditor) scanFile(path, imagesRoot string) Report {
	info, err := a.fs.Stat(path)
	if err != nil {
		return Report{Path: path, Err: err}
	}
	if info.IsDir() {
		return Report{Path: path, Err: fmt.Errorf("%s is a directory", path)}
	}
	src, err := afero.ReadFile(a.fs, path)
	if err != nil {
		return Report{Path: path, Err: err}
	}

	r, err := a.Scan(src)
	r.Path = path
	if err != nil {
		r.Err = err
		return r
	}

	for _, ref := range r.Pending {
		source := ref.SourcePath(imagesRoot)
		srcOK, err := fsutil.Exists(a.fs, source)
		if err != nil {
			r.Err = err
			return r
		}
		dstOK, err := fsutil.Exists(a.fs, ref.TargetPath(imagesRoot))
		if err != nil {
			r.Err = err
			return r
		}
		if !srcOK && !dstOK {
			r.Missing = append(r.Missing, source)
		}
	}
	for _, ref := range r.Converted {
		target := ref.TargetPath(imagesRoot)
		ok, err := fsutil.Exists(a.fs, target)
		if err != nil {
			r.Err = err
			return r
		}
		if !ok {
			r.Missing = append(r.Missing, target)
		}
	}
	return r
}

// Totals sums a set of reports.
type Totals struct {
	Documents int
	Pending   int
	Converted int
	Missing   int
	Plain     int
	Errors    int
}

// Sum returns totals over reports.
func Sum(reports []Report) Totals {
	t := Totals{Documents: len(reports)}
	for _, r := range reports {
		t.Pending += len(r.Pending)
		t.Converted += len(r.Converted)
		t.Missing += len(r.Missing)
		t.Plain += len(r.Plain)
		if r.Err != nil {
			t.Errors++
		}
	}
	return t
}
