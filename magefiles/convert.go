//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Convert builds the CLI and converts the posts named in .to-webp without
// prompting.
func Convert() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "convert", "--yes")
}

// Audit builds the CLI and reports references still pending conversion.
func Audit() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "audit")
}
