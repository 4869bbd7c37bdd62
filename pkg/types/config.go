// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RunConfiguration holds the two working directories for a conversion run.
// It is loaded once at startup, confirmed by the operator, and passed down
// explicitly. Neither path is checked for existence here.
type RunConfiguration struct {
	// PostsDirectory holds the documents to rewrite (one level, no recursion).
	PostsDirectory string `json:"postsDirectory" yaml:"posts_directory"`

	// ImagesDirectory is the root of the <year>/<month>/<name>.<ext> tree.
	ImagesDirectory string `json:"imagesDirectory" yaml:"images_directory"`
}

// Complete reports whether both directories are set.
func (c RunConfiguration) Complete() bool {
	return c.PostsDirectory != "" && c.ImagesDirectory != ""
}

// Merge returns c with every empty field filled from fallback.
func (c RunConfiguration) Merge(fallback RunConfiguration) RunConfiguration {
	if c.PostsDirectory == "" {
		c.PostsDirectory = fallback.PostsDirectory
	}
	if c.ImagesDirectory == "" {
		c.ImagesDirectory = fallback.ImagesDirectory
	}
	return c
}

// LedgerConfig selects where conversion outcomes are recorded.
type LedgerConfig struct {
	// Path is the SQLite database file. Empty disables the ledger.
	Path string `json:"path" yaml:"path"`
}

// Enabled reports whether a ledger path was configured.
func (c LedgerConfig) Enabled() bool {
	return c.Path != ""
}
