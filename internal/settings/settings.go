// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package settings remembers the posts and images directories between runs.
//
// The values live in a small hidden JSON file (./.to-webp by default):
//
//	{"postsDirectory":"/blog/_posts","imagesDirectory":"/blog/images"}
//
// A missing file yields empty values. Keys other than the two directories
// are kept as they are when the file is saved.
package settings

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/pdiddy/to-webp/internal/fsutil"
	"github.com/pdiddy/to-webp/pkg/types"
)

// DefaultPath is the settings file used when none is configured.
const DefaultPath = ".to-webp"

const (
	keyPosts  = "postsDirectory"
	keyImages = "imagesDirectory"
)

// Store reads and writes the settings file at Path.
type Store struct {
	fs   afero.Fs
	path string

	// extra holds keys this tool does not manage, keyed as in the file.
	extra map[string]json.RawMessage
}

// NewStore returns a Store for path on fs.
func NewStore(fs afero.Fs, path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{fs: fs, path: path}
}

// Path returns the settings file location.
func (s *Store) Path() string { return s.path }

// Load returns the saved configuration. A missing file is not an error and
// returns an empty configuration.
func (s *Store) Load() (types.RunConfiguration, error) {
	s.extra = nil

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.RunConfiguration{}, nil
		}
		return types.RunConfiguration{}, fmt.Errorf("reading settings %s: %w", s.path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return types.RunConfiguration{}, fmt.Errorf("parsing settings %s: %w", s.path, err)
	}

	var cfg types.RunConfiguration
	if v, ok := raw[keyPosts]; ok {
		if err := json.Unmarshal(v, &cfg.PostsDirectory); err != nil {
			return types.RunConfiguration{}, fmt.Errorf("parsing %s in %s: %w", keyPosts, s.path, err)
		}
		delete(raw, keyPosts)
	}
	if v, ok := raw[keyImages]; ok {
		if err := json.Unmarshal(v, &cfg.ImagesDirectory); err != nil {
			return types.RunConfiguration{}, fmt.Errorf("parsing %s in %s: %w", keyImages, s.path, err)
		}
		delete(raw, keyImages)
	}
	s.extra = raw
	return cfg, nil
}

// Save writes cfg, together with any unmanaged keys seen by the last Load.
func (s *Store) Save(cfg types.RunConfiguration) error {
	out := make(map[string]any, len(s.extra)+2)
	for k, v := range s.extra {
		out[k] = v
	}
	out[keyPosts] = cfg.PostsDirectory
	out[keyImages] = cfg.ImagesDirectory

	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	perm := fsutil.ModeOf(s.fs, s.path, 0o644)
	if err := fsutil.WriteFile(s.fs, s.path, data, perm); err != nil {
		return fmt.Errorf("saving settings %s: %w", s.path, err)
	}
	return nil
}
