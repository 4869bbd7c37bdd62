// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package settings

import (
	"fmt"

	"github.com/pdiddy/to-webp/pkg/types"
)

// ErrIncomplete is returned by Resolve in non-interactive mode when a
// directory has no value from flags, environment, or the settings file. It
// matches ErrAborted.
var ErrIncomplete = fmt.Errorf("posts and images directories are required: %w", ErrAborted)

// Resolve produces the configuration for a run. Values in overrides (flags,
// environment, config file) take precedence over the saved settings. With a
// nil prompter the result is used as is; otherwise the operator confirms
// each value through Collect.
func Resolve(store *Store, p Prompter, overrides types.RunConfiguration) (types.RunConfiguration, error) {
	saved, err := store.Load()
	if err != nil {
		return types.RunConfiguration{}, err
	}
	initial := overrides.Merge(saved)

	if p == nil {
		if !initial.Complete() {
			return initial, ErrIncomplete
		}
		return initial, nil
	}
	return Collect(p, initial)
}
