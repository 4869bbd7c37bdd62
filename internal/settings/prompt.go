// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/pdiddy/to-webp/pkg/types"
)

// ErrAborted is returned by Collect when the operator leaves a directory
// empty or cancels a prompt. It ends the run without changes.
var ErrAborted = errors.New("configuration aborted")

const (
	labelPosts  = "Posts directory"
	labelImages = "Images directory"
)

// Prompter asks the operator for one value. initial pre-fills the answer.
// A cancelled prompt returns "" and a nil error.
type Prompter interface {
	Prompt(label, initial string) (string, error)
}

// TerminalPrompter prompts on the controlling terminal.
type TerminalPrompter struct{}

func (TerminalPrompter) Prompt(label, initial string) (string, error) {
	p := promptui.Prompt{
		Label:     label,
		Default:   initial,
		AllowEdit: true,
	}
	value, err := p.Run()
	switch {
	case errors.Is(err, promptui.ErrInterrupt), errors.Is(err, promptui.ErrEOF), errors.Is(err, promptui.ErrAbort):
		return "", nil
	case err != nil:
		return "", fmt.Errorf("prompting for %s: %w", strings.ToLower(label), err)
	}
	return value, nil
}

// Collect asks for the posts directory and then the images directory,
// pre-filling each from prev. It returns ErrAborted as soon as one answer
// is empty, without asking the remaining question.
func Collect(p Prompter, prev types.RunConfiguration) (types.RunConfiguration, error) {
	var cfg types.RunConfiguration

	posts, err := ask(p, labelPosts, prev.PostsDirectory)
	if err != nil {
		return cfg, err
	}
	cfg.PostsDirectory = posts

	images, err := ask(p, labelImages, prev.ImagesDirectory)
	if err != nil {
		return cfg, err
	}
	cfg.ImagesDirectory = images

	return cfg, nil
}

func ask(p Prompter, label, initial string) (string, error) {
	v, err := p.Prompt(label, initial)
	if err != nil {
		return "", err
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("%s not provided: %w", strings.ToLower(label), ErrAborted)
	}
	return v, nil
}
