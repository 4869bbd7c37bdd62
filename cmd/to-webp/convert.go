// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/to-webp/internal/ledger"
	"github.com/pdiddy/to-webp/internal/logging"
	"github.com/pdiddy/to-webp/internal/recode"
	"github.com/pdiddy/to-webp/internal/rewrite"
	"github.com/pdiddy/to-webp/internal/settings"
	"github.com/pdiddy/to-webp/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert referenced images to WebP and rewrite the posts",
	Long: `Convert asks for the posts and images directories, saves them to the
settings file, then processes every entry of the posts directory: each
templated image reference is recoded to WebP, the original image is
deleted, and the reference is rewritten. A document that fails is reported
and left unchanged; the others are still processed.

Images that were already converted by an earlier run are skipped, so a run
interrupted by a failure can simply be repeated.`,
	RunE: runConvert,
}

// convertOptions carries the flag-derived settings of one conversion run.
type convertOptions struct {
	SettingsPath string
	Overrides    types.RunConfiguration
	Ledger       types.LedgerConfig
	Logging      logging.Options

	// Encoder defaults to WebP at types.DefaultQuality.
	Encoder recode.Encoder
}

func runConvert(cmd *cobra.Command, args []string) error {
	var prompter settings.Prompter = settings.TerminalPrompter{}
	if viper.GetBool("yes") {
		prompter = nil
	}

	return convertPosts(cmd.Context(), afero.NewOsFs(), prompter, cmd.OutOrStdout(), convertOptions{
		SettingsPath: viper.GetString("settings"),
		Overrides:    overrides(),
		Ledger:       types.LedgerConfig{Path: viper.GetString("ledger")},
		Logging: logging.Options{
			NoColor: viper.GetBool("no_color"),
			Verbose: viper.GetBool("verbose"),
		},
	})
}

// convertPosts resolves and saves the run configuration, then converts every
// document of the posts directory. An aborted prompt returns nil before
// anything is saved or converted. A nil prompter never prompts.
func convertPosts(ctx context.Context, fs afero.Fs, prompter settings.Prompter, out io.Writer, opts convertOptions) error {
	logger := logging.New(out, opts.Logging)
	store := settings.NewStore(fs, opts.SettingsPath)

	cfg, err := settings.Resolve(store, prompter, opts.Overrides)
	if errors.Is(err, settings.ErrAborted) {
		logger.Warn().Msg(err.Error())
		return nil
	}
	if err != nil {
		return err
	}
	if err := store.Save(cfg); err != nil {
		return err
	}

	enc := opts.Encoder
	if enc == nil {
		enc = recode.NewWebPEncoder(types.DefaultQuality)
	}
	var recoder rewrite.Recoder = recode.New(fs, enc, logger)

	if opts.Ledger.Enabled() {
		l, err := ledger.Open(opts.Ledger.Path)
		if err != nil {
			return err
		}
		defer l.Close()
		recoder = ledger.NewRecordingRecoder(recoder, l, logger)
	}

	pipeline := rewrite.New(fs, recoder, logger)
	result, err := pipeline.RunBatch(ctx, rewrite.DirLister{Fs: fs}, cfg.PostsDirectory, cfg.ImagesDirectory)
	if err != nil {
		logger.Error().Err(err).Msg("error")
		return err
	}
	if result.HasFailures() {
		logger.Error().Int("failed", result.Failed).Msg("error")
		return fmt.Errorf("%d document(s) failed", result.Failed)
	}

	logger.Info().Msg("Done.")
	return nil
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
