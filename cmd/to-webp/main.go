// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the to-webp CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/to-webp/internal/settings"
	"github.com/pdiddy/to-webp/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command. Without a subcommand it converts.
var rootCmd = &cobra.Command{
	Use:   "to-webp",
	Short: "Convert blog post images to WebP and rewrite the posts",
	Long: `to-webp walks a Jekyll posts directory, converts every image referenced as
![]({{ "/images/<year>/<month>/<name>.<ext>" | prepend: site.baseurl }})
to WebP at quality 75, deletes the original, and rewrites the reference to
point at the .webp file. Running it again is a no-op.

The posts and images directories are asked for on each run, pre-filled from
the .to-webp settings file in the working directory, and saved back before
anything is converted.`,
	SilenceUsage: true,
	RunE:         runConvert,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./to-webp.yaml or ~/.config/to-webp/to-webp.yaml)")
	pf.String("posts-dir", "", "posts directory (pre-fills the prompt)")
	pf.String("images-dir", "", "images root directory (pre-fills the prompt)")
	pf.String("settings", settings.DefaultPath, "settings file holding the last used directories")
	pf.String("ledger", "", "SQLite file recording every conversion (off when empty)")
	pf.BoolP("yes", "y", false, "do not prompt; use flag, environment, or saved values")
	pf.Bool("no-color", false, "disable colored output")
	pf.BoolP("verbose", "v", false, "log per-document details")

	for key, flag := range map[string]string{
		"posts_dir":  "posts-dir",
		"images_dir": "images-dir",
		"settings":   "settings",
		"ledger":     "ledger",
		"yes":        "yes",
		"no_color":   "no-color",
		"verbose":    "verbose",
	} {
		_ = viper.BindPFlag(key, pf.Lookup(flag))
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("to-webp")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "to-webp"))
		}
	}

	viper.SetEnvPrefix("TO_WEBP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// overrides returns directory values given on the command line, in the
// environment, or in the tool config file.
func overrides() types.RunConfiguration {
	return types.RunConfiguration{
		PostsDirectory:  viper.GetString("posts_dir"),
		ImagesDirectory: viper.GetString("images_dir"),
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
