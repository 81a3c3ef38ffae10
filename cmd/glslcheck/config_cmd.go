package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"glslcheck/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [file|dir]",
	Short: "Print the configuration that applies to a shader or directory",
	Long: `Resolve and type-check the configuration governing [file|dir] (default: the
current directory) and print it. Exits with status 1 when the configuration
is invalid.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfig,
}

func init() {
	configCmd.Flags().String("format", "toml", "output syntax (toml|yaml|json)")
	configCmd.Flags().String("root", "", "project root; config files are not searched above it (default: working directory)")
}

func runConfig(cmd *cobra.Command, args []string) error {
	formatFlag, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format := config.Format(formatFlag)
	switch format {
	case config.FormatTOML, config.FormatYAML, config.FormatJSON:
	default:
		return fmt.Errorf("unknown format: %s", formatFlag)
	}
	rootFlag, err := cmd.Flags().GetString("root")
	if err != nil {
		return fmt.Errorf("failed to get root flag: %w", err)
	}
	root, err := resolveRoot(rootFlag)
	if err != nil {
		return err
	}

	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	target, err = filepath.Abs(target)
	if err != nil {
		return err
	}
	st, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}

	loader := config.NewLoader(root)
	var cfg *config.Config
	if st.IsDir() {
		cfg, err = loader.ForDir(target)
	} else {
		cfg, err = loader.ForFile(target)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	source := cfg.Source
	if source == "" {
		source = "(defaults)"
	}
	if format == config.FormatJSON {
		fmt.Fprintf(cmd.ErrOrStderr(), "source: %s\n", source)
	} else {
		fmt.Fprintf(out, "# source: %s\n", source)
	}
	if len(cfg.Unknown) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "ignored unknown keys: %s\n", strings.Join(cfg.Unknown, ", "))
	}
	return config.Encode(out, cfg, format)
}
