package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"glslcheck/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a default glslcheck configuration",
	Long: `Write glslcheck.toml (or .yaml/.json with --format) with default settings
into [dir], or the current directory. Refuses to overwrite an existing
configuration.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().String("format", "toml", "config syntax (toml|yaml|json)")
}

func runInit(cmd *cobra.Command, args []string) error {
	formatFlag, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format := config.Format(formatFlag)
	var fileName string
	switch format {
	case config.FormatTOML:
		fileName = "glslcheck.toml"
	case config.FormatYAML:
		fileName = "glslcheck.yaml"
	case config.FormatJSON:
		fileName = "glslcheck.json"
	default:
		return fmt.Errorf("unknown format: %s", formatFlag)
	}

	target := "."
	if len(args) > 0 && args[0] != "" {
		target = args[0]
	}
	target, err = filepath.Abs(target)
	if err != nil {
		return err
	}
	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err = os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	for _, name := range config.FileNames {
		existing := filepath.Join(target, name)
		if _, err := os.Stat(existing); err == nil {
			return fmt.Errorf("already configured: %s exists", existing)
		}
	}

	path := filepath.Join(target, fileName)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", path, err)
	}
	if err := config.Encode(f, config.Default(), format); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
	return nil
}
