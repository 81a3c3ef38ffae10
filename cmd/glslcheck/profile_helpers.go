package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"glslcheck/internal/prof"
)

// startProfiling reads the persistent profiling flags and starts a session.
// The returned session is nil when no profile is requested; Stop on it is a
// no-op.
func startProfiling(cmd *cobra.Command) (*prof.Session, error) {
	flags := cmd.Root().PersistentFlags()
	var (
		opts prof.Options
		err  error
	)
	if opts.CPU, err = flags.GetString("cpu-profile"); err != nil {
		return nil, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if opts.Mem, err = flags.GetString("mem-profile"); err != nil {
		return nil, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if opts.Trace, err = flags.GetString("runtime-trace"); err != nil {
		return nil, fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	if !opts.Enabled() {
		return nil, nil
	}
	return prof.Start(opts)
}

func stopProfiling(session *prof.Session) {
	if err := session.Stop(); err != nil {
		logger.Warn("failed to finish profiles", "err", err)
	}
}
