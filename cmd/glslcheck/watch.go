package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"glslcheck/internal/driver"
	"glslcheck/internal/log"
	"glslcheck/internal/metrics"
	"glslcheck/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] <directory>",
	Short: "Revalidate shaders whenever they or their configuration change",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	addValidationFlags(watchCmd)
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period before revalidating")
	watchCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9464)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	vf, err := readValidationFlags(cmd)
	if err != nil {
		return err
	}
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return fmt.Errorf("failed to get debounce flag: %w", err)
	}
	metricsAddr, err := cmd.Flags().GetString("metrics-addr")
	if err != nil {
		return fmt.Errorf("failed to get metrics-addr flag: %w", err)
	}
	useColor, err := colorEnabled(cmd)
	if err != nil {
		return err
	}

	dir, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	if st, err := os.Stat(dir); err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", dir)
	}
	if vf.root == "" {
		vf.root = dir
	}
	root, err := resolveRoot(vf.root)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := newEnv(cmd, vf, root, nil)
	if err != nil {
		return err
	}
	w, err := watch.New(dir, env, watch.Options{Debounce: debounce, Jobs: vf.jobs})
	if err != nil {
		return err
	}
	defer w.Close()

	session, err := startProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling(session)

	if metricsAddr != "" {
		srv := serveMetrics(metricsAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	return w.Run(ctx, func(b watch.Batch) {
		for _, path := range b.Removed {
			fmt.Fprintf(os.Stdout, "removed %s\n", path)
		}
		bag := collectBag(b.Results, vf)
		if err := renderDiagnostics(os.Stdout, bag, env.Files, b.Results, vf, useColor); err != nil {
			logger.Error("failed to format diagnostics", "err", err)
		}
		if vf.format == "pretty" && !vf.quiet {
			printSummary(os.Stderr, driver.Summarize(b.Results))
		}
		if env.Timer != nil {
			fmt.Fprint(os.Stderr, env.Timer.Summary())
		}
	})
}

func serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	l := log.Module(logger, "metrics")
	go func() {
		l.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("metrics server failed", "err", err)
		}
	}()
	return srv
}
