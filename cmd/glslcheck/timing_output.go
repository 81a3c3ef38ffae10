package main

import (
	"fmt"
	"io"
	"time"

	"glslcheck/internal/pipeline"
)

// printStageTimings writes per-stage totals summed over every file.
func printStageTimings(out io.Writer, timings *pipeline.Timings) {
	if out == nil || timings == nil {
		return
	}
	for _, stage := range pipeline.Stages {
		if !timings.Has(stage) {
			continue
		}
		if _, err := fmt.Fprintf(out, "%s %.1f ms\n", stage, toMillis(timings.Duration(stage))); err != nil {
			panic(err)
		}
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
