package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"glslcheck/internal/augment"
	"glslcheck/internal/pipeline"
)

// IsShaderFile reports whether path has a recognised shader extension.
func IsShaderFile(path string) bool {
	return augment.StageFromPath(path) != augment.StageUnknown
}

// ListShaderFiles returns a sorted list of shader files under dir.
// Hidden directories and node_modules are not descended into.
func ListShaderFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != dir && (strings.HasPrefix(name, ".") || name == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		if IsShaderFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// ValidateDir validates every shader under dir in parallel.
func ValidateDir(ctx context.Context, dir string, env *Env, jobs int) ([]*FileResult, error) {
	files, err := ListShaderFiles(dir)
	if err != nil {
		return nil, err
	}
	return ValidateFiles(ctx, files, env, jobs)
}

// ValidateFiles validates paths with at most jobs units in flight
// (0 means GOMAXPROCS). Results are sorted by path.
func ValidateFiles(ctx context.Context, paths []string, env *Env, jobs int) ([]*FileResult, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	for _, p := range paths {
		env.emit(p, pipeline.StageConfig, pipeline.StatusQueued, nil)
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]*FileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			res, err := ValidateFile(gctx, path, env)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return compact(results), err
	}

	sortResults(results)
	return results, nil
}

func compact(results []*FileResult) []*FileResult {
	out := results[:0]
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	sortResults(out)
	return out
}
