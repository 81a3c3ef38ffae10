package glslang

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/mattn/go-shellwords"
)

// Output is what one validator run produced.
type Output struct {
	Stdout  string
	Stderr  string
	Failed  bool  // nonzero exit
	ExitErr error // the process error when Failed
}

// Validator validates one shader file.
type Validator interface {
	Run(ctx context.Context, file string, extraArgs string) (Output, error)
}

// ArgsError is returned when extra arguments cannot be split into words.
type ArgsError struct {
	Args string
	Err  error
}

func (e *ArgsError) Error() string {
	return fmt.Sprintf("invalid validator arguments %q: %v", e.Args, e.Err)
}

func (e *ArgsError) Unwrap() error { return e.Err }

// Runner runs a glslangValidator executable.
type Runner struct {
	Path string
	Env  []string // extra environment, appended to the current one
}

// BaseArgs precede user arguments on every run.
var BaseArgs = []string{"-l", "-DVALIDATE"}

// SplitArgs splits user arguments into words with shell quoting rules.
func SplitArgs(extraArgs string) ([]string, error) {
	extra, err := shellwords.Parse(extraArgs)
	if err != nil {
		return nil, &ArgsError{Args: extraArgs, Err: err}
	}
	return extra, nil
}

// Args builds the argument list for file.
func Args(file, extraArgs string) ([]string, error) {
	extra, err := SplitArgs(extraArgs)
	if err != nil {
		return nil, err
	}
	args := make([]string, 0, len(BaseArgs)+len(extra)+1)
	args = append(args, BaseArgs...)
	args = append(args, extra...)
	args = append(args, file)
	return args, nil
}

// Run executes the validator. A nonzero exit is reported through Output;
// an error is returned only when the process could not run at all.
func (r *Runner) Run(ctx context.Context, file string, extraArgs string) (Output, error) {
	args, err := Args(file, extraArgs)
	if err != nil {
		return Output{}, err
	}

	// #nosec G204 -- the validator path is resolved by the caller
	cmd := exec.CommandContext(ctx, r.Path, args...)
	if len(r.Env) > 0 {
		cmd.Env = append(cmd.Environ(), r.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if runErr == nil {
		return out, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, ctxErr
	}
	out.Failed = true
	out.ExitErr = runErr

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		return out, nil
	}
	return out, fmt.Errorf("failed to run %s: %w", r.Path, runErr)
}

// Version returns the first line printed by `validator -v`.
func (r *Runner) Version(ctx context.Context) (string, error) {
	// #nosec G204 -- the validator path is resolved by the caller
	cmd := exec.CommandContext(ctx, r.Path, "-v")
	data, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to query %s version: %w", r.Path, err)
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			return line, nil
		}
	}
	return "", nil
}
