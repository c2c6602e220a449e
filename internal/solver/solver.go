// Package solver calls an external two-phase solver for a Kociemba code.
package solver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrSolverFailed is returned when the solver could not be run or
	// exited abnormally.
	ErrSolverFailed = errors.New("solver failed")
	// ErrNoSolution is returned when the solver ran but found no solution
	// within its bounds.
	ErrNoSolution = errors.New("no solution found")
)

// Defaults used by the original two-phase configuration.
const (
	DefaultMaxDepth = 20
	DefaultTimeout  = 2 * time.Second
)

// Solver finds a move sequence for a Kociemba code. The returned text is
// the solver's raw output and may carry a trailing annotation like "(19f)".
type Solver interface {
	Solve(ctx context.Context, code string, maxDepth int, timeout time.Duration) (string, error)
}

// Func adapts a function to the Solver interface.
type Func func(ctx context.Context, code string, maxDepth int, timeout time.Duration) (string, error)

// Solve calls f.
func (f Func) Solve(ctx context.Context, code string, maxDepth int, timeout time.Duration) (string, error) {
	return f(ctx, code, maxDepth, timeout)
}

// Placeholders substituted into CommandSolver arguments.
const (
	ArgCode    = "{code}"
	ArgDepth   = "{depth}"
	ArgTimeout = "{timeout}"
)

// CommandSolver runs an external program per solve. Arguments may contain
// the {code}, {depth} and {timeout} placeholders; when none mentions
// {code}, the three values are appended in that order. Timeout is passed in
// whole seconds, at least one.
type CommandSolver struct {
	Path string
	Args []string
	// Grace is added to the solve timeout to bound the process wall time.
	Grace time.Duration
}

// NewCommandSolver creates a CommandSolver.
func NewCommandSolver(path string, args ...string) *CommandSolver {
	return &CommandSolver{Path: path, Args: args, Grace: 3 * time.Second}
}

// Solve runs the program and returns its output with line breaks removed.
// Output starting with "Error" is reported as ErrNoSolution.
func (s *CommandSolver) Solve(ctx context.Context, code string, maxDepth int, timeout time.Duration) (string, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout+s.Grace)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.Path, s.args(code, maxDepth, timeout)...)
	cmd.WaitDelay = time.Second
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%w: %v", ErrSolverFailed, ctxErr)
		}
		return "", fmt.Errorf("%w: %v: %s", ErrSolverFailed, err, strings.TrimSpace(stderr.String()))
	}

	text := strings.TrimSpace(strings.NewReplacer("\r", "", "\n", " ").Replace(string(out)))
	if text == "" {
		return "", fmt.Errorf("%w: empty solver output", ErrNoSolution)
	}
	if strings.HasPrefix(text, "Error") {
		return "", fmt.Errorf("%w: %s", ErrNoSolution, text)
	}
	return text, nil
}

func (s *CommandSolver) args(code string, maxDepth int, timeout time.Duration) []string {
	secs := max(int(timeout.Round(time.Second)/time.Second), 1)
	r := strings.NewReplacer(
		ArgCode, code,
		ArgDepth, strconv.Itoa(maxDepth),
		ArgTimeout, strconv.Itoa(secs),
	)

	templated := false
	args := make([]string, 0, len(s.Args)+3)
	for _, a := range s.Args {
		if strings.Contains(a, ArgCode) {
			templated = true
		}
		args = append(args, r.Replace(a))
	}
	if !templated {
		args = append(args, code, strconv.Itoa(maxDepth), strconv.Itoa(secs))
	}
	return args
}
