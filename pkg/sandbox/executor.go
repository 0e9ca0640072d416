// Package sandbox runs validated snippets in a bounded child process.
//
// Each execution writes the snippet to a uniquely named file inside a
// directory private to the Executor, runs the configured interpreter on it
// with a wall clock timeout and a combined stdout/stderr cap, and deletes
// the file on every exit path. Outcomes are returned as data: [Result]
// carries either the trimmed stdout or a [Failure].
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/rhuss/sandchat/pkg/debug"
	"github.com/rhuss/sandchat/pkg/observability"
	"github.com/rhuss/sandchat/pkg/policy"
)

const (
	DefaultInterpreter    = "python3"
	DefaultExtension      = ".py"
	DefaultTimeout        = 5 * time.Second
	DefaultMaxOutputBytes = 1 << 20

	// waitDelay bounds how long Wait keeps draining pipes after the child
	// was killed or exited.
	waitDelay = 500 * time.Millisecond
)

// DefaultArgs isolates the interpreter from user site-packages and PYTHON*
// environment variables.
var DefaultArgs = []string{"-I"}

// Config holds the executor settings. Zero values select the defaults.
type Config struct {
	Interpreter    string
	Args           []string
	Extension      string
	Timeout        time.Duration
	MaxOutputBytes int
	// TempDir is the parent of the private artifact directory. Empty means
	// os.TempDir().
	TempDir string
	// MaxConcurrent caps simultaneous child processes. Zero means unbounded.
	MaxConcurrent int64
	// Env is the complete child environment. Nil selects a minimal one.
	Env []string
}

func (c Config) withDefaults() Config {
	if c.Interpreter == "" {
		c.Interpreter = DefaultInterpreter
		if c.Args == nil {
			c.Args = DefaultArgs
		}
	}
	if c.Extension == "" {
		c.Extension = DefaultExtension
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxOutputBytes <= 0 {
		c.MaxOutputBytes = DefaultMaxOutputBytes
	}
	c.Args = append([]string(nil), c.Args...)
	return c
}

// Executor runs snippets. It is safe for concurrent use; executions share no
// state apart from the artifact directory, in which every file name is unique.
type Executor struct {
	cfg Config
	dir string
	env []string
	sem *semaphore.Weighted
}

// New creates an Executor and its private artifact directory.
func New(cfg Config) (*Executor, error) {
	cfg = cfg.withDefaults()

	dir, err := os.MkdirTemp(cfg.TempDir, "sandchat-*")
	if err != nil {
		return nil, fmt.Errorf("creating sandbox directory: %w", err)
	}

	env := cfg.Env
	if env == nil {
		env = []string{
			"PATH=" + os.Getenv("PATH"),
			"HOME=" + dir,
			"LANG=C.UTF-8",
			"PYTHONIOENCODING=utf-8",
			"PYTHONDONTWRITEBYTECODE=1",
		}
	}

	e := &Executor{cfg: cfg, dir: dir, env: env}
	if cfg.MaxConcurrent > 0 {
		e.sem = semaphore.NewWeighted(cfg.MaxConcurrent)
	}

	slog.Info("sandbox ready",
		"interpreter", cfg.Interpreter,
		"dir", dir,
		"timeout", cfg.Timeout,
		"max_output_bytes", cfg.MaxOutputBytes,
		"max_concurrent", cfg.MaxConcurrent,
	)
	return e, nil
}

// Dir returns the private artifact directory.
func (e *Executor) Dir() string {
	return e.dir
}

// Timeout returns the effective wall clock limit.
func (e *Executor) Timeout() time.Duration {
	return e.cfg.Timeout
}

// Close removes the artifact directory.
func (e *Executor) Close() error {
	return os.RemoveAll(e.dir)
}

// Execute runs snip and returns its outcome. It blocks until the child has
// fully terminated. Cancelling ctx kills the child and yields an
// infrastructure failure.
func (e *Executor) Execute(ctx context.Context, snip policy.Snippet) Result {
	start := time.Now()
	res := e.execute(ctx, snip)
	res.Duration = time.Since(start)

	outcome := res.Outcome()
	observability.SandboxExecutionsTotal.WithLabelValues(outcome).Inc()
	observability.SandboxDuration.WithLabelValues(outcome).Observe(res.Duration.Seconds())
	if res.Truncated {
		observability.SandboxOutputTruncatedTotal.Inc()
	}

	debug.Log("sandbox", "execution finished",
		"outcome", outcome,
		"exit_code", res.ExitCode,
		"duration_ms", res.Duration.Milliseconds(),
		"truncated", res.Truncated,
	)
	return res
}

func (e *Executor) execute(ctx context.Context, snip policy.Snippet) Result {
	if !snip.Valid() {
		return Fail(KindValidationRejected, "snippet was not validated")
	}

	if e.sem != nil {
		if !e.sem.TryAcquire(1) {
			return Fail(KindInfrastructure,
				fmt.Sprintf("sandbox at capacity (%d concurrent executions)", e.cfg.MaxConcurrent))
		}
		defer e.sem.Release(1)
	}

	art, err := createArtifact(e.dir, e.cfg.Extension, snip.Source())
	if err != nil {
		return Fail(KindInfrastructure, err.Error())
	}
	defer art.Release()

	return e.run(ctx, art.Path())
}

func (e *Executor) run(ctx context.Context, path string) Result {
	runCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	out := newCappedOutput(e.cfg.MaxOutputBytes)

	args := append(append([]string(nil), e.cfg.Args...), path)
	cmd := exec.CommandContext(runCtx, e.cfg.Interpreter, args...)
	cmd.Dir = e.dir
	cmd.Env = e.env
	cmd.Stdout = out.Stdout()
	cmd.Stderr = out.Stderr()
	cmd.WaitDelay = waitDelay
	configureProcess(cmd)

	observability.SandboxActive.Inc()
	runErr := cmd.Run()
	observability.SandboxActive.Dec()

	stdout, stderr, truncated := out.snapshot()
	exitCode := -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}

	var exitErr *exec.ExitError
	switch {
	case ctx.Err() != nil:
		return Fail(KindInfrastructure, "execution cancelled: "+ctx.Err().Error())

	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		res := Fail(KindTimeout, TimeoutDetail)
		res.Truncated = truncated
		return res

	case runErr != nil && !errors.As(runErr, &exitErr) && !errors.Is(runErr, exec.ErrWaitDelay):
		return Fail(KindInfrastructure, runErr.Error())

	case strings.TrimSpace(stderr) != "":
		res := Fail(KindRuntimeError, strings.TrimSpace(stderr))
		res.ExitCode = exitCode
		res.Truncated = truncated
		return res

	case exitCode != 0:
		res := Fail(KindRuntimeError, fmt.Sprintf("process exited with status %d", exitCode))
		res.ExitCode = exitCode
		return res
	}

	output := strings.TrimSpace(stdout)
	if truncated {
		if output != "" {
			output += "\n"
		}
		output += TruncationMarker
	}
	return Result{Output: output, ExitCode: exitCode, Truncated: truncated}
}
