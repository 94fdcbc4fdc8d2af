package parts

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/streamkit/streamkit/errors"
	"github.com/streamkit/streamkit/stream"
)

// ExecConfig configures an ExecWith pipe.
type ExecConfig struct {
	// Binary is the executable path or name (resolved via PATH).
	Binary string
	// Args are the command-line arguments.
	Args []string
	// Dir is the working directory. If empty, uses the current directory.
	Dir string
	// Env is additional environment variables (key=value). Merged with os.Environ.
	Env []string
	// GracePeriod is how long to wait after SIGTERM before SIGKILL.
	// Defaults to 5 seconds if zero.
	GracePeriod time.Duration
	// Resilience applies rate limiting, concurrency caps, circuit breaking,
	// and retries around each command.
	Resilience ResilienceConfig
}

// Exec returns a pipe that runs the command once per value, writing the
// value to stdin and emitting the command's stdout with surrounding
// whitespace trimmed.
func Exec(binary string, args ...string) stream.Pipe {
	return ExecWith(ExecConfig{Binary: binary, Args: args})
}

// ExecWith is Exec with full control over the subprocess configuration.
// If the context is canceled mid-command, SIGTERM is sent to the process
// group first, then SIGKILL after the grace period.
func ExecWith(cfg ExecConfig) stream.Pipe {
	if cfg.GracePeriod == 0 {
		cfg.GracePeriod = 5 * time.Second
	}
	return &execPipe{cfg: cfg, res: buildResilience(cfg.Resilience)}
}

type execPipe struct {
	stateless
	cfg ExecConfig
	res *resilienceState
}

func (p *execPipe) TypeIn() stream.Type  { return stream.TypeOf[string]() }
func (p *execPipe) TypeOut() stream.Type { return stream.TypeOf[string]() }

func (p *execPipe) Transform(_ context.Context, _ stream.Env, src stream.Iterator) stream.Iterator {
	return stream.IteratorFunc(func(ctx context.Context) (any, bool, error) {
		v, ok, err := src.Next(ctx)
		if err != nil || !ok {
			return nil, false, err
		}
		in, err := as[string](v)
		if err != nil {
			return nil, false, err
		}
		out, err := applyResilience(ctx, p.res, func() (string, error) {
			return p.run(ctx, in)
		})
		if err != nil {
			return nil, false, err
		}
		return out, true, nil
	})
}

func (p *execPipe) run(ctx context.Context, input string) (string, error) {
	if p.cfg.Binary == "" {
		return "", errors.InvalidInput("binary", "is required")
	}

	c := exec.CommandContext(ctx, p.cfg.Binary, p.cfg.Args...) //nolint:gosec // dynamic args are the purpose of this part
	c.Dir = p.cfg.Dir
	c.Env = mergeEnv(p.cfg.Env)
	c.Stdin = strings.NewReader(input)

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	// Use process group so we can kill the entire tree
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	// Don't let exec.CommandContext kill with SIGKILL immediately
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
	c.WaitDelay = p.cfg.GracePeriod

	if err := c.Run(); err != nil {
		// Context cancellation is the expected way to kill a command
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		execErr := errors.ExecFailed(p.cfg.Binary, err)
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			execErr = execErr.WithDetail("stderr", msg)
		}
		return "", execErr
	}
	return strings.TrimSpace(stdout.String()), nil
}

// mergeEnv merges additional env vars with the current environment.
func mergeEnv(extra []string) []string {
	if len(extra) == 0 {
		return nil // inherit parent env
	}
	return append(os.Environ(), extra...)
}
