package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/ZebulonRouseFrantzich/boj-launcher/internal/config"
)

// Command describes the child process to run.
type Command struct {
	Path   string
	Args   []string
	Env    []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Runner runs the server binary and reports its exit status.
type Runner interface {
	Run(ctx context.Context, cmd Command) (int, error)
}

// ExecRunner runs commands with os/exec. Interrupt and terminate signals
// received by the launcher while the child runs are forwarded to it.
type ExecRunner struct{}

// NewExecRunner creates an ExecRunner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run starts cmd and waits for it. A normal exit returns the child's status
// with a nil error; termination by a signal returns status 1 and an error
// naming the signal.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (int, error) {
	//nolint:gosec // G204: the path is the provisioned or explicitly configured server binary
	child := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	child.Env = cmd.Env
	child.Stdin = cmd.Stdin
	child.Stdout = cmd.Stdout
	child.Stderr = cmd.Stderr

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)

	if err := child.Start(); err != nil {
		return 1, fmt.Errorf("failed to start %s: %w", cmd.Path, err)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case sig := <-signals:
				_ = child.Process.Signal(sig)
			case <-done:
				return
			}
		}
	}()

	return exitStatus(child.Wait())
}

// exitStatus maps the result of Wait onto the launcher's exit status.
func exitStatus(err error) (int, error) {
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return 1, fmt.Errorf("wait for %s: %w", config.ProductName, err)
	}

	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 1, fmt.Errorf("%s terminated by signal: %s", config.ProductName, status.Signal())
	}
	if code := exitErr.ExitCode(); code >= 0 {
		return code, nil
	}
	return 1, fmt.Errorf("%s terminated by signal", config.ProductName)
}
