package spawn

import (
	"context"
	"io"
	"os/exec"
	"syscall"
)

// Handle is a running child process.
type Handle interface {
	Stdout() io.Reader
	Stderr() io.Reader
	// Wait blocks until the process exits. A non-zero exit status is
	// returned as an error, matching os/exec semantics.
	Wait() error
	// Kill terminates the process and all of its children.
	Kill() error
}

// Spawner starts child processes. The scheduler only depends on this
// interface so tests can substitute scripted processes.
type Spawner interface {
	Spawn(ctx context.Context, path string, args ...string) (Handle, error)
}

type execSpawner struct{}

// NewExecSpawner returns the os/exec backed Spawner.
func NewExecSpawner() Spawner { return execSpawner{} }

func (execSpawner) Spawn(ctx context.Context, path string, args ...string) (Handle, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	return &execHandle{cmd: cmd, stdout: stdout, stderr: stderr}, nil
}

type execHandle struct {
	cmd    *exec.Cmd
	stdout io.Reader
	stderr io.Reader
}

func (h *execHandle) Stdout() io.Reader { return h.stdout }
func (h *execHandle) Stderr() io.Reader { return h.stderr }
func (h *execHandle) Wait() error       { return h.cmd.Wait() }

// Kill sends SIGTERM to the whole process group. yt-dlp spawns its own
// children, so the parent was started with Setpgid and the signal must
// target the negated group id.
func (h *execHandle) Kill() error {
	if h.cmd.Process == nil {
		return nil
	}

	pgid, err := syscall.Getpgid(h.cmd.Process.Pid)
	if err != nil {
		return h.cmd.Process.Kill()
	}

	return syscall.Kill(-pgid, syscall.SIGTERM)
}
