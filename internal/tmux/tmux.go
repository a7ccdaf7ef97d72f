// Package tmux drives the hosting tmux server: it spawns the widget's
// detached session, opens and closes the popup that displays it, and
// manages key bindings and menus. Everything goes through the Runner
// interface so the rest of the application can be tested without a
// tmux server.
package tmux

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Runner executes tmux commands. Run waits for completion, Output
// captures stdout, Start fires and forgets (used for commands that
// block while the popup is open).
type Runner interface {
	Run(args ...string) error
	Output(args ...string) (string, error)
	Start(args ...string) error
}

// NewRunner returns a Runner that shells out to the tmux binary,
// optionally against an explicit socket path.
func NewRunner(socketPath string) Runner {
	return &execRunner{socketPath: socketPath}
}

type execRunner struct {
	socketPath string
}

func (r *execRunner) command(extra ...string) *exec.Cmd {
	args := make([]string, 0, len(extra)+2)
	if trimmed := strings.TrimSpace(r.socketPath); trimmed != "" {
		args = append(args, "-S", trimmed)
	}
	args = append(args, extra...)
	cmd := exec.Command("tmux", args...)
	if dir := socketDir(r.socketPath); dir != "" {
		cmd.Env = append(os.Environ(), "TMUX_TMPDIR="+dir)
	}
	return cmd
}

func (r *execRunner) Run(args ...string) error {
	out, err := r.command(args...).CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(out))
		if detail == "" {
			return fmt.Errorf("tmux %s: %w", strings.Join(args, " "), err)
		}
		return fmt.Errorf("tmux %s: %s", strings.Join(args, " "), detail)
	}
	return nil
}

func (r *execRunner) Output(args ...string) (string, error) {
	out, err := r.command(args...).Output()
	if err != nil {
		return "", fmt.Errorf("tmux %s: %w", strings.Join(args, " "), err)
	}
	return string(out), nil
}

func (r *execRunner) Start(args ...string) error {
	return r.command(args...).Start()
}

func socketDir(socket string) string {
	trimmed := strings.TrimSpace(socket)
	if trimmed == "" {
		return ""
	}
	return filepath.Dir(trimmed)
}

// WorkArea is the hosting client's usable size in cells, excluding the
// status line.
type WorkArea struct {
	Cols int
	Rows int
}

// ClientWorkArea reports the work area of the first attached client.
func ClientWorkArea(r Runner) (WorkArea, error) {
	out, err := r.Output("display-message", "-p", "#{client_width} #{client_height} #{status}")
	if err != nil {
		return WorkArea{}, err
	}
	return parseWorkArea(out)
}

func parseWorkArea(out string) (WorkArea, error) {
	fields := strings.Fields(strings.TrimSpace(out))
	if len(fields) < 2 {
		return WorkArea{}, fmt.Errorf("unexpected work-area reply %q", out)
	}
	cols, err := strconv.Atoi(fields[0])
	if err != nil {
		return WorkArea{}, fmt.Errorf("unexpected client width %q", fields[0])
	}
	rows, err := strconv.Atoi(fields[1])
	if err != nil {
		return WorkArea{}, fmt.Errorf("unexpected client height %q", fields[1])
	}
	status := 0
	if len(fields) > 2 {
		status = statusRows(fields[2])
	}
	rows -= status
	if rows < 1 {
		rows = 1
	}
	return WorkArea{Cols: cols, Rows: rows}, nil
}

// statusRows interprets the #{status} format: on/off or a row count.
func statusRows(value string) int {
	switch value {
	case "on":
		return 1
	case "off", "":
		return 0
	}
	if n, err := strconv.Atoi(value); err == nil && n >= 0 {
		return n
	}
	return 0
}

// AttachedClient names the client the popup should appear on. Empty
// output means no client is attached.
func AttachedClient(r Runner) (string, error) {
	out, err := r.Output("list-clients", "-F", "#{client_name}")
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(out, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			return name, nil
		}
	}
	return "", fmt.Errorf("no attached tmux client")
}
