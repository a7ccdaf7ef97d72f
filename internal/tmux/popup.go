package tmux

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bubblechat/bubblechat/internal/window"
)

// WidgetSession is the detached session hosting the widget TUI. Hiding
// the popup only detaches from it, so the conversation survives.
const WidgetSession = "_bubblechat"

// PopupSurface implements window.Surface on top of a tmux popup
// attached to the detached widget session.
type PopupSurface struct {
	runner  Runner
	exe     string
	session string
}

// NewPopupSurface builds the production surface. exe is the bubblechat
// binary to run inside the widget session.
func NewPopupSurface(runner Runner, exe string) *PopupSurface {
	return &PopupSurface{runner: runner, exe: exe, session: WidgetSession}
}

// Create spawns the widget session without showing it. The diagnostic
// document for fallback content travels through a file to keep the
// command line sane.
func (s *PopupSurface) Create(spec window.CreateSpec) error {
	// A leftover session from a crashed agent would shadow the new
	// content; replace it.
	s.runner.Run("kill-session", "-t", s.session)

	widgetCmd := fmt.Sprintf("%s widget", shellQuote(s.exe))
	if spec.Fallback {
		path, err := writeDiagnostic(spec.Diagnostic)
		if err != nil {
			return fmt.Errorf("write diagnostic document: %w", err)
		}
		widgetCmd = fmt.Sprintf("%s -diagnostic %s", widgetCmd, shellQuote(path))
	}

	env := fmt.Sprintf("BUBBLECHAT_BACKEND_URL=%s", spec.Endpoint)
	return s.runner.Run("new-session", "-d", "-s", s.session, "-e", env, widgetCmd)
}

// Show opens (or re-opens) the popup at the given geometry on the
// attached client. Re-showing an open popup reasserts its position and
// top-most layering.
func (s *PopupSurface) Show(g window.Geometry) error {
	client, err := AttachedClient(s.runner)
	if err != nil {
		return err
	}
	attach := fmt.Sprintf("tmux attach-session -t %s", s.session)
	// display-popup blocks its invoking client until the popup closes,
	// so it must not run on the agent's Run path.
	return s.runner.Start(
		"display-popup",
		"-c", client,
		"-E",
		"-x", strconv.Itoa(g.X),
		"-y", strconv.Itoa(g.Y),
		"-w", strconv.Itoa(g.Width),
		"-h", strconv.Itoa(g.Height),
		attach,
	)
}

// Hide detaches every client from the widget session; the popup's
// attach command exits and the popup closes, content preserved.
func (s *PopupSurface) Hide() error {
	return s.runner.Run("detach-client", "-s", s.session)
}

// Destroy kills the widget session entirely.
func (s *PopupSurface) Destroy() error {
	return s.runner.Run("kill-session", "-t", s.session)
}

// Mapped reports whether the popup is currently displayed, i.e. some
// client is attached to the widget session.
func (s *PopupSurface) Mapped() bool {
	out, err := s.runner.Output("list-clients", "-t", s.session, "-F", "#{client_name}")
	if err != nil {
		return false
	}
	return strings.TrimSpace(out) != ""
}

func writeDiagnostic(doc string) (string, error) {
	path := filepath.Join(os.TempDir(), fmt.Sprintf("bubblechat-diagnostic-%d.txt", os.Getpid()))
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		return "", err
	}
	return path, nil
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t'\"\\$&|;<>()*?[]#~%") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
