package app

import (
	"context"
	"errors"
	"flag"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/bubblechat/bubblechat/internal/brand"
	"github.com/bubblechat/bubblechat/internal/chat"
	"github.com/bubblechat/bubblechat/internal/endpoint"
	"github.com/bubblechat/bubblechat/internal/logging"
	"github.com/bubblechat/bubblechat/internal/tmux"
	"github.com/bubblechat/bubblechat/internal/ui"
)

// runWidget is the TUI role executed inside the widget session. The
// agent passes the backend URL through the environment and, on load
// failure, a diagnostic document through a file.
func runWidget(cfg Config) error {
	fs := flag.NewFlagSet("widget", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))
	diagnosticPath := fs.String("diagnostic", "", "path to a diagnostic document to display instead of the chat")
	if err := fs.Parse(cfg.Args); err != nil {
		return err
	}

	ep := endpoint.Resolve()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	doc := brand.Fetch(ctx, ep)
	cancel()

	model := ui.NewModel(doc, chat.NewClient(ep, doc.API))
	if *diagnosticPath != "" {
		data, err := os.ReadFile(*diagnosticPath)
		if err != nil {
			logging.Warn("diagnostic document unreadable: %v", err)
		} else {
			model.SetDiagnostic(string(data))
		}
	}
	model.SetNotifier(hiddenNotifier())

	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// hiddenNotifier raises a desktop notification only when nothing is
// attached to the widget session, i.e. the answer arrived while the
// bubble was hidden.
func hiddenNotifier() ui.Notifier {
	runner := tmux.NewRunner("")
	surface := tmux.NewPopupSurface(runner, "")
	return func(title, body string) {
		if surface.Mapped() {
			return
		}
		if err := beeep.Notify(title, body, ""); err != nil {
			logging.Warn("notification failed: %v", err)
		}
	}
}
