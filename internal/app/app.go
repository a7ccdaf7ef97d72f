// Package app wires the roles of the bubblechat binary together: the
// long-lived agent that owns the bubble, the widget TUI running inside
// it, and the thin command sender used by hotkeys and menus.
package app

import (
	"fmt"

	"github.com/bubblechat/bubblechat/internal/control"
)

// Subcommands accepted on the command line. No command runs the agent.
const (
	CommandWidget = "widget"
	CommandShow   = "show"
	CommandHide   = "hide"
	CommandToggle = "toggle"
	CommandReload = "reload"
	CommandQuit   = "quit"
	CommandMenu   = "menu"
)

// Config describes user-provided application options.
type Config struct {
	Command    string
	Args       []string
	SocketPath string
	Width      int
	Height     int
	Margin     int
	Hotkey     string
	AssetsDir  string
	AssetsAddr string
}

// Run executes the role selected by the command.
func Run(cfg Config) error {
	switch cfg.Command {
	case "":
		return runAgent(cfg)
	case CommandWidget:
		return runWidget(cfg)
	case CommandShow, CommandHide, CommandToggle, CommandReload, CommandQuit, CommandMenu:
		return sendCommand(cfg)
	default:
		return fmt.Errorf("unknown command %q", cfg.Command)
	}
}

// sendCommand forwards one command to the running agent.
func sendCommand(cfg Config) error {
	path := control.SocketPath(cfg.SocketPath)
	return control.Send(path, cfg.Command)
}
