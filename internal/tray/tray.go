// Package tray provides the user-facing entry points outside the
// bubble itself: a global tmux hotkey, a context menu, and desktop
// notifications. Every feature here degrades gracefully; the window
// lifecycle stays fully usable when any of them fails.
package tray

import (
	"fmt"
	"strings"

	"github.com/gen2brain/beeep"

	"github.com/bubblechat/bubblechat/internal/logging"
	"github.com/bubblechat/bubblechat/internal/logging/events"
	"github.com/bubblechat/bubblechat/internal/tmux"
)

// DefaultHotkey is the prefix-less tmux key that toggles the bubble.
const DefaultHotkey = "M-b"

// Controller owns the tray surface for one agent process.
type Controller struct {
	runner tmux.Runner
	exe    string
	hotkey string
	bound  bool
	icon   string
}

// New builds a tray controller. exe is the bubblechat binary invoked
// by key bindings and menu entries; hotkey empty selects the default.
func New(runner tmux.Runner, exe, hotkey string) *Controller {
	if strings.TrimSpace(hotkey) == "" {
		hotkey = DefaultHotkey
	}
	return &Controller{runner: runner, exe: exe, hotkey: hotkey}
}

// Install binds the global hotkey and resolves the tray icon. Hotkey
// registration failure is logged and the feature silently degrades;
// the icon always resolves to something.
func (c *Controller) Install(iconCandidates []string, cacheDir string) {
	if err := c.runner.Run("bind-key", "-n", c.hotkey, "run-shell", c.exe+" toggle"); err != nil {
		events.Tray.HotkeyFailed(c.hotkey, err)
		logging.Warn("global hotkey %s unavailable: %v", c.hotkey, err)
	} else {
		c.bound = true
		events.Tray.HotkeyBound(c.hotkey)
	}

	icon, source := ResolveIcon(iconCandidates, cacheDir)
	c.icon = icon
	events.Tray.IconResolved(icon, source)
}

// Uninstall releases the global hotkey. Leaking the binding past
// process exit would shadow the key for every other tmux user.
func (c *Controller) Uninstall() {
	if !c.bound {
		return
	}
	if err := c.runner.Run("unbind-key", "-n", c.hotkey); err != nil {
		logging.Warn("unbind hotkey %s: %v", c.hotkey, err)
		return
	}
	c.bound = false
	events.Tray.HotkeyReleased(c.hotkey)
}

// HotkeyBound reports whether the global hotkey is active.
func (c *Controller) HotkeyBound() bool { return c.bound }

// Icon returns the resolved icon path.
func (c *Controller) Icon() string { return c.icon }

// ShowMenu opens the context menu on the attached client.
func (c *Controller) ShowMenu() error {
	client, err := tmux.AttachedClient(c.runner)
	if err != nil {
		return fmt.Errorf("tray menu: %w", err)
	}
	events.Tray.Menu("open")
	return c.runner.Run(
		"display-menu",
		"-c", client,
		"-T", " bubblechat ",
		"Show", "s", c.exe+" show",
		"Hide", "h", c.exe+" hide",
		"Reload", "r", c.exe+" reload",
		"", // separator
		"Quit", "q", c.exe+" quit",
	)
}

// Notify raises a desktop notification with the tray icon. Used when
// an answer arrives while the bubble is hidden. Failures are logged
// only; notifications are best-effort.
func (c *Controller) Notify(title, body string) {
	events.Tray.Notify(title)
	if err := beeep.Notify(title, body, c.icon); err != nil {
		logging.Warn("notification failed: %v", err)
	}
}
