package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bubblechat/bubblechat/internal/backend"
	"github.com/bubblechat/bubblechat/internal/control"
	"github.com/bubblechat/bubblechat/internal/endpoint"
	"github.com/bubblechat/bubblechat/internal/load"
	"github.com/bubblechat/bubblechat/internal/logging"
	"github.com/bubblechat/bubblechat/internal/logging/events"
	"github.com/bubblechat/bubblechat/internal/staticserve"
	"github.com/bubblechat/bubblechat/internal/tmux"
	"github.com/bubblechat/bubblechat/internal/tray"
	"github.com/bubblechat/bubblechat/internal/window"
)

const watchInterval = 1500 * time.Millisecond

// resolvingLoader re-resolves the backend endpoint on every load so a
// reload picks up an edited backend-url file without restarting.
type resolvingLoader struct{}

func (resolvingLoader) Load() window.CreateSpec {
	return load.NewSupervisor(endpoint.Resolve()).Load()
}

// runAgent is the long-lived role: it owns the window controller, the
// tray surface, the control socket, and the watcher, and serializes
// every mutation onto this goroutine.
func runAgent(cfg Config) error {
	socketPath := control.SocketPath(cfg.SocketPath)

	commands := make(chan string, 8)
	server, err := control.Listen(socketPath, func(command string) error {
		switch command {
		case CommandShow, CommandHide, CommandToggle, CommandReload, CommandQuit, CommandMenu:
		default:
			return fmt.Errorf("unknown command %q", command)
		}
		commands <- command
		return nil
	})
	if err == control.ErrAlreadyRunning {
		// Second launch: surface the existing bubble instead.
		events.App.SecondInstance(CommandShow)
		return control.Send(socketPath, CommandShow)
	}
	if err != nil {
		return err
	}
	defer server.Close()

	exe, err := os.Executable()
	if err != nil {
		exe = "bubblechat"
	}

	runner := tmux.NewRunner("")
	surface := tmux.NewPopupSurface(runner, exe)

	area := window.WorkArea{}
	if wa, err := tmux.ClientWorkArea(runner); err == nil {
		area = window.WorkArea{Cols: wa.Cols, Rows: wa.Rows}
	}

	ctrl := window.New(surface, resolvingLoader{}, window.Dimensions{
		Width:  cfg.Width,
		Height: cfg.Height,
		Margin: cfg.Margin,
	}, area)

	trayCtrl := tray.New(runner, exe, cfg.Hotkey)
	trayCtrl.Install(tray.DefaultIconCandidates(), cacheDir())
	defer trayCtrl.Uninstall()

	watcher := backend.NewWatcher(runner, surface, watchInterval)
	defer watcher.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.AssetsDir != "" {
		addr := cfg.AssetsAddr
		if addr == "" {
			addr = "127.0.0.1:8077"
		}
		go func() {
			if err := staticserve.Serve(ctx, addr, cfg.AssetsDir); err != nil {
				logging.Warn("asset server: %v", err)
			}
		}()
	}

	fileEvents := watchEndpointFile(ctx)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)

	if err := ctrl.Show(); err != nil {
		logging.Error(fmt.Errorf("initial show: %w", err))
	}

	reason := ""
loop:
	for {
		select {
		case command := <-commands:
			if command == CommandQuit {
				reason = "quit command"
				break loop
			}
			dispatch(ctrl, trayCtrl, command)
		case event, ok := <-watcher.Events():
			if !ok {
				reason = "watcher closed"
				break loop
			}
			applyWatcherEvent(ctrl, event)
		case <-fileEvents:
			logging.Info("backend endpoint file changed, reloading")
			if err := ctrl.Reload(); err != nil {
				logging.Error(fmt.Errorf("reload after endpoint change: %w", err))
			}
		case sig := <-signals:
			reason = sig.String()
			break loop
		}
	}

	events.App.Quit(reason)
	ctrl.Destroy()
	return nil
}

func dispatch(ctrl *window.Controller, trayCtrl *tray.Controller, command string) {
	var err error
	switch command {
	case CommandShow:
		err = ctrl.Show()
	case CommandHide:
		err = ctrl.Hide()
	case CommandToggle:
		err = ctrl.Toggle()
	case CommandReload:
		err = ctrl.Reload()
	case CommandMenu:
		err = trayCtrl.ShowMenu()
	}
	if err != nil {
		logging.Error(fmt.Errorf("command %s: %w", command, err))
	}
}

func applyWatcherEvent(ctrl *window.Controller, event backend.Event) {
	if event.Err != nil {
		return
	}
	switch event.Kind {
	case backend.KindWorkArea:
		wa, ok := event.Data.(tmux.WorkArea)
		if !ok {
			return
		}
		if err := ctrl.SetWorkArea(window.WorkArea{Cols: wa.Cols, Rows: wa.Rows}); err != nil {
			logging.Error(fmt.Errorf("work-area change: %w", err))
		}
	case backend.KindMapped:
		mapped, ok := event.Data.(bool)
		if !ok {
			return
		}
		ctrl.SyncVisibility(mapped)
	}
}

// watchEndpointFile emits a value whenever the persisted backend-url
// file changes. A missing config directory disables the feature.
func watchEndpointFile(ctx context.Context) <-chan struct{} {
	out := make(chan struct{}, 1)

	target := endpoint.DefaultConfigPath()
	if target == "" {
		return out
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Warn("endpoint file watch unavailable: %v", err)
		return out
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		logging.Warn("endpoint file watch unavailable: %v", err)
		watcher.Close()
		return out
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
					continue
				}
				select {
				case out <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Warn("endpoint file watch: %v", err)
			}
		}
	}()
	return out
}

func cacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return os.TempDir()
	}
	return filepath.Join(base, "bubblechat")
}
