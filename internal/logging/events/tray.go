package events

import "github.com/bubblechat/bubblechat/internal/logging"

type TrayTracer struct{}

var Tray = TrayTracer{}

func (TrayTracer) HotkeyBound(key string) {
	logging.Trace("tray.hotkey.bound", map[string]interface{}{"key": key})
}

func (TrayTracer) HotkeyFailed(key string, err error) {
	payload := map[string]interface{}{"key": key}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("tray.hotkey.error", payload)
}

func (TrayTracer) HotkeyReleased(key string) {
	logging.Trace("tray.hotkey.released", map[string]interface{}{"key": key})
}

func (TrayTracer) IconResolved(path, source string) {
	logging.Trace("tray.icon", map[string]interface{}{"path": path, "source": source})
}

func (TrayTracer) Menu(command string) {
	logging.Trace("tray.menu", map[string]interface{}{"command": command})
}

func (TrayTracer) Notify(title string) {
	logging.Trace("tray.notify", map[string]interface{}{"title": title})
}
