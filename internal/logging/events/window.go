package events

import "github.com/bubblechat/bubblechat/internal/logging"

type WindowTracer struct{}

var Window = WindowTracer{}

func (WindowTracer) Transition(from, to string) {
	logging.Trace("window.transition", map[string]interface{}{"from": from, "to": to})
}

func (WindowTracer) Show(x, y, width, height int) {
	logging.Trace("window.show", map[string]interface{}{
		"x": x, "y": y, "width": width, "height": height,
	})
}

func (WindowTracer) Hide() {
	logging.Trace("window.hide", nil)
}

func (WindowTracer) Reposition(x, y, width, height int) {
	logging.Trace("window.reposition", map[string]interface{}{
		"x": x, "y": y, "width": width, "height": height,
	})
}

func (WindowTracer) EnsureFailed(err error) {
	if err == nil {
		return
	}
	logging.Trace("window.ensure.error", map[string]interface{}{"error": err.Error()})
}

func (WindowTracer) Destroy() {
	logging.Trace("window.destroy", nil)
}
