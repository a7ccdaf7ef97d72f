package events

import "github.com/bubblechat/bubblechat/internal/logging"

type AppTracer struct{}

var App = AppTracer{}

func (AppTracer) Start(payload map[string]interface{}) {
	logging.Trace("app.start", payload)
}

func (AppTracer) SecondInstance(command string) {
	logging.Trace("app.second-instance", map[string]interface{}{"command": command})
}

func (AppTracer) Quit(reason string) {
	logging.Trace("app.quit", map[string]interface{}{"reason": reason})
}
