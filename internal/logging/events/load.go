package events

import "github.com/bubblechat/bubblechat/internal/logging"

type LoadTracer struct{}

var Load = LoadTracer{}

func (LoadTracer) Attempt(target string) {
	logging.Trace("load.attempt", map[string]interface{}{"target": target})
}

func (LoadTracer) Ready(target string, fallback bool) {
	logging.Trace("load.ready", map[string]interface{}{"target": target, "fallback": fallback})
}

func (LoadTracer) Failed(target string, err error) {
	payload := map[string]interface{}{"target": target}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("load.error", payload)
}

func (LoadTracer) AutoOpen(matcher string, attempt int) {
	logging.Trace("load.auto-open", map[string]interface{}{"matcher": matcher, "attempt": attempt})
}

func (LoadTracer) AutoOpenGaveUp(attempts int) {
	logging.Trace("load.auto-open.give-up", map[string]interface{}{"attempts": attempts})
}
