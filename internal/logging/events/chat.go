package events

import "github.com/bubblechat/bubblechat/internal/logging"

type ChatTracer struct{}

var Chat = ChatTracer{}

func (ChatTracer) Send(requestID string, length int) {
	logging.Trace("chat.send", map[string]interface{}{"request": requestID, "length": length})
}

func (ChatTracer) Receive(requestID string, citations int) {
	logging.Trace("chat.receive", map[string]interface{}{"request": requestID, "citations": citations})
}

func (ChatTracer) Error(requestID string, err error) {
	if err == nil {
		return
	}
	logging.Trace("chat.error", map[string]interface{}{"request": requestID, "error": err.Error()})
}

func (ChatTracer) BreakerOpen(state string) {
	logging.Trace("chat.breaker", map[string]interface{}{"state": state})
}
