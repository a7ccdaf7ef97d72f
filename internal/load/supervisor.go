// Package load governs what the bubble window displays: the real
// widget when the backend host page is reachable, or a synthesized
// diagnostic document when it is not. Either way the window still
// becomes visible; a blank or invisible bubble is never an acceptable
// outcome.
package load

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/bubblechat/bubblechat/internal/brand"
	"github.com/bubblechat/bubblechat/internal/endpoint"
	"github.com/bubblechat/bubblechat/internal/logging/events"
	"github.com/bubblechat/bubblechat/internal/window"
)

// Supervisor probes the widget host page and produces the create spec
// for the window controller.
type Supervisor struct {
	endpoint endpoint.Endpoint
	client   *http.Client
	maxWait  time.Duration
}

// NewSupervisor builds a supervisor for the resolved endpoint.
func NewSupervisor(ep endpoint.Endpoint) *Supervisor {
	return &Supervisor{
		endpoint: ep,
		client:   &http.Client{Timeout: 5 * time.Second},
		maxWait:  6 * time.Second,
	}
}

// Load implements window.Loader. It never fails: an unreachable or
// broken backend yields a fallback spec whose diagnostic document the
// widget renders in place of the conversation.
func (s *Supervisor) Load() window.CreateSpec {
	target := s.endpoint.ChatURL(brand.ConfigPath)
	events.Load.Attempt(target)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 250 * time.Millisecond
	policy.MaxElapsedTime = s.maxWait

	err := backoff.Retry(func() error {
		return s.probe(target)
	}, policy)
	if err != nil {
		events.Load.Failed(target, err)
		return window.CreateSpec{
			Endpoint:   s.endpoint.URL,
			Fallback:   true,
			Diagnostic: Diagnostic(s.endpoint.URL, err),
		}
	}

	events.Load.Ready(target, false)
	return window.CreateSpec{Endpoint: s.endpoint.URL}
}

func (s *Supervisor) probe(target string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	// Any response proves the host page is reachable; a missing brand
	// document falls back to defaults inside the widget.
	if resp.StatusCode >= 500 {
		return &probeError{status: resp.StatusCode}
	}
	return nil
}

type probeError struct {
	status int
}

func (e *probeError) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.status, http.StatusText(e.status))
}

// Diagnostic synthesizes the substitute document shown when the widget
// page cannot be loaded: a human-readable title, the failing backend
// URL, and the raw failure description.
func Diagnostic(backendURL string, err error) string {
	detail := "unknown error"
	if err != nil {
		detail = err.Error()
	}
	var b strings.Builder
	b.WriteString("Chat assistant unavailable\n\n")
	fmt.Fprintf(&b, "The chat widget could not be loaded.\n\n")
	fmt.Fprintf(&b, "Backend:  %s\n", backendURL)
	fmt.Fprintf(&b, "Failure:  %s\n\n", detail)
	b.WriteString("The bubble stays open so you can see this message.\n")
	b.WriteString("Fix the backend and pick Reload from the tray menu.\n")
	return b.String()
}
