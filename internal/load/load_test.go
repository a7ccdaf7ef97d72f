package load

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bubblechat/bubblechat/internal/endpoint"
)

func newSupervisor(url string) *Supervisor {
	s := NewSupervisor(endpoint.Endpoint{URL: url})
	s.maxWait = 300 * time.Millisecond
	return s
}

func TestLoadReachableBackendProducesWidgetSpec(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	spec := newSupervisor(srv.URL).Load()
	assert.False(t, spec.Fallback)
	assert.Equal(t, srv.URL, spec.Endpoint)
	assert.Empty(t, spec.Diagnostic)
}

func TestLoadMissingBrandDocumentIsStillReady(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	spec := newSupervisor(srv.URL).Load()
	assert.False(t, spec.Fallback, "404 means reachable; brand defaults cover the rest")
}

func TestLoadUnreachableBackendFallsBack(t *testing.T) {
	spec := newSupervisor("http://127.0.0.1:1").Load()
	require.True(t, spec.Fallback)
	assert.Contains(t, spec.Diagnostic, "http://127.0.0.1:1")
	assert.Contains(t, spec.Diagnostic, "unavailable")
	assert.NotEmpty(t, spec.Diagnostic)
}

func TestLoadServerErrorFallsBackWithStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "db down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	spec := newSupervisor(srv.URL).Load()
	require.True(t, spec.Fallback)
	assert.Contains(t, spec.Diagnostic, "503")
}

func TestDiagnosticContainsURLAndFailure(t *testing.T) {
	doc := Diagnostic("http://backend.example:9000", fmt.Errorf("connection refused"))
	assert.Contains(t, doc, "http://backend.example:9000")
	assert.Contains(t, doc, "connection refused")
	assert.Contains(t, doc, "unavailable")
}

type fakeDoc struct {
	labels    []string
	text      string
	opened    int
	openPanic bool
}

func (d *fakeDoc) AccessibleLabels() []string { return d.labels }
func (d *fakeDoc) VisibleText() string        { return d.text }
func (d *fakeDoc) TriggerOpen() bool {
	if d.openPanic {
		panic("launcher exploded")
	}
	d.opened++
	return true
}

func TestAttemptAccessibleLabelHeuristic(t *testing.T) {
	doc := &fakeDoc{labels: []string{"Close", "Open chat"}}
	assert.True(t, Attempt(doc, DefaultMatchers(), 0))
	assert.Equal(t, 1, doc.opened)
}

func TestAttemptVisibleTextHeuristic(t *testing.T) {
	doc := &fakeDoc{text: "Welcome!\n  💬 Chat with us  \n"}
	assert.True(t, Attempt(doc, DefaultMatchers(), 0))
	assert.Equal(t, 1, doc.opened)
}

func TestAttemptNoMatchLeavesDocumentAlone(t *testing.T) {
	doc := &fakeDoc{labels: []string{"settings"}, text: "nothing relevant here"}
	assert.False(t, Attempt(doc, DefaultMatchers(), 0))
	assert.Zero(t, doc.opened)
}

func TestAttemptSwallowsPanics(t *testing.T) {
	doc := &fakeDoc{labels: []string{"open chat"}, openPanic: true}
	assert.NotPanics(t, func() {
		assert.False(t, Attempt(doc, DefaultMatchers(), 1))
	})
}

func TestAttemptNilDocument(t *testing.T) {
	assert.False(t, Attempt(nil, DefaultMatchers(), 0))
}

func TestAttemptDelaysAreBoundedAndIncreasing(t *testing.T) {
	require.Len(t, AttemptDelays, 3)
	assert.Equal(t, time.Duration(0), AttemptDelays[0])
	for i := 1; i < len(AttemptDelays); i++ {
		assert.Greater(t, AttemptDelays[i], AttemptDelays[i-1])
	}
}
