package tmux

import (
	"fmt"
	"strings"
	"testing"

	"github.com/bubblechat/bubblechat/internal/window"
)

type fakeRunner struct {
	runs    [][]string
	starts  [][]string
	outputs map[string]string
	failRun map[string]error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{outputs: map[string]string{}, failRun: map[string]error{}}
}

func (f *fakeRunner) Run(args ...string) error {
	f.runs = append(f.runs, args)
	if err, ok := f.failRun[args[0]]; ok {
		return err
	}
	return nil
}

func (f *fakeRunner) Output(args ...string) (string, error) {
	if out, ok := f.outputs[args[0]]; ok {
		return out, nil
	}
	return "", fmt.Errorf("no output stubbed for %s", args[0])
}

func (f *fakeRunner) Start(args ...string) error {
	f.starts = append(f.starts, args)
	return nil
}

func (f *fakeRunner) lastRun() []string {
	if len(f.runs) == 0 {
		return nil
	}
	return f.runs[len(f.runs)-1]
}

func TestParseWorkAreaSubtractsStatusLine(t *testing.T) {
	area, err := parseWorkArea("120 40 on\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if area != (WorkArea{Cols: 120, Rows: 39}) {
		t.Fatalf("got %+v", area)
	}
}

func TestParseWorkAreaStatusVariants(t *testing.T) {
	cases := []struct {
		out  string
		rows int
	}{
		{"120 40 off", 40},
		{"120 40 2", 38},
		{"120 40", 40},
		{"120 40 garbage", 40},
	}
	for _, tc := range cases {
		area, err := parseWorkArea(tc.out)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tc.out, err)
		}
		if area.Rows != tc.rows {
			t.Fatalf("%q: rows = %d, want %d", tc.out, area.Rows, tc.rows)
		}
	}
}

func TestParseWorkAreaMalformed(t *testing.T) {
	if _, err := parseWorkArea("garbage"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestCreateSpawnsDetachedWidgetSession(t *testing.T) {
	runner := newFakeRunner()
	surface := NewPopupSurface(runner, "/usr/local/bin/bubblechat")
	err := surface.Create(window.CreateSpec{Endpoint: "http://backend.example"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	last := f(runner.lastRun())
	for _, want := range []string{"new-session", "-d", "-s " + WidgetSession, "widget", "BUBBLECHAT_BACKEND_URL=http://backend.example"} {
		if !strings.Contains(last, want) {
			t.Fatalf("expected %q in %q", want, last)
		}
	}
}

func TestCreateFallbackPassesDiagnosticFile(t *testing.T) {
	runner := newFakeRunner()
	surface := NewPopupSurface(runner, "bubblechat")
	err := surface.Create(window.CreateSpec{
		Endpoint:   "http://backend.example",
		Fallback:   true,
		Diagnostic: "Chat assistant unavailable",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.Contains(f(runner.lastRun()), "-diagnostic") {
		t.Fatalf("expected diagnostic flag in %q", f(runner.lastRun()))
	}
}

func TestShowOpensPopupOnAttachedClient(t *testing.T) {
	runner := newFakeRunner()
	runner.outputs["list-clients"] = "/dev/ttys001\n"
	surface := NewPopupSurface(runner, "bubblechat")
	err := surface.Show(window.Geometry{X: 46, Y: 16, Width: 72, Height: 22})
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if len(runner.starts) != 1 {
		t.Fatalf("expected one fire-and-forget popup command, got %d", len(runner.starts))
	}
	got := f(runner.starts[0])
	for _, want := range []string{"display-popup", "-c /dev/ttys001", "-x 46", "-y 16", "-w 72", "-h 22", "attach-session -t " + WidgetSession} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in %q", want, got)
		}
	}
}

func TestShowWithoutClientFails(t *testing.T) {
	runner := newFakeRunner()
	runner.outputs["list-clients"] = "\n"
	surface := NewPopupSurface(runner, "bubblechat")
	if err := surface.Show(window.Geometry{}); err == nil {
		t.Fatalf("expected error when no client is attached")
	}
}

func TestHideDetachesWidgetSession(t *testing.T) {
	runner := newFakeRunner()
	surface := NewPopupSurface(runner, "bubblechat")
	if err := surface.Hide(); err != nil {
		t.Fatalf("hide: %v", err)
	}
	if got := f(runner.lastRun()); !strings.Contains(got, "detach-client") || !strings.Contains(got, WidgetSession) {
		t.Fatalf("unexpected hide command %q", got)
	}
}

func TestDestroyKillsWidgetSession(t *testing.T) {
	runner := newFakeRunner()
	surface := NewPopupSurface(runner, "bubblechat")
	if err := surface.Destroy(); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if got := f(runner.lastRun()); !strings.Contains(got, "kill-session") {
		t.Fatalf("unexpected destroy command %q", got)
	}
}

func TestMappedReflectsAttachedClients(t *testing.T) {
	runner := newFakeRunner()
	surface := NewPopupSurface(runner, "bubblechat")
	runner.outputs["list-clients"] = "\n"
	if surface.Mapped() {
		t.Fatalf("expected unmapped")
	}
	runner.outputs["list-clients"] = "/dev/ttys001\n"
	if !surface.Mapped() {
		t.Fatalf("expected mapped")
	}
}

func TestShellQuote(t *testing.T) {
	cases := map[string]string{
		"plain":        "plain",
		"/usr/bin/x":   "/usr/bin/x",
		"with space":   "'with space'",
		"don't":        `'don'\''t'`,
		"":             "''",
		"a;rm -rf /":   "'a;rm -rf /'",
	}
	for in, want := range cases {
		if got := shellQuote(in); got != want {
			t.Fatalf("shellQuote(%q) = %q, want %q", in, got, want)
		}
	}
}

func f(args []string) string { return strings.Join(args, " ") }
