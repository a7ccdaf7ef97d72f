// Package ui implements the chat widget: a launcher affordance that
// expands into a scrollable transcript with an input line.
package ui

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/bubblechat/bubblechat/internal/brand"
	"github.com/bubblechat/bubblechat/internal/chat"
	"github.com/bubblechat/bubblechat/internal/load"
	"github.com/bubblechat/bubblechat/internal/logging/events"
	"github.com/bubblechat/bubblechat/internal/theme"
	uistate "github.com/bubblechat/bubblechat/internal/ui/state"
)

const (
	defaultWidth  = 72
	defaultHeight = 22
)

// Sender performs one chat round-trip. *chat.Client satisfies it.
type Sender interface {
	Send(ctx context.Context, message string, history []chat.Turn) (chat.Response, error)
}

// Notifier surfaces an answer that arrived while the widget was not on
// screen. Nil disables notifications.
type Notifier func(title, body string)

type msgHandler func(tea.Msg) tea.Cmd

type sendResultMsg struct {
	id   string
	resp chat.Response
	err  error
}

type autoOpenMsg struct {
	attempt int
}

// Model implements the Bubble Tea model for the chat widget.
type Model struct {
	sender     Sender
	doc        brand.Document
	styles     theme.Styles
	transcript *uistate.Transcript
	notifier   Notifier

	input textinput.Model
	spin  spinner.Model
	vp    viewport.Model

	width  int
	height int
	open   bool

	sending string // ID of the in-flight turn, empty when idle

	diagnostic string

	matchers []load.Matcher
	renderer *glamour.TermRenderer
	anchors  map[string]int

	handlers map[reflect.Type]msgHandler
}

// NewModel initialises the widget from the brand document.
func NewModel(doc brand.Document, sender Sender) *Model {
	styles := theme.Default().WithBrandColors(doc.Colors.Primary, doc.Colors.Accent)

	input := textinput.New()
	input.Placeholder = "Type a message"
	input.Prompt = styles.Prompt.Render("> ")
	input.CharLimit = 2000
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.MiniDot
	spin.Style = *styles.Spinner

	m := &Model{
		sender:     sender,
		doc:        doc,
		styles:     styles,
		transcript: uistate.NewTranscript(),
		input:      input,
		spin:       spin,
		vp:         viewport.New(defaultWidth, defaultHeight-4),
		width:      defaultWidth,
		height:     defaultHeight,
		matchers:   load.DefaultMatchers(),
		anchors:    map[string]int{},
	}
	m.rebuildRenderer()
	m.registerHandlers()
	return m
}

// SetNotifier installs the out-of-view answer notifier.
func (m *Model) SetNotifier(n Notifier) {
	m.notifier = n
}

// SetDiagnostic switches the widget to the load-failure page. The
// transcript and input are not shown in this mode.
func (m *Model) SetDiagnostic(text string) {
	m.diagnostic = strings.TrimSpace(text)
}

// Open reports whether the chat panel is expanded.
func (m *Model) Open() bool {
	return m.open
}

// Transcript exposes the conversation store.
func (m *Model) Transcript() *uistate.Transcript {
	return m.transcript
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.diagnostic == "" {
		cmds = append(cmds, scheduleAutoOpen(0))
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if handler := m.handlerFor(msg); handler != nil {
		return m, handler(msg)
	}
	if _, ok := msg.(spinner.TickMsg); ok && m.sending != "" {
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(sendResultMsg{}):     m.handleSendResultMsg,
		reflect.TypeOf(autoOpenMsg{}):       m.handleAutoOpenMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	key := msg.(tea.KeyMsg)
	switch key.Type {
	case tea.KeyCtrlC:
		return tea.Quit
	case tea.KeyEsc:
		if m.open {
			m.open = false
		}
		return nil
	case tea.KeyEnter:
		if m.diagnostic != "" {
			return nil
		}
		if !m.open {
			m.open = true
			m.syncViewport("", false)
			return nil
		}
		return m.submit()
	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown, tea.KeyHome, tea.KeyEnd:
		if !m.open {
			return nil
		}
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return cmd
	}

	if !m.open || m.diagnostic != "" {
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	size := msg.(tea.WindowSizeMsg)
	if size.Width > 0 {
		m.width = size.Width
	}
	if size.Height > 0 {
		m.height = size.Height
	}
	m.vp.Width = m.width
	m.vp.Height = m.viewportHeight()
	m.input.Width = m.width - 4
	m.rebuildRenderer()
	m.syncViewport("", false)
	return nil
}

// submit sends the current input as a new turn. Whitespace-only input
// is dropped without touching the transcript or the network, and a
// second submit while one is in flight is ignored.
func (m *Model) submit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		m.input.Reset()
		return nil
	}
	if m.sending != "" {
		return nil
	}

	history := m.transcript.History()
	id := m.transcript.AppendUser(text)
	m.sending = id
	m.input.Reset()
	m.syncViewport("", true)

	return tea.Batch(m.sendCmd(id, text, history), m.spin.Tick)
}

func (m *Model) sendCmd(id, text string, history []chat.Turn) tea.Cmd {
	sender := m.sender
	return func() tea.Msg {
		resp, err := sender.Send(context.Background(), text, history)
		return sendResultMsg{id: id, resp: resp, err: err}
	}
}

func (m *Model) handleSendResultMsg(msg tea.Msg) tea.Cmd {
	result := msg.(sendResultMsg)
	if result.err != nil {
		m.transcript.ResolveError(result.id, result.err.Error())
	} else {
		answer := result.resp.Answer
		if answer == "" && len(result.resp.Citations) == 0 {
			answer = "I don't have an answer for that."
		}
		m.transcript.ResolveAnswer(result.id, answer, result.resp.Citations)
		if m.notifier != nil {
			m.notifier(m.doc.LauncherLabel, notifyPreview(answer))
		}
	}
	if m.sending == result.id {
		m.sending = ""
	}
	// Land the reader at the start of the new answer, even when it is
	// taller than the viewport.
	m.syncViewport(result.id, false)
	return nil
}

func (m *Model) handleAutoOpenMsg(msg tea.Msg) tea.Cmd {
	probe := msg.(autoOpenMsg)
	if m.open || m.diagnostic != "" {
		return nil
	}
	if load.Attempt(m, m.matchers, probe.attempt) {
		return nil
	}
	next := probe.attempt + 1
	if next >= len(load.AttemptDelays) {
		events.Load.AutoOpenGaveUp(len(load.AttemptDelays))
		return nil
	}
	return scheduleAutoOpen(next)
}

func scheduleAutoOpen(attempt int) tea.Cmd {
	delay := load.AttemptDelays[attempt]
	if delay <= 0 {
		return func() tea.Msg { return autoOpenMsg{attempt: attempt} }
	}
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return autoOpenMsg{attempt: attempt}
	})
}

func (m *Model) rebuildRenderer() {
	width := m.width - 2
	if width < 20 {
		width = 20
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		m.renderer = nil
		return
	}
	m.renderer = renderer
}

func (m *Model) viewportHeight() int {
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

func notifyPreview(answer string) string {
	answer = strings.TrimSpace(answer)
	if idx := strings.IndexByte(answer, '\n'); idx >= 0 {
		answer = answer[:idx]
	}
	const max = 120
	if len(answer) > max {
		answer = answer[:max] + "…"
	}
	return answer
}
