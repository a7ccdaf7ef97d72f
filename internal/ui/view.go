package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/wordwrap"

	uistate "github.com/bubblechat/bubblechat/internal/ui/state"
)

// View renders the widget: the diagnostic page, the collapsed
// launcher, or the open chat panel.
func (m *Model) View() string {
	if m.diagnostic != "" {
		return m.viewDiagnostic()
	}
	if !m.open {
		return m.viewLauncher()
	}
	return m.viewChat()
}

func (m *Model) viewDiagnostic() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render(m.doc.LauncherLabel))
	b.WriteString("\n\n")
	for _, line := range strings.Split(m.diagnostic, "\n") {
		b.WriteString(m.styles.Error.Render(wordwrap.String(line, m.contentWidth())))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Hint.Render("ctrl+c to close"))
	return b.String()
}

func (m *Model) viewLauncher() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(m.styles.Launcher.Render("💬 " + m.doc.LauncherLabel))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Hint.Render("enter to open · ctrl+c to close"))
	return b.String()
}

func (m *Model) viewChat() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render(m.doc.LauncherLabel))
	b.WriteString("\n")
	b.WriteString(m.vp.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.styles.Hint.Render("enter to send · esc to collapse · ↑/↓ to scroll"))
	return b.String()
}

func (m *Model) statusLine() string {
	if m.sending != "" {
		return m.spin.View() + " " + m.styles.Hint.Render("thinking…")
	}
	return ""
}

// syncViewport rebuilds the transcript content and applies the scroll
// rule: a user send pins the view to the bottom, a resolved answer
// pins its first line to the top of the viewport.
func (m *Model) syncViewport(answerID string, toBottom bool) {
	lines, anchors := m.buildTranscript()
	m.anchors = anchors
	m.vp.Width = m.width
	m.vp.Height = m.viewportHeight()
	m.vp.SetContent(strings.Join(lines, "\n"))
	if toBottom {
		m.vp.GotoBottom()
		return
	}
	if answerID != "" {
		if offset, ok := anchors[answerID]; ok {
			m.vp.SetYOffset(offset)
		}
	}
}

// buildTranscript renders every exchange to lines and records the line
// each answer starts on.
func (m *Model) buildTranscript() ([]string, map[string]int) {
	width := m.contentWidth()
	lines := []string{}
	anchors := map[string]int{}

	if m.doc.WelcomeMessage != "" {
		for _, line := range splitWrapped(m.doc.WelcomeMessage, width) {
			lines = append(lines, m.styles.Welcome.Render(line))
		}
		lines = append(lines, "")
	}

	for _, entry := range m.transcript.Entries() {
		lines = append(lines, m.styles.UserLabel.Render("You"))
		for _, line := range splitWrapped(entry.UserText, width) {
			lines = append(lines, m.styles.User.Render(line))
		}

		anchors[entry.ID] = len(lines)
		switch {
		case entry.Pending:
			lines = append(lines, m.spin.View()+" "+m.styles.Hint.Render("…"))
		case entry.ErrorText != "":
			lines = append(lines, m.styles.BotLabel.Render("Assistant"))
			apology := "Sorry, something went wrong: " + entry.ErrorText
			for _, line := range splitWrapped(apology, width) {
				lines = append(lines, m.styles.Error.Render(line))
			}
		default:
			lines = append(lines, m.styles.BotLabel.Render("Assistant"))
			lines = append(lines, m.renderAnswer(entry.AnswerText, width)...)
			lines = append(lines, m.renderCitations(entry.Citations)...)
		}
		lines = append(lines, "")
	}

	return lines, anchors
}

// renderAnswer renders markdown when the renderer is available and
// falls back to wrapped plain text.
func (m *Model) renderAnswer(answer string, width int) []string {
	if m.renderer != nil {
		if out, err := m.renderer.Render(answer); err == nil {
			out = strings.Trim(out, "\n")
			if out != "" {
				return strings.Split(out, "\n")
			}
		}
	}
	styled := make([]string, 0, 4)
	for _, line := range splitWrapped(answer, width) {
		styled = append(styled, m.styles.Bot.Render(line))
	}
	return styled
}

func (m *Model) renderCitations(citations []uistate.Citation) []string {
	lines := make([]string, 0, len(citations))
	for i, c := range citations {
		label := m.styles.Citation.Render(c.Label)
		if c.URL != "" {
			label = hyperlink(c.URL, m.styles.Citation.Render(c.Label))
		}
		lines = append(lines, fmt.Sprintf("  [%d] %s", i+1, label))
	}
	return lines
}

func (m *Model) contentWidth() int {
	w := m.width - 2
	if w < 20 {
		w = 20
	}
	return w
}

// AccessibleLabels exposes the launcher affordance to the auto-open
// probe.
func (m *Model) AccessibleLabels() []string {
	if m.open {
		return nil
	}
	return []string{"Open chat: " + m.doc.LauncherLabel}
}

// VisibleText returns the rendered view with styling stripped.
func (m *Model) VisibleText() string {
	return ansi.Strip(m.View())
}

// TriggerOpen expands the panel. It reports false when already open.
func (m *Model) TriggerOpen() bool {
	if m.open {
		return false
	}
	m.open = true
	m.syncViewport("", false)
	return true
}

// hyperlink wraps label in an OSC 8 sequence pointing at url.
func hyperlink(url, label string) string {
	return "\x1b]8;;" + url + "\x07" + label + "\x1b]8;;\x07"
}

func splitWrapped(text string, width int) []string {
	return strings.Split(wordwrap.String(text, width), "\n")
}
