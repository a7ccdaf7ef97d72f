package load

import (
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/bubblechat/bubblechat/internal/logging/events"
)

// Document is the loaded widget content as seen by the auto-open
// probe: its accessibility labels, its visible text, and the open
// affordance itself.
type Document interface {
	AccessibleLabels() []string
	VisibleText() string
	TriggerOpen() bool
}

// Matcher is one strategy for locating the launcher affordance in a
// loaded document.
type Matcher interface {
	Name() string
	TryMatch(doc Document) bool
}

// AttemptDelays is the bounded auto-open schedule: immediate, then two
// increasingly patient retries before giving up silently.
var AttemptDelays = []time.Duration{0, 500 * time.Millisecond, 1200 * time.Millisecond}

// launcherPhrases are the labels the widget's open affordance is
// expected to carry in the wild.
var launcherPhrases = []string{
	"chat with us",
	"open chat",
	"ask a question",
	"need help?",
	"chat",
}

// DefaultMatchers returns the standard strategy list: the accessible
// label heuristic first, then the fuzzier visible-text heuristic.
func DefaultMatchers() []Matcher {
	return []Matcher{
		labelMatcher{phrases: launcherPhrases},
		textMatcher{phrases: launcherPhrases},
	}
}

// labelMatcher compares the document's accessibility labels against
// the expected launcher phrases, case-insensitively.
type labelMatcher struct {
	phrases []string
}

func (labelMatcher) Name() string { return "accessible-label" }

func (m labelMatcher) TryMatch(doc Document) bool {
	for _, label := range doc.AccessibleLabels() {
		label = strings.ToLower(strings.TrimSpace(label))
		if label == "" {
			continue
		}
		for _, phrase := range m.phrases {
			if label == phrase || strings.Contains(label, phrase) {
				return true
			}
		}
	}
	return false
}

// textMatcher scans the document's visible text for launcher phrases,
// tolerating styling noise via fuzzy matching.
type textMatcher struct {
	phrases []string
}

func (textMatcher) Name() string { return "visible-text" }

func (m textMatcher) TryMatch(doc Document) bool {
	text := strings.ToLower(doc.VisibleText())
	if strings.TrimSpace(text) == "" {
		return false
	}
	for _, phrase := range m.phrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	for _, line := range strings.Split(text, "\n") {
		for _, phrase := range m.phrases {
			if fuzzy.MatchNormalizedFold(phrase, line) {
				return true
			}
		}
	}
	return false
}

// Attempt runs the matcher list against the document once and triggers
// the open affordance on the first match. All probe failures are
// swallowed; the return value reports whether the widget was opened.
func Attempt(doc Document, matchers []Matcher, attempt int) (opened bool) {
	defer func() {
		// A misbehaving document must never take the widget down.
		if r := recover(); r != nil {
			opened = false
		}
	}()
	if doc == nil {
		return false
	}
	for _, matcher := range matchers {
		if !matcher.TryMatch(doc) {
			continue
		}
		events.Load.AutoOpen(matcher.Name(), attempt)
		return doc.TriggerOpen()
	}
	return false
}
