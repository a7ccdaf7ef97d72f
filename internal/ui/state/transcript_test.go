package state

import (
	"strings"
	"testing"
)

func TestAppendUserIsOptimistic(t *testing.T) {
	tr := NewTranscript()
	id := tr.AppendUser("hello")
	if tr.Len() != 1 {
		t.Fatalf("expected one entry, got %d", tr.Len())
	}
	entry := tr.Entries()[0]
	if entry.ID != id || entry.UserText != "hello" || !entry.Pending {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if got := tr.PendingCount(); got != 1 {
		t.Fatalf("pending count = %d, want 1", got)
	}
}

func TestResolveAnswerLandsOnItsTurn(t *testing.T) {
	tr := NewTranscript()
	first := tr.AppendUser("one")
	second := tr.AppendUser("two")

	// Second response arrives first; both still land on their own turn.
	if !tr.ResolveAnswer(second, "answer two", nil) {
		t.Fatalf("resolve second failed")
	}
	if !tr.ResolveAnswer(first, "answer one", nil) {
		t.Fatalf("resolve first failed")
	}

	entries := tr.Entries()
	if entries[0].AnswerText != "answer one" || entries[1].AnswerText != "answer two" {
		t.Fatalf("answers attached to wrong turns: %q / %q", entries[0].AnswerText, entries[1].AnswerText)
	}
	if tr.PendingCount() != 0 {
		t.Fatalf("pending count should be zero")
	}
}

func TestResolveUnknownIDIsIgnored(t *testing.T) {
	tr := NewTranscript()
	tr.AppendUser("hello")
	if tr.ResolveAnswer("turn-99", "stray", nil) {
		t.Fatalf("resolving an unknown turn must not succeed")
	}
	if tr.Entries()[0].AnswerText != "" {
		t.Fatalf("stray answer mutated an existing turn")
	}
}

func TestResolveErrorKeepsTurnOutOfHistory(t *testing.T) {
	tr := NewTranscript()
	good := tr.AppendUser("good")
	bad := tr.AppendUser("bad")
	tr.ResolveAnswer(good, "fine", nil)
	tr.ResolveError(bad, "chat backend returned HTTP 500")

	history := tr.History()
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1", len(history))
	}
	if history[0].UserText != "good" || history[0].AnswerText != "fine" {
		t.Fatalf("unexpected history: %+v", history[0])
	}
	if !strings.Contains(tr.Entries()[1].ErrorText, "500") {
		t.Fatalf("error detail lost: %q", tr.Entries()[1].ErrorText)
	}
}

func TestHistorySkipsPendingTurns(t *testing.T) {
	tr := NewTranscript()
	done := tr.AppendUser("done")
	tr.AppendUser("in flight")
	tr.ResolveAnswer(done, "yes", nil)
	if got := len(tr.History()); got != 1 {
		t.Fatalf("history length = %d, want 1", got)
	}
}

func TestParseCitationsClassifiesAndCaps(t *testing.T) {
	raw := []string{
		"https://example.com/a",
		"not-a-url",
		"http://example.com/b",
		"ftp://example.com/c",
		"docs/guide.md",
		"https://example.com/overflow",
	}
	citations := ParseCitations(raw)
	if len(citations) != MaxCitations {
		t.Fatalf("got %d citations, want %d", len(citations), MaxCitations)
	}
	if citations[0].URL == "" {
		t.Fatalf("https citation should be a link")
	}
	if citations[1].URL != "" {
		t.Fatalf("bare label must not become a link: %+v", citations[1])
	}
	if citations[2].URL == "" {
		t.Fatalf("http citation should be a link")
	}
	if citations[3].URL != "" {
		t.Fatalf("non-http scheme must stay plain: %+v", citations[3])
	}
	for _, c := range citations {
		if c.Label == "https://example.com/overflow" {
			t.Fatalf("cap not applied")
		}
	}
}

func TestParseCitationsEmpty(t *testing.T) {
	if got := ParseCitations(nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
