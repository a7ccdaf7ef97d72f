// Package state holds the widget's conversation transcript, separate
// from the Bubble Tea model so ordering and citation rules can be
// tested without a terminal.
package state

import (
	"net/url"
	"strconv"
	"time"

	"github.com/bubblechat/bubblechat/internal/chat"
)

// MaxCitations bounds how many citations a single answer renders.
const MaxCitations = 5

// Citation is one source reference attached to an answer. URL is empty
// when the raw value does not parse as an absolute http(s) URL, in
// which case the label renders as plain text.
type Citation struct {
	Label string
	URL   string
}

// Entry is one exchange in the transcript. A pending entry has the
// user text but no answer yet.
type Entry struct {
	ID         string
	UserText   string
	AnswerText string
	Citations  []Citation
	ErrorText  string
	Pending    bool
	At         time.Time
}

// Transcript is an append-only list of exchanges. Entries resolve in
// place when their response arrives, so late answers land on the turn
// that asked for them regardless of what the user did in between.
type Transcript struct {
	entries []*Entry
	seq     int
	now     func() time.Time
}

func NewTranscript() *Transcript {
	return &Transcript{now: time.Now}
}

// AppendUser records a new pending exchange and returns its ID.
func (t *Transcript) AppendUser(text string) string {
	t.seq++
	id := "turn-" + strconv.Itoa(t.seq)
	t.entries = append(t.entries, &Entry{
		ID:       id,
		UserText: text,
		Pending:  true,
		At:       t.now(),
	})
	return id
}

// ResolveAnswer attaches the answer to the entry with the given ID.
// Unknown IDs are ignored.
func (t *Transcript) ResolveAnswer(id, answer string, citations []string) bool {
	entry := t.find(id)
	if entry == nil {
		return false
	}
	entry.AnswerText = answer
	entry.Citations = ParseCitations(citations)
	entry.ErrorText = ""
	entry.Pending = false
	return true
}

// ResolveError marks the entry as failed with the given detail.
func (t *Transcript) ResolveError(id, detail string) bool {
	entry := t.find(id)
	if entry == nil {
		return false
	}
	entry.ErrorText = detail
	entry.Pending = false
	return true
}

// Entries returns the exchanges in append order.
func (t *Transcript) Entries() []*Entry {
	return t.entries
}

func (t *Transcript) Len() int {
	return len(t.entries)
}

// PendingCount reports how many exchanges still await a response.
func (t *Transcript) PendingCount() int {
	n := 0
	for _, e := range t.entries {
		if e.Pending {
			n++
		}
	}
	return n
}

// History returns the completed exchanges as chat turns, oldest first,
// for inclusion in the next request. Failed and pending entries are
// skipped.
func (t *Transcript) History() []chat.Turn {
	turns := make([]chat.Turn, 0, len(t.entries))
	for _, e := range t.entries {
		if e.Pending || e.ErrorText != "" {
			continue
		}
		turns = append(turns, chat.Turn{UserText: e.UserText, AnswerText: e.AnswerText})
	}
	return turns
}

func (t *Transcript) find(id string) *Entry {
	for _, e := range t.entries {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// ParseCitations classifies and caps raw citation strings. Values that
// parse as absolute http(s) URLs become links; everything else keeps
// its label only.
func ParseCitations(raw []string) []Citation {
	if len(raw) == 0 {
		return nil
	}
	if len(raw) > MaxCitations {
		raw = raw[:MaxCitations]
	}
	citations := make([]Citation, 0, len(raw))
	for _, value := range raw {
		c := Citation{Label: value}
		if u, err := url.Parse(value); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
			c.URL = value
		}
		citations = append(citations, c)
	}
	return citations
}
