// Package brand loads the widget's brand/config document: colors,
// launcher label, welcome message, and the chat API shape. The widget
// must render even when the document cannot be fetched, so every
// failure path falls back to a hardcoded default.
package brand

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bubblechat/bubblechat/internal/endpoint"
)

// ConfigPath is the well-known location of the brand document relative
// to the backend base URL.
const ConfigPath = "/widget/config.json"

// Request styles for the chat endpoint.
const (
	RequestStyleHistory = "history"
	RequestStyleUserID  = "user_id"
)

// Document describes the widget's branding and API wiring.
type Document struct {
	Colors         Colors `json:"colors"`
	LogoURL        string `json:"logo_url"`
	LauncherLabel  string `json:"launcher_label"`
	WelcomeMessage string `json:"welcome_message"`
	API            API    `json:"api"`
}

type Colors struct {
	Primary string `json:"primary"`
	Accent  string `json:"accent"`
}

// API selects the chat endpoint path and request shape.
type API struct {
	Chat   string `json:"chat"`
	Style  string `json:"style,omitempty"`
	UserID string `json:"user_id,omitempty"`
}

// Default returns the built-in document used when the fetch fails.
func Default() Document {
	return Document{
		Colors:         Colors{Primary: "63", Accent: "212"},
		LauncherLabel:  "Chat with us",
		WelcomeMessage: "Hi! Ask me anything.",
		API:            API{Chat: "/chat", Style: RequestStyleHistory},
	}
}

// Fetch retrieves the brand document from the backend once, with a
// cache-busting query parameter. Any failure yields Default.
func Fetch(ctx context.Context, ep endpoint.Endpoint) Document {
	return fetch(ctx, ep, &http.Client{Timeout: 10 * time.Second}, time.Now)
}

func fetch(ctx context.Context, ep endpoint.Endpoint, client *http.Client, now func() time.Time) Document {
	url := fmt.Sprintf("%s?ts=%s", ep.ChatURL(ConfigPath), strconv.FormatInt(now().UnixMilli(), 10))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Default()
	}
	resp, err := client.Do(req)
	if err != nil {
		return Default()
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Default()
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Default()
	}

	doc := Default()
	if err := json.Unmarshal(body, &doc); err != nil {
		return Default()
	}
	doc.fillGaps()
	return doc
}

// fillGaps backfills required fields the fetched document omits so the
// rest of the widget never checks for blanks.
func (d *Document) fillGaps() {
	def := Default()
	if d.API.Chat == "" {
		d.API.Chat = def.API.Chat
	}
	if d.API.Style == "" {
		d.API.Style = def.API.Style
	}
	if d.LauncherLabel == "" {
		d.LauncherLabel = def.LauncherLabel
	}
	if d.WelcomeMessage == "" {
		d.WelcomeMessage = def.WelcomeMessage
	}
	if d.Colors.Primary == "" {
		d.Colors.Primary = def.Colors.Primary
	}
	if d.Colors.Accent == "" {
		d.Colors.Accent = def.Colors.Accent
	}
}
