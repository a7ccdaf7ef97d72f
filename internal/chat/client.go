// Package chat sends user messages to the backend chat endpoint and
// normalizes its responses and failures.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/bubblechat/bubblechat/internal/brand"
	"github.com/bubblechat/bubblechat/internal/endpoint"
	"github.com/bubblechat/bubblechat/internal/logging/events"
)

// Turn is one completed exchange: what the user said and what the
// backend answered.
type Turn struct {
	UserText   string
	AnswerText string
}

// Response is the normalized backend answer. Empty means the input was
// rejected locally and no request was made.
type Response struct {
	Answer    string
	Citations []string
}

// Empty reports whether the response carries no content.
func (r Response) Empty() bool {
	return r.Answer == "" && len(r.Citations) == 0
}

// TransportError describes a failed round-trip. Status is zero for
// network-level failures.
type TransportError struct {
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		body := strings.TrimSpace(e.Body)
		if body == "" {
			return fmt.Sprintf("chat backend returned HTTP %d", e.Status)
		}
		return fmt.Sprintf("chat backend returned HTTP %d: %s", e.Status, body)
	}
	return fmt.Sprintf("chat request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client performs chat round-trips against a resolved endpoint. A
// circuit breaker keeps a dead backend from hanging every send.
type Client struct {
	endpoint endpoint.Endpoint
	api      brand.API
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker
}

// NewClient builds a chat client for the endpoint using the request
// shape described by the brand document.
func NewClient(ep endpoint.Endpoint, api brand.API) *Client {
	return &Client{
		endpoint: ep,
		api:      api,
		http:     &http.Client{Timeout: 60 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "chat",
			Timeout: 15 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				events.Chat.BreakerOpen(to.String())
			},
			IsSuccessful: func(err error) bool {
				if err == nil {
					return true
				}
				// A refused message is the backend working, not failing.
				var te *TransportError
				if errors.As(err, &te) && te.Status != 0 {
					return true
				}
				return errors.Is(err, context.Canceled)
			},
		}),
	}
}

// Send posts the trimmed message plus history and returns the
// normalized answer. A whitespace-only message short-circuits to an
// empty response with no network call.
func (c *Client) Send(ctx context.Context, message string, history []Turn) (Response, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Response{}, nil
	}

	requestID := uuid.NewString()
	events.Chat.Send(requestID, len(message))

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.roundTrip(ctx, message, history)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = &TransportError{Err: fmt.Errorf("backend unreachable, not retrying yet: %w", err)}
		}
		events.Chat.Error(requestID, err)
		return Response{}, err
	}

	resp := result.(Response)
	events.Chat.Receive(requestID, len(resp.Citations))
	return resp, nil
}

func (c *Client) roundTrip(ctx context.Context, message string, history []Turn) (Response, error) {
	body, err := json.Marshal(c.requestBody(message, history))
	if err != nil {
		return Response{}, &TransportError{Err: err}
	}

	url := c.endpoint.ChatURL(c.api.Chat)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Response{}, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(req)
	if err != nil {
		return Response{}, &TransportError{Err: err}
	}
	defer httpResp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return Response{}, &TransportError{Err: err}
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return Response{}, &TransportError{Status: httpResp.StatusCode, Body: string(payload)}
	}

	return parseResponse(payload), nil
}

// requestBody builds the wire shape. Most deployments accept
// {message, history}; some accept {user_id, message} instead, selected
// through the brand document.
func (c *Client) requestBody(message string, history []Turn) interface{} {
	if c.api.Style == brand.RequestStyleUserID {
		return map[string]string{
			"user_id": c.api.UserID,
			"message": message,
		}
	}
	pairs := make([][2]string, 0, len(history))
	for _, turn := range history {
		pairs = append(pairs, [2]string{turn.UserText, turn.AnswerText})
	}
	return struct {
		Message string      `json:"message"`
		History [][2]string `json:"history"`
	}{Message: message, History: pairs}
}

// answerFields are tried in order; schema drift in the backend should
// never leave the bubble blank.
var answerFields = []string{"answer", "text", "output"}

func parseResponse(payload []byte) Response {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(payload, &doc); err != nil {
		return Response{Answer: strings.TrimSpace(string(payload))}
	}

	resp := Response{Citations: parseCitations(doc["citations"])}
	for _, field := range answerFields {
		raw, ok := doc[field]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			resp.Answer = s
			return resp
		}
	}
	resp.Answer = stringify(doc)
	return resp
}

func parseCitations(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var citations []string
	if err := json.Unmarshal(raw, &citations); err != nil {
		return nil
	}
	return citations
}

func stringify(doc map[string]json.RawMessage) string {
	out, err := json.Marshal(doc)
	if err != nil {
		return ""
	}
	return string(out)
}
