package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"pairchat/internal/domain"
	"pairchat/internal/transport/httpapi"
	"pairchat/internal/transport/mailbox"
)

// HTTP talks to a pairchat server as one user.
type HTTP struct {
	Base string
	HTTP *http.Client
}

// NewHTTP returns a client for the server at base. A nil httpClient means
// http.DefaultClient.
func NewHTTP(base string, httpClient *http.Client) *HTTP {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTP{Base: base, HTTP: httpClient}
}

// Start asks the server to send the welcome notice.
func (c *HTTP) Start(ctx context.Context, id domain.Identity) (string, error) {
	return c.event(ctx, id, "start", nil)
}

// Join enters the queue and returns the outcome, e.g. "queued" or "paired".
func (c *HTTP) Join(ctx context.Context, id domain.Identity) (string, error) {
	return c.event(ctx, id, "join", nil)
}

// Leave ends the current session or leaves the queue.
func (c *HTTP) Leave(ctx context.Context, id domain.Identity) (string, error) {
	return c.event(ctx, id, "leave", nil)
}

// Say relays body to id's partner. The outcome is "dropped" without a session.
func (c *HTTP) Say(ctx context.Context, id domain.Identity, body string) (string, error) {
	return c.event(ctx, id, "messages", httpapi.SendMessageRequest{Body: body})
}

// Fetch returns up to limit queued messages for id; zero means all.
func (c *HTTP) Fetch(ctx context.Context, id domain.Identity, limit int) ([]mailbox.Message, error) {
	path := userPath(id, "inbox")
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out httpapi.InboxResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// Ack drops the first count queued messages for id.
func (c *HTTP) Ack(ctx context.Context, id domain.Identity, count int) (int, error) {
	var out httpapi.AckResponse
	err := c.do(ctx, http.MethodPost, userPath(id, "inbox/ack"), httpapi.AckRequest{Count: count}, &out)
	return out.Acked, err
}

// Stats returns the server's queue and pair counts.
func (c *HTTP) Stats(ctx context.Context) (domain.Stats, error) {
	var out domain.Stats
	err := c.do(ctx, http.MethodGet, "/v1/stats", nil, &out)
	return out, err
}

func (c *HTTP) event(ctx context.Context, id domain.Identity, action string, in any) (string, error) {
	var out httpapi.EventResponse
	if err := c.do(ctx, http.MethodPost, userPath(id, action), in, &out); err != nil {
		return "", err
	}
	return out.Outcome, nil
}

func (c *HTTP) do(ctx context.Context, method, path string, in, out any) error {
	var body bytes.Buffer
	if in != nil {
		if err := json.NewEncoder(&body).Encode(in); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.Base+path, &body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, apiErr.Error)
		}
		return fmt.Errorf("%s %s: %s", method, path, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func userPath(id domain.Identity, action string) string {
	return "/v1/users/" + url.PathEscape(id.String()) + "/" + action
}
