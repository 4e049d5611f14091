// Package lobby is the client side of the HTTP API: credentials, room
// discovery, history and the assistant completion call.
package lobby

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
	"github.com/samber/lo"

	"parlor/domain"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type Room struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	NumParticipants int    `json:"num_participants"`
}

// CreateToken obtains a room access token for an identity.
func (c *Client) CreateToken(ctx context.Context, room, identity string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	err := c.post(ctx, "/token", map[string]string{
		"room_name":        room,
		"participant_name": identity,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Token, nil
}

// CreateRoom registers a room. Conflicts are not an error to a lobby:
// the room simply already exists.
func (c *Client) CreateRoom(ctx context.Context, name string) error {
	err := c.post(ctx, "/rooms", map[string]string{"room_name": name}, nil)
	var status *StatusError
	if errors.As(err, &status) && status.Status == http.StatusConflict {
		return nil
	}
	return err
}

func (c *Client) ListRooms(ctx context.Context) ([]Room, error) {
	var out struct {
		Rooms []Room `json:"rooms"`
	}
	if err := c.get(ctx, "/rooms", &out); err != nil {
		return nil, err
	}
	return out.Rooms, nil
}

type historyMessage struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	IsAI      bool      `json:"is_ai"`
	Timestamp time.Time `json:"timestamp"`
}

// History fetches a room's persisted messages, oldest first, as timeline
// entries. Callers treat any failure as an empty history.
func (c *Client) History(ctx context.Context, room string) ([]domain.Entry, error) {
	var out struct {
		Messages []historyMessage `json:"messages"`
	}
	if err := c.get(ctx, "/rooms/"+room+"/history", &out); err != nil {
		return nil, err
	}
	return lo.Map(out.Messages, func(item historyMessage, _ int) domain.Entry {
		id, err := uuid.Parse(item.ID)
		if err != nil {
			id = uuid.New()
		}
		return domain.Entry{
			ID:          id,
			Sender:      item.Sender,
			Text:        item.Text,
			IsAssistant: item.IsAI,
			At:          item.Timestamp,
		}
	}), nil
}

// Complete satisfies assist.Completer against POST /chat.
func (c *Client) Complete(ctx context.Context, userID, roomID, prompt string) (string, error) {
	var out struct {
		Response string `json:"response"`
	}
	err := c.post(ctx, "/chat", map[string]string{
		"user_id": userID,
		"message": prompt,
		"room_id": roomID,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Response, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// StatusError is a non-2xx API response, carrying the status code so
// callers match on it instead of sniffing formatted error text.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{
			Method: req.Method,
			Path:   req.URL.Path,
			Status: resp.StatusCode,
			Body:   string(body),
		}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
