package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"parlor/auth"
	perrors "parlor/errors"
	"parlor/repositories"
	"parlor/services"
)

var apiSecret = []byte("api-test-secret")

type stubAccess struct{}

func (stubAccess) CreateToken(room, identity string) (string, error) {
	return auth.GenerateRoomToken(apiSecret, room, identity, time.Hour)
}

type stubRooms struct {
	existing     map[string]bool
	summaries    []services.RoomSummary
	participants map[string][]string
	listErr      error
}

func (s *stubRooms) CreateRoom(name string) (repositories.RoomRecord, error) {
	if s.existing[name] {
		return repositories.RoomRecord{}, perrors.ErrRoomExists
	}
	return repositories.RoomRecord{ID: uuid.New(), Name: name, CreatedAt: time.Now().UTC()}, nil
}

func (s *stubRooms) DeleteRoom(name string) error {
	if !s.existing[name] {
		return perrors.ErrRoomNotFound
	}
	delete(s.existing, name)
	return nil
}

func (s *stubRooms) ListRooms(context.Context) ([]services.RoomSummary, error) {
	return s.summaries, s.listErr
}

func (s *stubRooms) ListParticipants(_ context.Context, room string) ([]string, error) {
	return s.participants[room], nil
}

type stubHistory struct {
	messages []repositories.DiskMessage
	err      error
}

func (s *stubHistory) History(string) ([]repositories.DiskMessage, error) {
	return s.messages, s.err
}

type stubAssistant struct {
	reply string
	err   error
}

func (s *stubAssistant) Reply(_ context.Context, _, _, _ string) (string, error) {
	return s.reply, s.err
}

func newTestServer(rooms *stubRooms, history *stubHistory, assistant *stubAssistant) *httptest.Server {
	if rooms == nil {
		rooms = &stubRooms{}
	}
	if history == nil {
		history = &stubHistory{}
	}
	if assistant == nil {
		assistant = &stubAssistant{}
	}
	server := NewServer(slog.Default(), stubAccess{}, rooms, history, assistant)
	return httptest.NewServer(server.Handler())
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func Test_Health(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(nil, nil, nil)
	defer ts.Close()

	resp, body := getJSON(t, ts.URL+"/health")
	req.Equal(http.StatusOK, resp.StatusCode)
	req.Equal(true, body["ok"])
}

func Test_Token_Is_Verifiable(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(nil, nil, nil)
	defer ts.Close()

	resp, body := postJSON(t, ts.URL+"/token",
		`{"room_name":"lounge","participant_name":"Alice"}`)
	req.Equal(http.StatusOK, resp.StatusCode)

	token, ok := body["token"].(string)
	req.True(ok)
	claims, err := auth.VerifyRoomToken(token, apiSecret)
	req.NoError(err)
	req.Equal("lounge", claims.Room)
	req.Equal("Alice", claims.Identity)
}

func Test_Token_Requires_Both_Fields(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(nil, nil, nil)
	defer ts.Close()

	resp, body := postJSON(t, ts.URL+"/token", `{"room_name":"lounge"}`)
	req.Equal(http.StatusBadRequest, resp.StatusCode)
	req.NotEmpty(body["detail"])
}

func Test_CreateRoom(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(nil, nil, nil)
	defer ts.Close()

	resp, body := postJSON(t, ts.URL+"/rooms", `{"room_name":"lounge"}`)
	req.Equal(http.StatusOK, resp.StatusCode)
	req.Equal(true, body["success"])
	room := body["room"].(map[string]any)
	req.Equal("lounge", room["name"])
	req.NotEmpty(room["id"])
}

func Test_CreateRoom_Conflict(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(&stubRooms{existing: map[string]bool{"lounge": true}}, nil, nil)
	defer ts.Close()

	resp, body := postJSON(t, ts.URL+"/rooms", `{"room_name":"lounge"}`)
	req.Equal(http.StatusConflict, resp.StatusCode)
	req.Equal("Room already exists", body["detail"])
}

func deleteRequest(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	httpReq, err := http.NewRequest(http.MethodDelete, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(httpReq)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func Test_DeleteRoom(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(&stubRooms{existing: map[string]bool{"lounge": true}}, nil, nil)
	defer ts.Close()

	resp, body := deleteRequest(t, ts.URL+"/rooms/lounge")
	req.Equal(http.StatusOK, resp.StatusCode)
	req.Equal(true, body["success"])
}

func Test_DeleteRoom_Unknown(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(nil, nil, nil)
	defer ts.Close()

	resp, body := deleteRequest(t, ts.URL+"/rooms/nowhere")
	req.Equal(http.StatusNotFound, resp.StatusCode)
	req.Equal("Room not found", body["detail"])
}

func Test_ListParticipants(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(&stubRooms{participants: map[string][]string{
		"lounge": {"Alice", "Bob"},
	}}, nil, nil)
	defer ts.Close()

	resp, body := getJSON(t, ts.URL+"/rooms/lounge/participants")
	req.Equal(http.StatusOK, resp.StatusCode)
	req.Equal([]any{"Alice", "Bob"}, body["participants"])
}

func Test_ListParticipants_Empty_Is_An_Array(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(nil, nil, nil)
	defer ts.Close()

	resp, body := getJSON(t, ts.URL+"/rooms/lounge/participants")
	req.Equal(http.StatusOK, resp.StatusCode)
	participants, ok := body["participants"].([]any)
	req.True(ok)
	req.Empty(participants)
}

func Test_ListRooms(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(&stubRooms{summaries: []services.RoomSummary{
		{ID: uuid.NewString(), Name: "lounge", NumParticipants: 2},
	}}, nil, nil)
	defer ts.Close()

	resp, body := getJSON(t, ts.URL+"/rooms")
	req.Equal(http.StatusOK, resp.StatusCode)
	rooms := body["rooms"].([]any)
	req.Len(rooms, 1)
	room := rooms[0].(map[string]any)
	req.Equal("lounge", room["name"])
	req.Equal(float64(2), room["num_participants"])
}

func Test_History_Shape(t *testing.T) {
	req := require.New(t)
	id := uuid.New()
	ts := newTestServer(nil, &stubHistory{messages: []repositories.DiskMessage{
		{ID: id, Room: "lounge", Sender: "Alice", Text: "hello", At: time.Now().UTC()},
		{ID: uuid.New(), Room: "lounge", Sender: "AI Assistant", Text: "hi", IsAssistant: true, At: time.Now().UTC()},
	}}, nil)
	defer ts.Close()

	resp, body := getJSON(t, ts.URL+"/rooms/lounge/history")
	req.Equal(http.StatusOK, resp.StatusCode)
	messages := body["messages"].([]any)
	req.Len(messages, 2)
	first := messages[0].(map[string]any)
	req.Equal(id.String(), first["id"])
	req.Equal("Alice", first["sender"])
	req.Equal("hello", first["text"])
	req.Equal(false, first["is_ai"])
	second := messages[1].(map[string]any)
	req.Equal(true, second["is_ai"])
}

func Test_History_Empty_Is_An_Array(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(nil, nil, nil)
	defer ts.Close()

	resp, body := getJSON(t, ts.URL+"/rooms/lounge/history")
	req.Equal(http.StatusOK, resp.StatusCode)
	messages, ok := body["messages"].([]any)
	req.True(ok)
	req.Empty(messages)
}

func Test_Chat(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(nil, nil, &stubAssistant{reply: "the forecast is sunny"})
	defer ts.Close()

	resp, body := postJSON(t, ts.URL+"/chat",
		`{"user_id":"Alice","message":"what's the weather","room_id":"lounge"}`)
	req.Equal(http.StatusOK, resp.StatusCode)
	req.Equal("the forecast is sunny", body["response"])
}

func Test_Chat_Backend_Failure(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(nil, nil, &stubAssistant{err: errors.New("model unavailable")})
	defer ts.Close()

	resp, body := postJSON(t, ts.URL+"/chat",
		`{"user_id":"Alice","message":"hi","room_id":"lounge"}`)
	req.Equal(http.StatusBadGateway, resp.StatusCode)
	req.Equal("Failed to generate response", body["detail"])
}

func Test_Chat_Missing_Fields(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(nil, nil, nil)
	defer ts.Close()

	resp, _ := postJSON(t, ts.URL+"/chat", `{"message":"hi"}`)
	req.Equal(http.StatusBadRequest, resp.StatusCode)
}
