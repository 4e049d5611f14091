package lobby

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newAPIStub(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewClient(ts.URL, 2*time.Second)
}

func Test_CreateToken(t *testing.T) {
	req := require.New(t)
	client := newAPIStub(t, func(w http.ResponseWriter, r *http.Request) {
		req.Equal(http.MethodPost, r.Method)
		req.Equal("/token", r.URL.Path)
		var body map[string]string
		req.NoError(json.NewDecoder(r.Body).Decode(&body))
		req.Equal("lounge", body["room_name"])
		req.Equal("Alice", body["participant_name"])
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "signed-token"})
	})

	token, err := client.CreateToken(context.Background(), "lounge", "Alice")
	req.NoError(err)
	req.Equal("signed-token", token)
}

func Test_CreateRoom_Tolerates_Conflict(t *testing.T) {
	req := require.New(t)
	client := newAPIStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Room already exists"})
	})

	req.NoError(client.CreateRoom(context.Background(), "lounge"))
}

func Test_CreateRoom_Surfaces_Other_Errors(t *testing.T) {
	req := require.New(t)
	client := newAPIStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		// A body mentioning 409 must not read as a conflict
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "ticket 409 reopened"})
	})

	err := client.CreateRoom(context.Background(), "lounge")
	req.Error(err)

	var status *StatusError
	req.ErrorAs(err, &status)
	req.Equal(http.StatusInternalServerError, status.Status)
}

func Test_ListRooms(t *testing.T) {
	req := require.New(t)
	client := newAPIStub(t, func(w http.ResponseWriter, r *http.Request) {
		req.Equal("/rooms", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"rooms": []Room{
			{ID: "r1", Name: "lounge", NumParticipants: 2},
		}})
	})

	rooms, err := client.ListRooms(context.Background())
	req.NoError(err)
	req.Len(rooms, 1)
	req.Equal("lounge", rooms[0].Name)
	req.Equal(2, rooms[0].NumParticipants)
}

func Test_History_Maps_To_Entries(t *testing.T) {
	req := require.New(t)
	id := uuid.New()
	at := time.Now().UTC().Truncate(time.Second)
	client := newAPIStub(t, func(w http.ResponseWriter, r *http.Request) {
		req.Equal("/rooms/lounge/history", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"messages": []historyMessage{
			{ID: id.String(), Sender: "Alice", Text: "hello", Timestamp: at},
			{ID: "not-a-uuid", Sender: "AI Assistant", Text: "hi", IsAI: true, Timestamp: at},
		}})
	})

	entries, err := client.History(context.Background(), "lounge")
	req.NoError(err)
	req.Len(entries, 2)
	req.Equal(id, entries[0].ID)
	req.Equal("Alice", entries[0].Sender)
	req.Equal("hello", entries[0].Text)
	req.Equal(at, entries[0].At)
	// Unparseable ids get a fresh one rather than failing the seed
	req.NotEqual(uuid.Nil, entries[1].ID)
	req.True(entries[1].IsAssistant)
}

func Test_Complete(t *testing.T) {
	req := require.New(t)
	client := newAPIStub(t, func(w http.ResponseWriter, r *http.Request) {
		req.Equal("/chat", r.URL.Path)
		var body map[string]string
		req.NoError(json.NewDecoder(r.Body).Decode(&body))
		req.Equal("Alice", body["user_id"])
		req.Equal("lounge", body["room_id"])
		req.Equal("what's the weather", body["message"])
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "sunny"})
	})

	reply, err := client.Complete(context.Background(), "Alice", "lounge", "what's the weather")
	req.NoError(err)
	req.Equal("sunny", reply)
}

func Test_Complete_Backend_Failure(t *testing.T) {
	req := require.New(t)
	client := newAPIStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Failed to generate response"})
	})

	_, err := client.Complete(context.Background(), "Alice", "lounge", "hi")
	req.Error(err)
}
