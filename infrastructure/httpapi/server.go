// Package httpapi exposes the lobby-facing HTTP surface: credentials,
// rooms, history and the assistant completion endpoint.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type Server struct {
	log       *slog.Logger
	access    AccessService
	rooms     RoomService
	history   HistoryService
	assistant AssistantService
}

func NewServer(log *slog.Logger, access AccessService, rooms RoomService,
	history HistoryService, assistant AssistantService) *Server {
	return &Server{
		log:       log,
		access:    access,
		rooms:     rooms,
		history:   history,
		assistant: assistant,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /token", s.handleToken)
	mux.HandleFunc("POST /rooms", s.handleCreateRoom)
	mux.HandleFunc("DELETE /rooms/{room}", s.handleDeleteRoom)
	mux.HandleFunc("GET /rooms", s.handleListRooms)
	mux.HandleFunc("GET /rooms/{room}/history", s.handleHistory)
	mux.HandleFunc("GET /rooms/{room}/participants", s.handleListParticipants)
	mux.HandleFunc("POST /chat", s.handleChat)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]any{"detail": detail})
}

func decodeJSON(r *http.Request, dst any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(dst)
}
