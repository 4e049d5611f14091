package httpapi

import (
	stderrors "errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"parlor/errors"
	"parlor/repositories"
	"parlor/services"
)

var validate = validator.New()

type tokenRequest struct {
	RoomName        string `json:"room_name" validate:"required,min=1,max=64"`
	ParticipantName string `json:"participant_name" validate:"required,min=1,max=64"`
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	token, err := s.access.CreateToken(req.RoomName, req.ParticipantName)
	if err != nil {
		s.log.Error("token generation failed", "room", req.RoomName, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token})
}

type roomRequest struct {
	RoomName string `json:"room_name" validate:"required,min=1,max=64"`
}

type roomResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	NumParticipants int    `json:"num_participants"`
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req roomRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	record, err := s.rooms.CreateRoom(req.RoomName)
	if stderrors.Is(err, errors.ErrRoomExists) {
		writeError(w, http.StatusConflict, "Room already exists")
		return
	}
	if err != nil {
		s.log.Error("room creation failed", "room", req.RoomName, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create room")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "room": roomResponse{
		ID:   record.ID.String(),
		Name: record.Name,
	}})
}

func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	room := r.PathValue("room")
	err := s.rooms.DeleteRoom(room)
	if stderrors.Is(err, errors.ErrRoomNotFound) {
		writeError(w, http.StatusNotFound, "Room not found")
		return
	}
	if err != nil {
		s.log.Error("room deletion failed", "room", room, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete room")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleListParticipants(w http.ResponseWriter, r *http.Request) {
	room := r.PathValue("room")
	participants, err := s.rooms.ListParticipants(r.Context(), room)
	if err != nil {
		s.log.Error("participant listing failed", "room", room, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list participants")
		return
	}
	if participants == nil {
		participants = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"participants": participants})
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.rooms.ListRooms(r.Context())
	if err != nil {
		s.log.Error("room listing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list rooms")
		return
	}
	rooms := lo.Map(summaries, func(item services.RoomSummary, _ int) roomResponse {
		return roomResponse{ID: item.ID, Name: item.Name, NumParticipants: item.NumParticipants}
	})
	writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}

type historyMessage struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	IsAI      bool      `json:"is_ai"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	room := r.PathValue("room")
	messages, err := s.history.History(room)
	if err != nil {
		s.log.Error("history fetch failed", "room", room, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load history")
		return
	}
	out := lo.Map(messages, func(item repositories.DiskMessage, _ int) historyMessage {
		return historyMessage{
			ID:        item.ID.String(),
			Sender:    item.Sender,
			Text:      item.Text,
			IsAI:      item.IsAssistant,
			Timestamp: item.At,
		}
	})
	if out == nil {
		out = []historyMessage{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": out})
}

type chatRequest struct {
	UserID  string `json:"user_id" validate:"required"`
	Message string `json:"message" validate:"required"`
	RoomID  string `json:"room_id" validate:"required"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	reply, err := s.assistant.Reply(r.Context(), req.UserID, req.RoomID, req.Message)
	if err != nil {
		s.log.Warn("completion failed", "room", req.RoomID, "user", req.UserID, "error", err)
		writeError(w, http.StatusBadGateway, "Failed to generate response")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"response": reply})
}
