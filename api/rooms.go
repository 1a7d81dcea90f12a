package api

import (
	"encoding/json"
	"net/http"

	"github.com/predial/vistoria/internal/lifecycle"
	"github.com/predial/vistoria/internal/validate"
	"github.com/predial/vistoria/pkg/apperr"
)

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.validator.Check(r.Context(), validate.RoomCreate, body); err != nil {
		writeError(w, err)
		return
	}

	var in lifecycle.CreateRoomInput
	if err := json.Unmarshal(body, &in); err != nil {
		writeError(w, apperr.Wrap(apperr.Validation, err, "invalid request body"))
		return
	}

	room, err := s.engine.CreateRoom(r.Context(), identityFrom(r), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "room created", map[string]any{"room": room})
}

func (s *Server) handleUpdateRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var in lifecycle.UpdateRoomInput
	if err := json.Unmarshal(body, &in); err != nil {
		writeError(w, apperr.Wrap(apperr.Validation, err, "invalid request body"))
		return
	}

	room, err := s.engine.UpdateRoom(r.Context(), identityFrom(r), roomID, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "room updated", map[string]any{"room": room})
}

type roomStatusRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes,omitempty"`
}

// handleUpdateRoomStatus sets the inspection status, optionally with notes.
func (s *Server) handleUpdateRoomStatus(w http.ResponseWriter, r *http.Request) {
	roomID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req roomStatusRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, apperr.Wrap(apperr.Validation, err, "invalid request body"))
		return
	}
	if req.Status == "" {
		writeError(w, apperr.MissingFields("status"))
		return
	}

	room, err := s.engine.UpdateRoom(r.Context(), identityFrom(r), roomID, lifecycle.UpdateRoomInput{
		Status: &req.Status,
		Notes:  req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "room status updated", map[string]any{"room": room})
}

// handleFixAllIssues marks every issue of the room fixed and the room
// inspected_ok in one batch.
func (s *Server) handleFixAllIssues(w http.ResponseWriter, r *http.Request) {
	roomID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	room, err := s.engine.FixAllIssues(r.Context(), identityFrom(r), roomID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "all issues marked as fixed", map[string]any{"room": room})
}

func (s *Server) handleListSurveyRooms(w http.ResponseWriter, r *http.Request) {
	surveyID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	rooms, err := s.engine.RoomsBySurvey(r.Context(), identityFrom(r), surveyID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", map[string]any{
		"rooms": rooms,
		"count": len(rooms),
	})
}

func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.engine.DeleteRoom(r.Context(), identityFrom(r), roomID); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "room deleted", nil)
}
