package api

import (
	"encoding/json"
	"net/http"

	"github.com/predial/vistoria/internal/lifecycle"
	"github.com/predial/vistoria/internal/metrics"
	"github.com/predial/vistoria/internal/validate"
	"github.com/predial/vistoria/pkg/apperr"
	"github.com/predial/vistoria/pkg/models"
)

func (s *Server) handleCreateSurvey(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.validator.Check(r.Context(), validate.SurveyCreate, body); err != nil {
		writeError(w, err)
		return
	}

	var in lifecycle.CreateSurveyInput
	if err := json.Unmarshal(body, &in); err != nil {
		writeError(w, apperr.Wrap(apperr.Validation, err, "invalid request body"))
		return
	}

	survey, err := s.engine.CreateSurvey(r.Context(), identityFrom(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	metrics.ObserveSurveyTransition(models.SurveyScheduled)

	writeSuccess(w, http.StatusCreated, "survey created", map[string]any{"survey": survey})
}

// handleListSurveys returns the surveys created by the calling engineer.
func (s *Server) handleListSurveys(w http.ResponseWriter, r *http.Request) {
	surveys, err := s.engine.SurveysForEngineer(r.Context(), identityFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", map[string]any{
		"surveys": surveys,
		"count":   len(surveys),
	})
}

// handleListClientSurveys returns the surveys linked to the caller's client
// profile.
func (s *Server) handleListClientSurveys(w http.ResponseWriter, r *http.Request) {
	surveys, err := s.engine.SurveysForClient(r.Context(), identityFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", map[string]any{
		"surveys": surveys,
		"count":   len(surveys),
	})
}

func (s *Server) handleListAllSurveys(w http.ResponseWriter, r *http.Request) {
	surveys, err := s.engine.AllSurveys(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", map[string]any{
		"surveys": surveys,
		"count":   len(surveys),
	})
}

func (s *Server) handleGetSurvey(w http.ResponseWriter, r *http.Request) {
	surveyID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	survey, err := s.engine.GetSurvey(r.Context(), identityFrom(r), surveyID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", map[string]any{"survey": survey})
}

func (s *Server) handleUpdateSurvey(w http.ResponseWriter, r *http.Request) {
	surveyID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var in lifecycle.UpdateSurveyInput
	if err := json.Unmarshal(body, &in); err != nil {
		writeError(w, apperr.Wrap(apperr.Validation, err, "invalid request body"))
		return
	}

	survey, err := s.engine.UpdateStatus(r.Context(), identityFrom(r), surveyID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	if in.Status != nil {
		metrics.ObserveSurveyTransition(survey.Status)
	}

	writeSuccess(w, http.StatusOK, "survey updated", map[string]any{"survey": survey})
}

// handleStartLiveSurvey transitions scheduled -> in_progress and stamps the
// survey date.
func (s *Server) handleStartLiveSurvey(w http.ResponseWriter, r *http.Request) {
	surveyID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	survey, err := s.engine.StartLive(r.Context(), identityFrom(r), surveyID)
	if err != nil {
		writeError(w, err)
		return
	}
	metrics.ObserveSurveyTransition(survey.Status)

	writeSuccess(w, http.StatusOK, "live survey started", map[string]any{"survey": survey})
}

// handleCompleteSurvey transitions in_progress -> completed once every room
// has been inspected, generating the final report summary.
func (s *Server) handleCompleteSurvey(w http.ResponseWriter, r *http.Request) {
	surveyID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	survey, err := s.engine.Complete(r.Context(), identityFrom(r), surveyID)
	if err != nil {
		writeError(w, err)
		return
	}
	metrics.ObserveSurveyTransition(survey.Status)

	writeSuccess(w, http.StatusOK, "survey completed", map[string]any{"survey": survey})
}

type addRoomsRequest struct {
	Rooms []lifecycle.CreateRoomInput `json:"rooms"`
}

// handleAddSurveyRooms bulk-adds pending rooms under a survey.
func (s *Server) handleAddSurveyRooms(w http.ResponseWriter, r *http.Request) {
	surveyID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req addRoomsRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, apperr.Wrap(apperr.Validation, err, "invalid request body"))
		return
	}

	rooms, err := s.engine.AddRooms(r.Context(), identityFrom(r), surveyID, req.Rooms)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "rooms added", map[string]any{
		"rooms": rooms,
		"count": len(rooms),
	})
}

func (s *Server) handleDeleteSurvey(w http.ResponseWriter, r *http.Request) {
	surveyID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.engine.DeleteSurvey(r.Context(), identityFrom(r), surveyID); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "survey deleted", nil)
}
