package api

import (
	"encoding/json"
	"net/http"

	"github.com/predial/vistoria/internal/lifecycle"
	"github.com/predial/vistoria/internal/metrics"
	"github.com/predial/vistoria/internal/validate"
	"github.com/predial/vistoria/pkg/apperr"
)

func (s *Server) handleCreateIssue(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.validator.Check(r.Context(), validate.IssueCreate, body); err != nil {
		writeError(w, err)
		return
	}

	var in lifecycle.CreateIssueInput
	if err := json.Unmarshal(body, &in); err != nil {
		writeError(w, apperr.Wrap(apperr.Validation, err, "invalid request body"))
		return
	}

	issue, err := s.engine.CreateIssue(r.Context(), identityFrom(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	metrics.ObserveIssueRecorded(issue.Severity)

	writeSuccess(w, http.StatusCreated, "issue created", map[string]any{"issue": issue})
}

func (s *Server) handleUpdateIssue(w http.ResponseWriter, r *http.Request) {
	issueID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var in lifecycle.UpdateIssueInput
	if err := json.Unmarshal(body, &in); err != nil {
		writeError(w, apperr.Wrap(apperr.Validation, err, "invalid request body"))
		return
	}

	issue, err := s.engine.UpdateIssue(r.Context(), identityFrom(r), issueID, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "issue updated", map[string]any{"issue": issue})
}

func (s *Server) handleDeleteIssue(w http.ResponseWriter, r *http.Request) {
	issueID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.engine.DeleteIssue(r.Context(), identityFrom(r), issueID); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "issue deleted", nil)
}

func (s *Server) handleListSurveyIssues(w http.ResponseWriter, r *http.Request) {
	surveyID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	issues, err := s.engine.IssuesBySurvey(r.Context(), identityFrom(r), surveyID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", map[string]any{
		"issues": issues,
		"count":  len(issues),
	})
}
