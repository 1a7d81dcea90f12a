package api

import (
	"net/http"
)

// handleSurveyReport returns the survey report projection.
func (s *Server) handleSurveyReport(w http.ResponseWriter, r *http.Request) {
	surveyID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	report, err := s.engine.AssembleReport(r.Context(), identityFrom(r), surveyID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", map[string]any{"report": report})
}

// handleSurveyReportPDF is a placeholder. Document rendering happens in the
// frontend today; this endpoint only confirms the survey is readable.
func (s *Server) handleSurveyReportPDF(w http.ResponseWriter, r *http.Request) {
	surveyID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := s.engine.AssembleReport(r.Context(), identityFrom(r), surveyID); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "PDF generation not implemented, use the report endpoint", map[string]any{
		"survey_id": surveyID,
	})
}
