package lifecycle

import (
	"context"
	"time"

	"github.com/predial/vistoria/pkg/models"
)

// Report is the read-only projection of a survey with its related entities.
type Report struct {
	SurveyID      int64            `json:"survey_id"`
	SurveyDate    int64            `json:"survey_date"`
	Status        string           `json:"status"`
	Building      *models.Building `json:"building"`
	Client        *models.Client   `json:"client"`
	Engineer      *models.UserRef  `json:"engineer"`
	Issues        []models.Issue   `json:"issues"`
	EngineerNotes string           `json:"engineer_notes,omitempty"`
	FinalReport   string           `json:"final_report,omitempty"`
	GeneratedAt   string           `json:"generated_at"`
}

// AssembleReport builds the survey report projection, enforcing the same
// client-ownership read check as the survey views.
func (e *Engine) AssembleReport(ctx context.Context, caller Identity, surveyID int64) (*Report, error) {
	survey, err := e.getSurveyHydrated(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if err := e.canReadSurvey(ctx, caller, survey); err != nil {
		return nil, err
	}

	issues := survey.Issues
	if issues == nil {
		issues = []models.Issue{}
	}

	return &Report{
		SurveyID:      survey.ID,
		SurveyDate:    survey.SurveyDate,
		Status:        survey.Status,
		Building:      survey.Building,
		Client:        survey.Client,
		Engineer:      survey.Engineer,
		Issues:        issues,
		EngineerNotes: survey.EngineerNotes,
		FinalReport:   survey.FinalReport,
		GeneratedAt:   time.UnixMilli(e.nowFn()).UTC().Format(time.RFC3339),
	}, nil
}
