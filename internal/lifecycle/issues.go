package lifecycle

import (
	"context"
	"strings"

	"github.com/predial/vistoria/pkg/apperr"
	"github.com/predial/vistoria/pkg/models"
)

type CreateIssueInput struct {
	RoomID            int64   `json:"room_id"`
	Area              string  `json:"area"`
	Description       string  `json:"description"`
	Severity          string  `json:"severity,omitempty"`
	Photo             string  `json:"photo,omitempty"`
	RecommendedAction string  `json:"recommended_action,omitempty"`
	EstimatedCost     float64 `json:"estimated_cost,omitempty"`
}

// CreateIssue records a defect against a room. The parent room flips to
// has_issues as a side effect of the same store transaction.
func (e *Engine) CreateIssue(ctx context.Context, caller Identity, in CreateIssueInput) (*models.Issue, error) {
	var missing []string
	if in.RoomID <= 0 {
		missing = append(missing, "room_id")
	}
	if strings.TrimSpace(in.Area) == "" {
		missing = append(missing, "area")
	}
	if strings.TrimSpace(in.Description) == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return nil, apperr.MissingFields(missing...)
	}

	room, err := e.mutableRoom(ctx, caller, in.RoomID)
	if err != nil {
		return nil, err
	}

	severity := in.Severity
	if severity == "" {
		severity = models.SeverityMedium
	}
	if !models.ValidSeverity(severity) {
		return nil, apperr.New(apperr.Validation, "invalid severity %q", severity)
	}
	if in.EstimatedCost < 0 {
		return nil, apperr.New(apperr.Validation, "estimated_cost must not be negative")
	}

	issue := &models.Issue{
		RoomID:            room.ID,
		SurveyID:          room.SurveyID,
		Area:              strings.TrimSpace(in.Area),
		Description:       in.Description,
		Severity:          severity,
		Status:            models.IssuePending,
		Photo:             in.Photo,
		RecommendedAction: in.RecommendedAction,
		EstimatedCost:     in.EstimatedCost,
	}
	id, err := e.issues.CreateIssue(ctx, issue)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "create issue")
	}

	created, err := e.issues.GetIssueByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "reload issue")
	}
	return created, nil
}

type UpdateIssueInput struct {
	Area              *string  `json:"area,omitempty"`
	Description       *string  `json:"description,omitempty"`
	Severity          *string  `json:"severity,omitempty"`
	Status            *string  `json:"status,omitempty"`
	Photo             *string  `json:"photo,omitempty"`
	RecommendedAction *string  `json:"recommended_action,omitempty"`
	EstimatedCost     *float64 `json:"estimated_cost,omitempty"`
}

// UpdateIssue applies a partial update: new value if provided, else keep the
// old value.
func (e *Engine) UpdateIssue(ctx context.Context, caller Identity, issueID int64, in UpdateIssueInput) (*models.Issue, error) {
	issue, err := e.mutableIssue(ctx, caller, issueID)
	if err != nil {
		return nil, err
	}

	if in.Area != nil {
		if strings.TrimSpace(*in.Area) == "" {
			return nil, apperr.MissingFields("area")
		}
		issue.Area = strings.TrimSpace(*in.Area)
	}
	if in.Description != nil {
		if strings.TrimSpace(*in.Description) == "" {
			return nil, apperr.MissingFields("description")
		}
		issue.Description = *in.Description
	}
	if in.Severity != nil {
		if !models.ValidSeverity(*in.Severity) {
			return nil, apperr.New(apperr.Validation, "invalid severity %q", *in.Severity)
		}
		issue.Severity = *in.Severity
	}
	if in.Status != nil {
		if !models.ValidIssueStatus(*in.Status) {
			return nil, apperr.New(apperr.Validation, "invalid issue status %q", *in.Status)
		}
		issue.Status = *in.Status
	}
	if in.Photo != nil {
		issue.Photo = *in.Photo
	}
	if in.RecommendedAction != nil {
		issue.RecommendedAction = *in.RecommendedAction
	}
	if in.EstimatedCost != nil {
		if *in.EstimatedCost < 0 {
			return nil, apperr.New(apperr.Validation, "estimated_cost must not be negative")
		}
		issue.EstimatedCost = *in.EstimatedCost
	}

	if err := e.issues.UpdateIssue(ctx, issue); err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "update issue")
	}
	return issue, nil
}

// DeleteIssue removes the issue; deleting the room's last issue flips a
// has_issues room back to inspected_ok inside the store transaction.
func (e *Engine) DeleteIssue(ctx context.Context, caller Identity, issueID int64) error {
	if _, err := e.mutableIssue(ctx, caller, issueID); err != nil {
		return err
	}
	if err := e.issues.DeleteIssue(ctx, issueID); err != nil {
		return apperr.Wrap(apperr.Internal, err, "delete issue")
	}
	return nil
}

// IssuesBySurvey returns the survey's issues, most severe first, applying
// the client-ownership read check.
func (e *Engine) IssuesBySurvey(ctx context.Context, caller Identity, surveyID int64) ([]models.Issue, error) {
	survey, err := e.surveys.GetSurveyByID(ctx, surveyID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "lookup survey")
	}
	if survey == nil {
		return nil, apperr.New(apperr.NotFound, "survey not found")
	}
	if err := e.canReadSurvey(ctx, caller, survey); err != nil {
		return nil, err
	}

	issues, err := e.issues.ListIssuesBySurvey(ctx, surveyID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "list issues")
	}
	if issues == nil {
		issues = []models.Issue{}
	}
	return issues, nil
}

func (e *Engine) mutableIssue(ctx context.Context, caller Identity, issueID int64) (*models.Issue, error) {
	issue, err := e.issues.GetIssueByID(ctx, issueID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "lookup issue")
	}
	if issue == nil {
		return nil, apperr.New(apperr.NotFound, "issue not found")
	}
	if _, err := e.mutableSurvey(ctx, caller, issue.SurveyID); err != nil {
		return nil, err
	}
	return issue, nil
}
