// Package lifecycle owns the survey state machine, the room/issue
// aggregation rules and the client/building linking logic. HTTP handlers
// delegate here after the role gate; every operation re-checks ownership
// against the caller identity.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/predial/vistoria/pkg/apperr"
	"github.com/predial/vistoria/pkg/models"
	"github.com/predial/vistoria/pkg/repository"
)

type Engine struct {
	users     repository.UserRepo
	clients   repository.ClientRepo
	buildings repository.BuildingRepo
	links     repository.LinkRepo
	surveys   repository.SurveyRepo
	rooms     repository.RoomRepo
	issues    repository.IssueRepo

	// nowFn is swappable in tests.
	nowFn func() int64
}

func NewEngine(
	users repository.UserRepo,
	clients repository.ClientRepo,
	buildings repository.BuildingRepo,
	links repository.LinkRepo,
	surveys repository.SurveyRepo,
	rooms repository.RoomRepo,
	issues repository.IssueRepo,
) *Engine {
	return &Engine{
		users:     users,
		clients:   clients,
		buildings: buildings,
		links:     links,
		surveys:   surveys,
		rooms:     rooms,
		issues:    issues,
		nowFn:     func() int64 { return time.Now().UTC().UnixMilli() },
	}
}

type CreateSurveyInput struct {
	BuildingID       int64  `json:"building_id"`
	ClientID         int64  `json:"client_id"`
	BuildingClientID *int64 `json:"building_client_id,omitempty"`
	SurveyDate       *int64 `json:"survey_date,omitempty"`
	EngineerNotes    string `json:"engineer_notes,omitempty"`
}

// CreateSurvey schedules a new survey for the calling engineer. The target
// client record must carry real contact data: surveys against placeholder
// profiles are rejected with the offending field names.
func (e *Engine) CreateSurvey(ctx context.Context, caller Identity, in CreateSurveyInput) (*models.Survey, error) {
	if in.BuildingID <= 0 || in.ClientID <= 0 {
		var missing []string
		if in.BuildingID <= 0 {
			missing = append(missing, "building_id")
		}
		if in.ClientID <= 0 {
			missing = append(missing, "client_id")
		}
		return nil, apperr.MissingFields(missing...)
	}

	building, err := e.buildings.GetBuildingByID(ctx, in.BuildingID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "lookup building")
	}
	if building == nil {
		return nil, apperr.New(apperr.NotFound, "building not found")
	}

	client, err := e.clients.GetClientByID(ctx, in.ClientID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "lookup client")
	}
	if client == nil {
		return nil, apperr.New(apperr.NotFound, "client not found")
	}

	var missing []string
	if models.IsSentinel(client.Name) {
		missing = append(missing, "name")
	}
	if models.IsSentinel(client.Email) {
		missing = append(missing, "email")
	}
	if models.IsSentinel(client.Phone) {
		missing = append(missing, "phone")
	}
	if models.IsSentinel(client.Address) {
		missing = append(missing, "address")
	}
	if models.IsSentinel(client.PropertyNumber) {
		missing = append(missing, "property_number")
	}
	if len(missing) > 0 {
		return nil, apperr.MissingFields(missing...)
	}

	date := e.nowFn()
	if in.SurveyDate != nil && *in.SurveyDate > 0 {
		date = *in.SurveyDate
	}

	survey := &models.Survey{
		BuildingID:       in.BuildingID,
		ClientID:         in.ClientID,
		EngineerID:       caller.ID,
		BuildingClientID: in.BuildingClientID,
		SurveyDate:       date,
		Status:           models.SurveyScheduled,
		EngineerNotes:    in.EngineerNotes,
	}
	id, err := e.surveys.CreateSurvey(ctx, survey)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "create survey")
	}

	return e.getSurveyHydrated(ctx, id)
}

// StartLive transitions scheduled -> in_progress and resets the survey date
// to now, documenting when work actually began. Any other starting status is
// rejected so repeated calls stay deterministic.
func (e *Engine) StartLive(ctx context.Context, caller Identity, surveyID int64) (*models.Survey, error) {
	survey, err := e.mutableSurvey(ctx, caller, surveyID)
	if err != nil {
		return nil, err
	}

	if survey.Status != models.SurveyScheduled {
		return nil, apperr.New(apperr.PreconditionFailed, "survey cannot be started from status %q", survey.Status)
	}

	survey.Status = models.SurveyInProgress
	survey.SurveyDate = e.nowFn()
	if err := e.surveys.UpdateSurvey(ctx, survey); err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "start live survey")
	}

	return survey, nil
}

// Complete transitions in_progress -> completed. Every room must have been
// inspected: a single pending room blocks completion. The final report
// summarises room and issue counts.
func (e *Engine) Complete(ctx context.Context, caller Identity, surveyID int64) (*models.Survey, error) {
	survey, err := e.mutableSurvey(ctx, caller, surveyID)
	if err != nil {
		return nil, err
	}

	if survey.Status != models.SurveyInProgress {
		return nil, apperr.New(apperr.PreconditionFailed, "survey cannot be completed from status %q", survey.Status)
	}

	pending, err := e.surveys.CountPendingRooms(ctx, surveyID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "count pending rooms")
	}
	if pending > 0 {
		return nil, apperr.New(apperr.PreconditionFailed, "%d room(s) still pending inspection", pending)
	}

	roomCount, err := e.surveys.CountRoomsBySurvey(ctx, surveyID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "count rooms")
	}
	issueCount, err := e.surveys.CountIssuesBySurvey(ctx, surveyID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "count issues")
	}

	survey.Status = models.SurveyCompleted
	survey.FinalReport = fmt.Sprintf("Survey completed on %s. %d room(s) inspected, %d issue(s) found.",
		time.UnixMilli(e.nowFn()).UTC().Format("2006-01-02"), roomCount, issueCount)
	if err := e.surveys.UpdateSurvey(ctx, survey); err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "complete survey")
	}

	return survey, nil
}

type UpdateSurveyInput struct {
	Status          *string `json:"status,omitempty"`
	ClientSignature *string `json:"client_signature,omitempty"`
	FinalReport     *string `json:"final_report,omitempty"`
	EngineerNotes   *string `json:"engineer_notes,omitempty"`
}

// UpdateStatus is the generic status setter. It validates the status value
// but deliberately performs no transition-adjacency checks; signed and
// closed are reachable only through here.
func (e *Engine) UpdateStatus(ctx context.Context, caller Identity, surveyID int64, in UpdateSurveyInput) (*models.Survey, error) {
	survey, err := e.mutableSurvey(ctx, caller, surveyID)
	if err != nil {
		return nil, err
	}

	if in.Status != nil {
		if !models.ValidSurveyStatus(*in.Status) {
			return nil, apperr.New(apperr.Validation, "invalid survey status %q", *in.Status)
		}
		survey.Status = *in.Status
	}
	if in.ClientSignature != nil {
		survey.ClientSignature = *in.ClientSignature
	}
	if in.FinalReport != nil {
		survey.FinalReport = *in.FinalReport
	}
	if in.EngineerNotes != nil {
		survey.EngineerNotes = *in.EngineerNotes
	}

	if err := e.surveys.UpdateSurvey(ctx, survey); err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "update survey")
	}

	return survey, nil
}

// DeleteSurvey cascades rooms and issues.
func (e *Engine) DeleteSurvey(ctx context.Context, caller Identity, surveyID int64) error {
	if _, err := e.mutableSurvey(ctx, caller, surveyID); err != nil {
		return err
	}
	if err := e.surveys.DeleteSurvey(ctx, surveyID); err != nil {
		return apperr.Wrap(apperr.Internal, err, "delete survey")
	}
	return nil
}

// GetSurvey returns one survey with related entities, applying the
// client-ownership read check.
func (e *Engine) GetSurvey(ctx context.Context, caller Identity, surveyID int64) (*models.Survey, error) {
	survey, err := e.getSurveyHydrated(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if err := e.canReadSurvey(ctx, caller, survey); err != nil {
		return nil, err
	}
	return survey, nil
}

// SurveysForEngineer lists the surveys the caller created.
func (e *Engine) SurveysForEngineer(ctx context.Context, caller Identity) ([]models.Survey, error) {
	surveys, err := e.surveys.ListSurveysByEngineer(ctx, caller.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "list surveys")
	}
	return e.hydrateSurveys(ctx, surveys)
}

// SurveysForClient lists the surveys linked to the caller's client profile.
// A caller without a profile gets an empty list, not an error.
func (e *Engine) SurveysForClient(ctx context.Context, caller Identity) ([]models.Survey, error) {
	profile, err := e.clients.GetClientByUserID(ctx, caller.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "lookup client profile")
	}
	if profile == nil {
		return []models.Survey{}, nil
	}

	surveys, err := e.surveys.ListSurveysByClient(ctx, profile.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "list client surveys")
	}
	return e.hydrateSurveys(ctx, surveys)
}

// AllSurveys is the admin-wide listing.
func (e *Engine) AllSurveys(ctx context.Context) ([]models.Survey, error) {
	surveys, err := e.surveys.ListAllSurveys(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "list all surveys")
	}
	return e.hydrateSurveys(ctx, surveys)
}

// mutableSurvey loads the survey and enforces the mutation ownership rule.
func (e *Engine) mutableSurvey(ctx context.Context, caller Identity, surveyID int64) (*models.Survey, error) {
	survey, err := e.surveys.GetSurveyByID(ctx, surveyID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "lookup survey")
	}
	if survey == nil {
		return nil, apperr.New(apperr.NotFound, "survey not found")
	}
	if err := CanMutateSurvey(caller, survey); err != nil {
		return nil, err
	}
	return survey, nil
}

func (e *Engine) getSurveyHydrated(ctx context.Context, surveyID int64) (*models.Survey, error) {
	survey, err := e.surveys.GetSurveyByID(ctx, surveyID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "lookup survey")
	}
	if survey == nil {
		return nil, apperr.New(apperr.NotFound, "survey not found")
	}
	if err := e.hydrateSurvey(ctx, survey); err != nil {
		return nil, err
	}
	return survey, nil
}

func (e *Engine) hydrateSurveys(ctx context.Context, surveys []models.Survey) ([]models.Survey, error) {
	for i := range surveys {
		if err := e.hydrateSurvey(ctx, &surveys[i]); err != nil {
			return nil, err
		}
	}
	if surveys == nil {
		surveys = []models.Survey{}
	}
	return surveys, nil
}

// hydrateSurvey resolves the survey's named relations with explicit queries.
func (e *Engine) hydrateSurvey(ctx context.Context, survey *models.Survey) error {
	building, err := e.buildings.GetBuildingByID(ctx, survey.BuildingID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, err, "hydrate building")
	}
	survey.Building = building

	client, err := e.clients.GetClientByID(ctx, survey.ClientID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, err, "hydrate client")
	}
	survey.Client = client

	engineer, err := e.users.GetUserByID(ctx, survey.EngineerID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, err, "hydrate engineer")
	}
	if engineer != nil {
		survey.Engineer = &models.UserRef{ID: engineer.ID, Name: engineer.Name, Company: engineer.Company, LicenseNumber: engineer.LicenseNumber}
	}

	rooms, err := e.rooms.ListRoomsBySurvey(ctx, survey.ID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, err, "hydrate rooms")
	}
	survey.Rooms = rooms

	issues, err := e.issues.ListIssuesBySurvey(ctx, survey.ID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, err, "hydrate issues")
	}
	survey.Issues = issues

	return nil
}
