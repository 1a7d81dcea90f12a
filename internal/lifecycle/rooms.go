package lifecycle

import (
	"context"
	"strings"

	"github.com/predial/vistoria/pkg/apperr"
	"github.com/predial/vistoria/pkg/models"
)

type CreateRoomInput struct {
	SurveyID int64  `json:"survey_id"`
	Name     string `json:"name"`
	Status   string `json:"status,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// CreateRoom adds a room under a survey, defaulting to pending.
func (e *Engine) CreateRoom(ctx context.Context, caller Identity, in CreateRoomInput) (*models.Room, error) {
	var missing []string
	if in.SurveyID <= 0 {
		missing = append(missing, "survey_id")
	}
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if len(missing) > 0 {
		return nil, apperr.MissingFields(missing...)
	}

	if _, err := e.mutableSurvey(ctx, caller, in.SurveyID); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = models.RoomPending
	}
	if !models.ValidRoomStatus(status) {
		return nil, apperr.New(apperr.Validation, "invalid room status %q", status)
	}

	room := &models.Room{SurveyID: in.SurveyID, Name: strings.TrimSpace(in.Name), Status: status, Notes: in.Notes}
	id, err := e.rooms.CreateRoom(ctx, room)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "create room")
	}

	created, err := e.rooms.GetRoomByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "reload room")
	}
	return created, nil
}

// AddRooms bulk-creates pending rooms under a survey.
func (e *Engine) AddRooms(ctx context.Context, caller Identity, surveyID int64, names []CreateRoomInput) ([]models.Room, error) {
	if len(names) == 0 {
		return nil, apperr.MissingFields("rooms")
	}
	if _, err := e.mutableSurvey(ctx, caller, surveyID); err != nil {
		return nil, err
	}

	rooms := make([]models.Room, 0, len(names))
	for _, in := range names {
		if strings.TrimSpace(in.Name) == "" {
			return nil, apperr.MissingFields("name")
		}
		rooms = append(rooms, models.Room{Name: strings.TrimSpace(in.Name), Status: models.RoomPending, Notes: in.Notes})
	}

	created, err := e.rooms.CreateRooms(ctx, surveyID, rooms)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "add rooms")
	}
	return created, nil
}

type UpdateRoomInput struct {
	Name   *string `json:"name,omitempty"`
	Status *string `json:"status,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

// UpdateRoom applies a partial update; absent fields keep their value.
func (e *Engine) UpdateRoom(ctx context.Context, caller Identity, roomID int64, in UpdateRoomInput) (*models.Room, error) {
	room, err := e.mutableRoom(ctx, caller, roomID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, apperr.MissingFields("name")
		}
		room.Name = strings.TrimSpace(*in.Name)
	}
	if in.Status != nil {
		if !models.ValidRoomStatus(*in.Status) {
			return nil, apperr.New(apperr.Validation, "invalid room status %q", *in.Status)
		}
		room.Status = *in.Status
	}
	if in.Notes != nil {
		room.Notes = *in.Notes
	}

	if err := e.rooms.UpdateRoom(ctx, room); err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "update room")
	}
	return room, nil
}

// DeleteRoom cascades the room's issues.
func (e *Engine) DeleteRoom(ctx context.Context, caller Identity, roomID int64) error {
	if _, err := e.mutableRoom(ctx, caller, roomID); err != nil {
		return err
	}
	if err := e.rooms.DeleteRoom(ctx, roomID); err != nil {
		return apperr.Wrap(apperr.Internal, err, "delete room")
	}
	return nil
}

// RoomsBySurvey returns the survey's rooms with nested issues, applying the
// client-ownership read check.
func (e *Engine) RoomsBySurvey(ctx context.Context, caller Identity, surveyID int64) ([]models.Room, error) {
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

	rooms, err := e.rooms.ListRoomsBySurvey(ctx, surveyID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "list rooms")
	}
	if rooms == nil {
		rooms = []models.Room{}
	}
	return rooms, nil
}

// FixAllIssues marks every issue of the room fixed and the room
// inspected_ok. The store applies the batch atomically.
func (e *Engine) FixAllIssues(ctx context.Context, caller Identity, roomID int64) (*models.Room, error) {
	if _, err := e.mutableRoom(ctx, caller, roomID); err != nil {
		return nil, err
	}

	if err := e.rooms.MarkAllIssuesFixed(ctx, roomID); err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "mark issues fixed")
	}

	room, err := e.rooms.GetRoomByID(ctx, roomID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "reload room")
	}
	room.Issues, err = e.issues.ListIssuesByRoom(ctx, roomID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "list room issues")
	}
	return room, nil
}

// mutableRoom loads the room and checks mutation ownership against the
// parent survey.
func (e *Engine) mutableRoom(ctx context.Context, caller Identity, roomID int64) (*models.Room, error) {
	room, err := e.rooms.GetRoomByID(ctx, roomID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "lookup room")
	}
	if room == nil {
		return nil, apperr.New(apperr.NotFound, "room not found")
	}
	if _, err := e.mutableSurvey(ctx, caller, room.SurveyID); err != nil {
		return nil, err
	}
	return room, nil
}
