package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/predial/vistoria/pkg/apperr"
	"github.com/predial/vistoria/pkg/models"
	"github.com/predial/vistoria/pkg/repository/mock"
)

// 2024-05-01T00:00:00Z
const fixedNow = int64(1714521600000)

func newTestEngine(m *mock.Mocks) *Engine {
	e := NewEngine(m.Users, m.Clients, m.Buildings, m.Links, m.Surveys, m.Rooms, m.Issues)
	e.nowFn = func() int64 { return fixedNow }
	return e
}

func seedEngineFixtures(m *mock.Mocks) (Identity, *models.Building, *models.Client) {
	eng := m.SeedUser(models.User{Name: "Eve", Email: "eve@example.com", Role: models.RoleEngineer})
	building := m.SeedBuilding(models.Building{Name: "Aurora", Address: "Main St 1", ConstructionCompany: "BuildCo", NumberOfFloors: 10, NumberOfUnits: 40})
	client := m.SeedClient(models.Client{
		Name:           "Bob",
		Email:          "bob@example.com",
		Phone:          "555-1234",
		Address:        "Main St 1, apt 101",
		PropertyType:   models.PropertyApartment,
		PropertyNumber: "101",
	})
	return Identity{ID: eng.ID, Role: eng.Role}, building, client
}

func TestCreateSurvey(t *testing.T) {
	ctx := context.Background()

	t.Run("missing ids", func(t *testing.T) {
		m := mock.NewMocks()
		e := newTestEngine(m)

		_, err := e.CreateSurvey(ctx, Identity{ID: 1, Role: models.RoleEngineer}, CreateSurveyInput{})
		require.Error(t, err)
		assert.Equal(t, apperr.Validation, apperr.KindOf(err))
		assert.Contains(t, err.Error(), "building_id")
		assert.Contains(t, err.Error(), "client_id")
	})

	t.Run("sentinel client rejected with field names", func(t *testing.T) {
		m := mock.NewMocks()
		caller, building, _ := seedEngineFixtures(m)
		placeholder := m.SeedClient(models.Client{
			Name:           "Ghost",
			Email:          "ghost@example.com",
			Phone:          models.SentinelPending,
			Address:        models.SentinelNotProvided,
			PropertyType:   models.PropertyApartment,
			PropertyNumber: "",
		})
		e := newTestEngine(m)

		_, err := e.CreateSurvey(ctx, caller, CreateSurveyInput{BuildingID: building.ID, ClientID: placeholder.ID})
		require.Error(t, err)
		assert.Equal(t, apperr.Validation, apperr.KindOf(err))
		assert.Contains(t, err.Error(), "phone")
		assert.Contains(t, err.Error(), "address")
		assert.Contains(t, err.Error(), "property_number")
		assert.NotContains(t, err.Error(), "email")
	})

	t.Run("success", func(t *testing.T) {
		m := mock.NewMocks()
		caller, building, client := seedEngineFixtures(m)
		e := newTestEngine(m)

		survey, err := e.CreateSurvey(ctx, caller, CreateSurveyInput{BuildingID: building.ID, ClientID: client.ID})
		require.NoError(t, err)
		assert.Equal(t, models.SurveyScheduled, survey.Status)
		assert.Equal(t, caller.ID, survey.EngineerID)
		assert.Equal(t, fixedNow, survey.SurveyDate)
		require.NotNil(t, survey.Building)
		assert.Equal(t, building.Name, survey.Building.Name)
		require.NotNil(t, survey.Client)
		assert.Equal(t, client.Email, survey.Client.Email)
	})

	t.Run("explicit survey date wins", func(t *testing.T) {
		m := mock.NewMocks()
		caller, building, client := seedEngineFixtures(m)
		e := newTestEngine(m)

		date := fixedNow + 86_400_000
		survey, err := e.CreateSurvey(ctx, caller, CreateSurveyInput{BuildingID: building.ID, ClientID: client.ID, SurveyDate: &date})
		require.NoError(t, err)
		assert.Equal(t, date, survey.SurveyDate)
	})
}

func TestStartLive(t *testing.T) {
	ctx := context.Background()

	t.Run("scheduled starts and restamps date", func(t *testing.T) {
		m := mock.NewMocks()
		caller, building, client := seedEngineFixtures(m)
		survey := m.SeedSurvey(models.Survey{BuildingID: building.ID, ClientID: client.ID, EngineerID: caller.ID, Status: models.SurveyScheduled, SurveyDate: 1000})
		e := newTestEngine(m)

		got, err := e.StartLive(ctx, caller, survey.ID)
		require.NoError(t, err)
		assert.Equal(t, models.SurveyInProgress, got.Status)
		assert.Equal(t, fixedNow, got.SurveyDate)
	})

	t.Run("non scheduled statuses are rejected", func(t *testing.T) {
		for _, status := range []string{models.SurveyInProgress, models.SurveyCompleted, models.SurveySigned, models.SurveyClosed} {
			m := mock.NewMocks()
			caller, building, client := seedEngineFixtures(m)
			survey := m.SeedSurvey(models.Survey{BuildingID: building.ID, ClientID: client.ID, EngineerID: caller.ID, Status: status, SurveyDate: 1000})
			e := newTestEngine(m)

			_, err := e.StartLive(ctx, caller, survey.ID)
			require.Error(t, err, status)
			assert.Equal(t, apperr.PreconditionFailed, apperr.KindOf(err), status)
		}
	})

	t.Run("foreign engineer forbidden, admin allowed", func(t *testing.T) {
		m := mock.NewMocks()
		caller, building, client := seedEngineFixtures(m)
		survey := m.SeedSurvey(models.Survey{BuildingID: building.ID, ClientID: client.ID, EngineerID: caller.ID, Status: models.SurveyScheduled})
		e := newTestEngine(m)

		_, err := e.StartLive(ctx, Identity{ID: caller.ID + 99, Role: models.RoleEngineer}, survey.ID)
		require.Error(t, err)
		assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))

		_, err = e.StartLive(ctx, Identity{ID: caller.ID + 99, Role: models.RoleAdmin}, survey.ID)
		assert.NoError(t, err)
	})

	t.Run("unknown survey", func(t *testing.T) {
		m := mock.NewMocks()
		caller, _, _ := seedEngineFixtures(m)
		e := newTestEngine(m)

		_, err := e.StartLive(ctx, caller, 404)
		require.Error(t, err)
		assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	})
}

func TestComplete(t *testing.T) {
	ctx := context.Background()

	setup := func(roomStatuses ...string) (*Engine, Identity, *models.Survey, *mock.Mocks) {
		m := mock.NewMocks()
		caller, building, client := seedEngineFixtures(m)
		survey := m.SeedSurvey(models.Survey{BuildingID: building.ID, ClientID: client.ID, EngineerID: caller.ID, Status: models.SurveyInProgress})
		for i, status := range roomStatuses {
			room := m.SeedRoom(models.Room{SurveyID: survey.ID, Name: "Room", Status: status})
			if i == 0 && status != models.RoomPending {
				m.SeedIssue(models.Issue{RoomID: room.ID, SurveyID: survey.ID, Area: "wall", Description: "crack", Severity: models.SeverityLow, Status: models.IssuePending})
			}
		}
		return newTestEngine(m), caller, survey, m
	}

	t.Run("pending room blocks completion", func(t *testing.T) {
		e, caller, survey, _ := setup(models.RoomInspectedOK, models.RoomPending)

		_, err := e.Complete(ctx, caller, survey.ID)
		require.Error(t, err)
		assert.Equal(t, apperr.PreconditionFailed, apperr.KindOf(err))
		assert.Contains(t, err.Error(), "1 room(s) still pending")
	})

	t.Run("not in progress", func(t *testing.T) {
		m := mock.NewMocks()
		caller, building, client := seedEngineFixtures(m)
		survey := m.SeedSurvey(models.Survey{BuildingID: building.ID, ClientID: client.ID, EngineerID: caller.ID, Status: models.SurveyScheduled})
		e := newTestEngine(m)

		_, err := e.Complete(ctx, caller, survey.ID)
		require.Error(t, err)
		assert.Equal(t, apperr.PreconditionFailed, apperr.KindOf(err))
	})

	t.Run("success writes the summary report", func(t *testing.T) {
		e, caller, survey, _ := setup(models.RoomHasIssues, models.RoomInspectedOK)

		got, err := e.Complete(ctx, caller, survey.ID)
		require.NoError(t, err)
		assert.Equal(t, models.SurveyCompleted, got.Status)
		assert.Equal(t, "Survey completed on 2024-05-01. 2 room(s) inspected, 1 issue(s) found.", got.FinalReport)
	})
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid status value", func(t *testing.T) {
		m := mock.NewMocks()
		caller, building, client := seedEngineFixtures(m)
		survey := m.SeedSurvey(models.Survey{BuildingID: building.ID, ClientID: client.ID, EngineerID: caller.ID, Status: models.SurveyCompleted})
		e := newTestEngine(m)

		bad := "archived"
		_, err := e.UpdateStatus(ctx, caller, survey.ID, UpdateSurveyInput{Status: &bad})
		require.Error(t, err)
		assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	})

	t.Run("partial merge keeps absent fields", func(t *testing.T) {
		m := mock.NewMocks()
		caller, building, client := seedEngineFixtures(m)
		survey := m.SeedSurvey(models.Survey{
			BuildingID:    building.ID,
			ClientID:      client.ID,
			EngineerID:    caller.ID,
			Status:        models.SurveyCompleted,
			EngineerNotes: "existing notes",
			FinalReport:   "existing report",
		})
		e := newTestEngine(m)

		signed := models.SurveySigned
		signature := "data:image/png;base64,abc"
		got, err := e.UpdateStatus(ctx, caller, survey.ID, UpdateSurveyInput{Status: &signed, ClientSignature: &signature})
		require.NoError(t, err)
		assert.Equal(t, models.SurveySigned, got.Status)
		assert.Equal(t, signature, got.ClientSignature)
		assert.Equal(t, "existing notes", got.EngineerNotes)
		assert.Equal(t, "existing report", got.FinalReport)
	})
}

func TestDeleteSurveyCascade(t *testing.T) {
	ctx := context.Background()
	m := mock.NewMocks()
	caller, building, client := seedEngineFixtures(m)
	survey := m.SeedSurvey(models.Survey{BuildingID: building.ID, ClientID: client.ID, EngineerID: caller.ID, Status: models.SurveyScheduled})
	room := m.SeedRoom(models.Room{SurveyID: survey.ID, Name: "Kitchen", Status: models.RoomHasIssues})
	m.SeedIssue(models.Issue{RoomID: room.ID, SurveyID: survey.ID, Area: "wall", Description: "crack", Severity: models.SeverityLow, Status: models.IssuePending})
	e := newTestEngine(m)

	require.NoError(t, e.DeleteSurvey(ctx, caller, survey.ID))

	gone, err := m.Surveys.GetSurveyByID(ctx, survey.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	rooms, err := m.Rooms.ListRoomsBySurvey(ctx, survey.ID)
	require.NoError(t, err)
	assert.Empty(t, rooms)
	issues, err := m.Issues.ListIssuesBySurvey(ctx, survey.ID)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestClientReadAccess(t *testing.T) {
	ctx := context.Background()
	m := mock.NewMocks()
	caller, building, client := seedEngineFixtures(m)
	owner := m.SeedUser(models.User{Name: "Bob", Email: "bob-account@example.com", Role: models.RoleClient})
	client.UserID = &owner.ID
	require.NoError(t, m.Clients.UpdateClient(ctx, client))
	survey := m.SeedSurvey(models.Survey{BuildingID: building.ID, ClientID: client.ID, EngineerID: caller.ID, Status: models.SurveyScheduled})
	e := newTestEngine(m)

	_, err := e.GetSurvey(ctx, Identity{ID: owner.ID, Role: models.RoleClient}, survey.ID)
	assert.NoError(t, err)

	stranger := m.SeedUser(models.User{Name: "Zoe", Email: "zoe@example.com", Role: models.RoleClient})
	_, err = e.GetSurvey(ctx, Identity{ID: stranger.ID, Role: models.RoleClient}, survey.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}
