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

func seedIssueFixtures(m *mock.Mocks) (Identity, *models.Survey, *models.Room) {
	caller, building, client := seedEngineFixtures(m)
	survey := m.SeedSurvey(models.Survey{BuildingID: building.ID, ClientID: client.ID, EngineerID: caller.ID, Status: models.SurveyInProgress})
	room := m.SeedRoom(models.Room{SurveyID: survey.ID, Name: "Kitchen", Status: models.RoomPending})
	return caller, survey, room
}

func TestCreateIssue(t *testing.T) {
	ctx := context.Background()

	t.Run("negative cost rejected", func(t *testing.T) {
		m := mock.NewMocks()
		caller, _, room := seedIssueFixtures(m)
		e := newTestEngine(m)

		_, err := e.CreateIssue(ctx, caller, CreateIssueInput{RoomID: room.ID, Area: "wall", Description: "crack", EstimatedCost: -10})
		require.Error(t, err)
		assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	})

	t.Run("inherits survey and flips room", func(t *testing.T) {
		m := mock.NewMocks()
		caller, survey, room := seedIssueFixtures(m)
		e := newTestEngine(m)

		issue, err := e.CreateIssue(ctx, caller, CreateIssueInput{RoomID: room.ID, Area: "wall", Description: "crack"})
		require.NoError(t, err)
		assert.Equal(t, survey.ID, issue.SurveyID)
		assert.Equal(t, models.SeverityMedium, issue.Severity)
		assert.Equal(t, models.IssuePending, issue.Status)

		got, err := m.Rooms.GetRoomByID(ctx, room.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RoomHasIssues, got.Status)
	})

	t.Run("unknown room", func(t *testing.T) {
		m := mock.NewMocks()
		caller, _, _ := seedIssueFixtures(m)
		e := newTestEngine(m)

		_, err := e.CreateIssue(ctx, caller, CreateIssueInput{RoomID: 999, Area: "wall", Description: "crack"})
		require.Error(t, err)
		assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	})
}

func TestUpdateIssueMerge(t *testing.T) {
	ctx := context.Background()
	m := mock.NewMocks()
	caller, survey, room := seedIssueFixtures(m)
	issue := m.SeedIssue(models.Issue{
		RoomID:            room.ID,
		SurveyID:          survey.ID,
		Area:              "ceiling",
		Description:       "stain",
		Severity:          models.SeverityHigh,
		Status:            models.IssuePending,
		RecommendedAction: "repaint",
		EstimatedCost:     150,
	})
	e := newTestEngine(m)

	fixed := models.IssueFixed
	got, err := e.UpdateIssue(ctx, caller, issue.ID, UpdateIssueInput{Status: &fixed})
	require.NoError(t, err)
	assert.Equal(t, models.IssueFixed, got.Status)
	assert.Equal(t, "ceiling", got.Area, "absent fields keep their value")
	assert.Equal(t, models.SeverityHigh, got.Severity)
	assert.Equal(t, "repaint", got.RecommendedAction)
	assert.Equal(t, float64(150), got.EstimatedCost)

	badSeverity := "catastrophic"
	_, err = e.UpdateIssue(ctx, caller, issue.ID, UpdateIssueInput{Severity: &badSeverity})
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestFixAllIssuesEngine(t *testing.T) {
	ctx := context.Background()
	m := mock.NewMocks()
	caller, survey, room := seedIssueFixtures(m)
	room.Status = models.RoomHasIssues
	require.NoError(t, m.Rooms.UpdateRoom(ctx, room))
	m.SeedIssue(models.Issue{RoomID: room.ID, SurveyID: survey.ID, Area: "a", Description: "d", Severity: models.SeverityLow, Status: models.IssuePending})
	m.SeedIssue(models.Issue{RoomID: room.ID, SurveyID: survey.ID, Area: "b", Description: "d", Severity: models.SeverityHigh, Status: models.IssueInProgress})
	e := newTestEngine(m)

	got, err := e.FixAllIssues(ctx, caller, room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomInspectedOK, got.Status)
	require.Len(t, got.Issues, 2)
	for _, i := range got.Issues {
		assert.Equal(t, models.IssueFixed, i.Status)
	}
}

func TestRoomUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	m := mock.NewMocks()
	caller, survey, room := seedIssueFixtures(m)
	m.SeedIssue(models.Issue{RoomID: room.ID, SurveyID: survey.ID, Area: "a", Description: "d", Severity: models.SeverityLow, Status: models.IssuePending})
	e := newTestEngine(m)

	name := "Kitchen (renovated)"
	got, err := e.UpdateRoom(ctx, caller, room.ID, UpdateRoomInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)
	assert.Equal(t, room.Status, got.Status)

	require.NoError(t, e.DeleteRoom(ctx, caller, room.ID))
	issues, err := m.Issues.ListIssuesByRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Empty(t, issues, "room delete cascades issues")
}

func TestAccessPredicates(t *testing.T) {
	assert.Equal(t, apperr.Unauthenticated, apperr.KindOf(RequireRole(Identity{}, models.RoleAdmin)))
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(RequireRole(Identity{ID: 1, Role: models.RoleClient}, models.RoleEngineer, models.RoleAdmin)))
	assert.NoError(t, RequireRole(Identity{ID: 1, Role: models.RoleEngineer}, models.RoleEngineer, models.RoleAdmin))

	survey := &models.Survey{EngineerID: 10}
	assert.NoError(t, CanMutateSurvey(Identity{ID: 10, Role: models.RoleEngineer}, survey))
	assert.NoError(t, CanMutateSurvey(Identity{ID: 99, Role: models.RoleAdmin}, survey))
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(CanMutateSurvey(Identity{ID: 99, Role: models.RoleEngineer}, survey)))
	assert.Equal(t, apperr.Unauthenticated, apperr.KindOf(CanMutateSurvey(Identity{}, survey)))
}
