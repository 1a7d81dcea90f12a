package repository

import (
	"context"

	"github.com/predial/vistoria/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.
// Lookups return (nil, nil) when the row does not exist.

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

type ClientRepo interface {
	CreateClient(ctx context.Context, c *models.Client) (int64, error)
	GetClientByID(ctx context.Context, id int64) (*models.Client, error)
	GetClientByEmail(ctx context.Context, email string) (*models.Client, error)
	GetClientByUserID(ctx context.Context, userID int64) (*models.Client, error)
	UpdateClient(ctx context.Context, c *models.Client) error
	ListClients(ctx context.Context) ([]models.Client, error)
}

type BuildingRepo interface {
	CreateBuilding(ctx context.Context, b *models.Building) (int64, error)
	GetBuildingByID(ctx context.Context, id int64) (*models.Building, error)
	ListBuildings(ctx context.Context) ([]models.Building, error)
	ListBuildingsByName(ctx context.Context) ([]models.Building, error)
}

// LinkRepo is the explicit association-table repository for the
// Client <-> Building many-to-many relation.
type LinkRepo interface {
	// LinkClientToBuilding creates the association, or returns the existing
	// row when the pair is already linked.
	LinkClientToBuilding(ctx context.Context, clientID, buildingID int64) (*models.BuildingClient, error)
	FindBuildingsForClient(ctx context.Context, clientID int64) ([]models.BuildingClient, error)
	FindClientsForBuilding(ctx context.Context, buildingID int64) ([]models.BuildingClient, error)
}

type SurveyRepo interface {
	CreateSurvey(ctx context.Context, s *models.Survey) (int64, error)
	GetSurveyByID(ctx context.Context, id int64) (*models.Survey, error)
	UpdateSurvey(ctx context.Context, s *models.Survey) error
	// DeleteSurvey removes the survey plus its rooms and issues in one
	// transaction.
	DeleteSurvey(ctx context.Context, id int64) error
	ListSurveysByEngineer(ctx context.Context, engineerID int64) ([]models.Survey, error)
	ListSurveysByClient(ctx context.Context, clientID int64) ([]models.Survey, error)
	ListAllSurveys(ctx context.Context) ([]models.Survey, error)
	CountPendingRooms(ctx context.Context, surveyID int64) (int64, error)
	CountRoomsBySurvey(ctx context.Context, surveyID int64) (int64, error)
	CountIssuesBySurvey(ctx context.Context, surveyID int64) (int64, error)
}

type RoomRepo interface {
	CreateRoom(ctx context.Context, r *models.Room) (int64, error)
	// CreateRooms bulk-inserts rooms for one survey inside a transaction.
	CreateRooms(ctx context.Context, surveyID int64, rooms []models.Room) ([]models.Room, error)
	GetRoomByID(ctx context.Context, id int64) (*models.Room, error)
	UpdateRoom(ctx context.Context, r *models.Room) error
	// DeleteRoom removes the room plus its issues in one transaction.
	DeleteRoom(ctx context.Context, id int64) error
	ListRoomsBySurvey(ctx context.Context, surveyID int64) ([]models.Room, error)
	// MarkAllIssuesFixed sets every issue of the room to fixed and the room
	// to inspected_ok; all updates commit together or not at all.
	MarkAllIssuesFixed(ctx context.Context, roomID int64) error
}

type IssueRepo interface {
	// CreateIssue inserts the issue and, in the same transaction, flips the
	// parent room to has_issues when it is not already.
	CreateIssue(ctx context.Context, i *models.Issue) (int64, error)
	GetIssueByID(ctx context.Context, id int64) (*models.Issue, error)
	UpdateIssue(ctx context.Context, i *models.Issue) error
	// DeleteIssue removes the issue and, when it was the last one of a
	// has_issues room, flips the room back to inspected_ok.
	DeleteIssue(ctx context.Context, id int64) error
	ListIssuesBySurvey(ctx context.Context, surveyID int64) ([]models.Issue, error)
	ListIssuesByRoom(ctx context.Context, roomID int64) ([]models.Issue, error)
}
