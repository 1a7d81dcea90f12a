package lifecycle

import (
	"context"
	"strings"

	"github.com/predial/vistoria/pkg/apperr"
	"github.com/predial/vistoria/pkg/models"
)

// LinkClientToBuilding associates a client, looked up by email, with a
// building. Linking an already linked pair is a no-op returning the existing
// association.
func (e *Engine) LinkClientToBuilding(ctx context.Context, clientEmail string, buildingID int64) (*models.BuildingClient, error) {
	var missing []string
	if strings.TrimSpace(clientEmail) == "" {
		missing = append(missing, "client_email")
	}
	if buildingID <= 0 {
		missing = append(missing, "building_id")
	}
	if len(missing) > 0 {
		return nil, apperr.MissingFields(missing...)
	}

	client, err := e.clients.GetClientByEmail(ctx, strings.TrimSpace(clientEmail))
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "lookup client")
	}
	if client == nil {
		return nil, apperr.New(apperr.NotFound, "client not found")
	}

	building, err := e.buildings.GetBuildingByID(ctx, buildingID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "lookup building")
	}
	if building == nil {
		return nil, apperr.New(apperr.NotFound, "building not found")
	}

	link, err := e.links.LinkClientToBuilding(ctx, client.ID, buildingID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "link client to building")
	}
	return link, nil
}

// BuildingsForUser resolves the caller's client profile and lists its linked
// buildings. No profile yet means an empty list, not an error.
func (e *Engine) BuildingsForUser(ctx context.Context, userID int64) ([]models.BuildingClient, error) {
	profile, err := e.clients.GetClientByUserID(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "lookup client profile")
	}
	if profile == nil {
		return []models.BuildingClient{}, nil
	}

	links, err := e.links.FindBuildingsForClient(ctx, profile.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "list client buildings")
	}
	if links == nil {
		links = []models.BuildingClient{}
	}
	return links, nil
}

// ClientsForBuilding lists all clients associated with a building.
func (e *Engine) ClientsForBuilding(ctx context.Context, buildingID int64) ([]models.BuildingClient, error) {
	building, err := e.buildings.GetBuildingByID(ctx, buildingID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "lookup building")
	}
	if building == nil {
		return nil, apperr.New(apperr.NotFound, "building not found")
	}

	links, err := e.links.FindClientsForBuilding(ctx, buildingID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "list building clients")
	}
	if links == nil {
		links = []models.BuildingClient{}
	}
	return links, nil
}

// ReconcileClientProfile runs after a client-role registration. A client
// record created earlier by an engineer (matched by email) is attached to
// the new account; placeholder contact fields become "Not provided" while
// real data the engineer entered stays intact. Without a match a fresh
// sentinel profile is created.
func (e *Engine) ReconcileClientProfile(ctx context.Context, user *models.User) (*models.Client, error) {
	existing, err := e.clients.GetClientByEmail(ctx, user.Email)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "lookup client by email")
	}

	if existing != nil {
		existing.UserID = &user.ID
		existing.Name = user.Name
		if models.IsSentinel(existing.Phone) {
			existing.Phone = models.SentinelNotProvided
		}
		if models.IsSentinel(existing.Address) {
			existing.Address = models.SentinelNotProvided
		}
		if err := e.clients.UpdateClient(ctx, existing); err != nil {
			return nil, apperr.Wrap(apperr.Internal, err, "attach client profile")
		}
		return existing, nil
	}

	fresh := &models.Client{
		Name:           user.Name,
		Email:          user.Email,
		Phone:          models.SentinelNotProvided,
		Address:        models.SentinelNotProvided,
		PropertyType:   models.PropertyApartment,
		PropertyNumber: models.SentinelNotProvided,
		UserID:         &user.ID,
	}
	id, err := e.clients.CreateClient(ctx, fresh)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "create client profile")
	}
	fresh.ID = id
	return fresh, nil
}

// RegisterUser creates the account record and, for client registrations,
// reconciles the client profile. The password must already be hashed by the
// caller.
func (e *Engine) RegisterUser(ctx context.Context, user *models.User) (*models.User, error) {
	var missing []string
	if strings.TrimSpace(user.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(user.Email) == "" {
		missing = append(missing, "email")
	}
	if user.PasswordHash == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, apperr.MissingFields(missing...)
	}
	if user.Role == "" {
		user.Role = models.RoleClient
	}
	if !models.ValidRole(user.Role) {
		return nil, apperr.New(apperr.Validation, "invalid role: must be client, engineer, or admin")
	}

	existing, err := e.users.GetUserByEmail(ctx, user.Email)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "lookup user")
	}
	if existing != nil {
		return nil, apperr.New(apperr.Conflict, "user already exists with this email")
	}

	id, err := e.users.CreateUser(ctx, user)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "create user")
	}
	user.ID = id

	if user.Role == models.RoleClient {
		if _, err := e.ReconcileClientProfile(ctx, user); err != nil {
			return nil, err
		}
	}

	return user, nil
}
