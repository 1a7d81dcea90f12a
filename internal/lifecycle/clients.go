package lifecycle

import (
	"context"
	"strings"

	"github.com/predial/vistoria/pkg/apperr"
	"github.com/predial/vistoria/pkg/models"
)

type CreateClientInput struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	Address        string  `json:"address"`
	PropertyType   string  `json:"property_type,omitempty"`
	PropertyNumber string  `json:"property_number"`
	Floor          *string `json:"floor,omitempty"`
	Block          *string `json:"block,omitempty"`
	UserID         *int64  `json:"user_id,omitempty"`
}

// CreateClient validates and stores a client profile. Houses never carry
// floor or block values.
func (e *Engine) CreateClient(ctx context.Context, in CreateClientInput) (*models.Client, error) {
	var missing []string
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(in.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(in.Phone) == "" {
		missing = append(missing, "phone")
	}
	if strings.TrimSpace(in.Address) == "" {
		missing = append(missing, "address")
	}
	if strings.TrimSpace(in.PropertyNumber) == "" {
		missing = append(missing, "property_number")
	}
	if len(missing) > 0 {
		return nil, apperr.MissingFields(missing...)
	}

	propertyType := in.PropertyType
	if propertyType == "" {
		propertyType = models.PropertyApartment
	}
	if !models.ValidPropertyType(propertyType) {
		return nil, apperr.New(apperr.Validation, "invalid property type %q", propertyType)
	}

	existing, err := e.clients.GetClientByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "lookup client")
	}
	if existing != nil {
		return nil, apperr.New(apperr.Conflict, "a client already exists with this email")
	}

	client := &models.Client{
		Name:           strings.TrimSpace(in.Name),
		Email:          strings.TrimSpace(in.Email),
		Phone:          strings.TrimSpace(in.Phone),
		Address:        strings.TrimSpace(in.Address),
		PropertyType:   propertyType,
		PropertyNumber: strings.TrimSpace(in.PropertyNumber),
		UserID:         in.UserID,
	}
	if propertyType == models.PropertyApartment {
		client.Floor = in.Floor
		client.Block = in.Block
	}

	id, err := e.clients.CreateClient(ctx, client)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "create client")
	}
	client.ID = id
	return client, nil
}

// ListClients returns every client with linked account info.
func (e *Engine) ListClients(ctx context.Context) ([]models.Client, error) {
	clients, err := e.clients.ListClients(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "list clients")
	}
	if clients == nil {
		clients = []models.Client{}
	}
	return clients, nil
}

// ClientProfileFor returns the caller's own client profile.
func (e *Engine) ClientProfileFor(ctx context.Context, userID int64) (*models.Client, error) {
	profile, err := e.clients.GetClientByUserID(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "lookup client profile")
	}
	if profile == nil {
		return nil, apperr.New(apperr.NotFound, "client profile not found")
	}
	return profile, nil
}

type CreateBuildingInput struct {
	Name                string `json:"name"`
	Address             string `json:"address"`
	ConstructionCompany string `json:"construction_company"`
	NumberOfFloors      int    `json:"number_of_floors"`
	NumberOfUnits       int    `json:"number_of_units"`
}

// CreateBuilding validates and stores a building.
func (e *Engine) CreateBuilding(ctx context.Context, in CreateBuildingInput) (*models.Building, error) {
	var missing []string
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(in.Address) == "" {
		missing = append(missing, "address")
	}
	if strings.TrimSpace(in.ConstructionCompany) == "" {
		missing = append(missing, "construction_company")
	}
	if len(missing) > 0 {
		return nil, apperr.MissingFields(missing...)
	}
	if in.NumberOfFloors <= 0 {
		return nil, apperr.New(apperr.Validation, "number_of_floors must be positive")
	}
	if in.NumberOfUnits <= 0 {
		return nil, apperr.New(apperr.Validation, "number_of_units must be positive")
	}

	building := &models.Building{
		Name:                strings.TrimSpace(in.Name),
		Address:             strings.TrimSpace(in.Address),
		ConstructionCompany: strings.TrimSpace(in.ConstructionCompany),
		NumberOfFloors:      in.NumberOfFloors,
		NumberOfUnits:       in.NumberOfUnits,
	}
	id, err := e.buildings.CreateBuilding(ctx, building)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "create building")
	}
	building.ID = id
	return building, nil
}

// ListBuildings returns all buildings, newest first.
func (e *Engine) ListBuildings(ctx context.Context) ([]models.Building, error) {
	buildings, err := e.buildings.ListBuildings(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "list buildings")
	}
	if buildings == nil {
		buildings = []models.Building{}
	}
	return buildings, nil
}

// ListBuildingsForClientView returns all buildings ordered by name, the
// client-facing listing.
func (e *Engine) ListBuildingsForClientView(ctx context.Context) ([]models.Building, error) {
	buildings, err := e.buildings.ListBuildingsByName(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "list buildings")
	}
	if buildings == nil {
		buildings = []models.Building{}
	}
	return buildings, nil
}
