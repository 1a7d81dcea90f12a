package sqlite

import (
	"context"
	"database/sql"

	"github.com/predial/vistoria/pkg/models"
)

// LinkClientToBuilding creates the association row. The (building_id,
// client_id) pair is unique; linking an already linked pair returns the
// existing row instead of failing.
func (r *Repo) LinkClientToBuilding(ctx context.Context, clientID, buildingID int64) (*models.BuildingClient, error) {
	_, err := r.conn.Exec(ctx, `INSERT INTO building_clients (building_id, client_id, created) VALUES (?, ?, ?) ON CONFLICT(building_id, client_id) DO NOTHING`,
		buildingID, clientID, now())
	if err != nil {
		return nil, err
	}

	row := r.conn.QueryRow(ctx, `SELECT id, building_id, client_id, created FROM building_clients WHERE building_id = ? AND client_id = ?`, buildingID, clientID)
	var bc models.BuildingClient
	if err := row.Scan(&bc.ID, &bc.BuildingID, &bc.ClientID, &bc.Created); err != nil {
		return nil, err
	}

	return &bc, nil
}

// FindBuildingsForClient lists the client's associations with the building
// populated on each row.
func (r *Repo) FindBuildingsForClient(ctx context.Context, clientID int64) ([]models.BuildingClient, error) {
	rows, err := r.conn.QueryRows(ctx, `
		SELECT bc.id, bc.building_id, bc.client_id, bc.created,
		       b.id, b.name, b.address, b.construction_company, b.number_of_floors, b.number_of_units, b.created, b.updated
		FROM building_clients bc
		JOIN buildings b ON b.id = bc.building_id
		WHERE bc.client_id = ?
		ORDER BY b.name ASC`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.BuildingClient
	for rows.Next() {
		var bc models.BuildingClient
		var b models.Building
		if err := rows.Scan(&bc.ID, &bc.BuildingID, &bc.ClientID, &bc.Created,
			&b.ID, &b.Name, &b.Address, &b.ConstructionCompany, &b.NumberOfFloors, &b.NumberOfUnits, &b.Created, &b.Updated); err != nil {
			return nil, err
		}
		bc.Building = &b
		out = append(out, bc)
	}

	return out, rows.Err()
}

// FindClientsForBuilding lists the building's associations with the client
// populated on each row.
func (r *Repo) FindClientsForBuilding(ctx context.Context, buildingID int64) ([]models.BuildingClient, error) {
	rows, err := r.conn.QueryRows(ctx, `
		SELECT bc.id, bc.building_id, bc.client_id, bc.created,
		       c.id, c.name, c.email, c.phone, c.address, c.property_type, c.property_number, c.floor, c.block, c.user_id, c.created, c.updated
		FROM building_clients bc
		JOIN clients c ON c.id = bc.client_id
		WHERE bc.building_id = ?
		ORDER BY c.name ASC`, buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.BuildingClient
	for rows.Next() {
		var bc models.BuildingClient
		var c models.Client
		var userID sql.NullInt64
		if err := rows.Scan(&bc.ID, &bc.BuildingID, &bc.ClientID, &bc.Created,
			&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.PropertyType, &c.PropertyNumber, &c.Floor, &c.Block, &userID, &c.Created, &c.Updated); err != nil {
			return nil, err
		}
		if userID.Valid {
			v := userID.Int64
			c.UserID = &v
		}
		bc.Client = &c
		out = append(out, bc)
	}

	return out, rows.Err()
}
