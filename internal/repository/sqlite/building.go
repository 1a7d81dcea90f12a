package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/predial/vistoria/pkg/models"
)

const buildingCols = `id, name, address, construction_company, number_of_floors, number_of_units, created, updated`

func (r *Repo) CreateBuilding(ctx context.Context, b *models.Building) (int64, error) {
	if b == nil {
		return 0, fmt.Errorf("building is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO buildings (name, address, construction_company, number_of_floors, number_of_units, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.Name, b.Address, b.ConstructionCompany, b.NumberOfFloors, b.NumberOfUnits, ts, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *Repo) GetBuildingByID(ctx context.Context, id int64) (*models.Building, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+buildingCols+` FROM buildings WHERE id = ?`, id)
	var b models.Building
	if err := row.Scan(&b.ID, &b.Name, &b.Address, &b.ConstructionCompany, &b.NumberOfFloors, &b.NumberOfUnits, &b.Created, &b.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &b, nil
}

func (r *Repo) ListBuildings(ctx context.Context) ([]models.Building, error) {
	return r.listBuildings(ctx, `SELECT `+buildingCols+` FROM buildings ORDER BY created DESC`)
}

func (r *Repo) ListBuildingsByName(ctx context.Context) ([]models.Building, error) {
	return r.listBuildings(ctx, `SELECT `+buildingCols+` FROM buildings ORDER BY name ASC`)
}

func (r *Repo) listBuildings(ctx context.Context, query string) ([]models.Building, error) {
	rows, err := r.conn.QueryRows(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Building
	for rows.Next() {
		var b models.Building
		if err := rows.Scan(&b.ID, &b.Name, &b.Address, &b.ConstructionCompany, &b.NumberOfFloors, &b.NumberOfUnits, &b.Created, &b.Updated); err != nil {
			return nil, err
		}
		out = append(out, b)
	}

	return out, rows.Err()
}
