package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/predial/vistoria/pkg/models"
)

const clientCols = `id, name, email, phone, address, property_type, property_number, floor, block, user_id, created, updated`

func (r *Repo) CreateClient(ctx context.Context, c *models.Client) (int64, error) {
	if c == nil {
		return 0, fmt.Errorf("client is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO clients (name, email, phone, address, property_type, property_number, floor, block, user_id, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Name, c.Email, c.Phone, c.Address, c.PropertyType, c.PropertyNumber, c.Floor, c.Block, c.UserID, ts, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *Repo) GetClientByID(ctx context.Context, id int64) (*models.Client, error) {
	return r.scanClient(r.conn.QueryRow(ctx, `SELECT `+clientCols+` FROM clients WHERE id = ?`, id))
}

func (r *Repo) GetClientByEmail(ctx context.Context, email string) (*models.Client, error) {
	return r.scanClient(r.conn.QueryRow(ctx, `SELECT `+clientCols+` FROM clients WHERE email = ?`, email))
}

func (r *Repo) GetClientByUserID(ctx context.Context, userID int64) (*models.Client, error) {
	return r.scanClient(r.conn.QueryRow(ctx, `SELECT `+clientCols+` FROM clients WHERE user_id = ?`, userID))
}

func (r *Repo) UpdateClient(ctx context.Context, c *models.Client) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}

	_, err := r.conn.Exec(ctx, `UPDATE clients SET name = ?, email = ?, phone = ?, address = ?, property_type = ?, property_number = ?, floor = ?, block = ?, user_id = ?, updated = ? WHERE id = ?`,
		c.Name, c.Email, c.Phone, c.Address, c.PropertyType, c.PropertyNumber, c.Floor, c.Block, c.UserID, now(), c.ID)
	return err
}

// ListClients returns every client, newest first, with the linked user
// account summary populated when present.
func (r *Repo) ListClients(ctx context.Context) ([]models.Client, error) {
	rows, err := r.conn.QueryRows(ctx, `
		SELECT c.id, c.name, c.email, c.phone, c.address, c.property_type, c.property_number, c.floor, c.block, c.user_id, c.created, c.updated,
		       u.id, u.name, u.email, u.role
		FROM clients c
		LEFT JOIN users u ON u.id = c.user_id
		ORDER BY c.created DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Client
	for rows.Next() {
		var c models.Client
		var uid sql.NullInt64
		var uname, uemail, urole sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.PropertyType, &c.PropertyNumber, &c.Floor, &c.Block, &c.UserID, &c.Created, &c.Updated,
			&uid, &uname, &uemail, &urole); err != nil {
			return nil, err
		}
		if uid.Valid {
			c.UserAccount = &models.User{ID: uid.Int64, Name: uname.String, Email: uemail.String, Role: urole.String}
		}
		out = append(out, c)
	}

	return out, rows.Err()
}

func (r *Repo) scanClient(row *sql.Row) (*models.Client, error) {
	var c models.Client
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.PropertyType, &c.PropertyNumber, &c.Floor, &c.Block, &c.UserID, &c.Created, &c.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &c, nil
}
