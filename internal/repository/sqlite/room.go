package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/predial/vistoria/pkg/models"
)

const roomCols = `id, survey_id, name, status, notes, created, updated`

func (r *Repo) CreateRoom(ctx context.Context, room *models.Room) (int64, error) {
	if room == nil {
		return 0, fmt.Errorf("room is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO rooms (survey_id, name, status, notes, created, updated) VALUES (?, ?, ?, ?, ?, ?)`,
		room.SurveyID, room.Name, room.Status, nullStr(room.Notes), ts, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

// CreateRooms bulk-inserts rooms for a survey. All inserts commit together.
func (r *Repo) CreateRooms(ctx context.Context, surveyID int64, rooms []models.Room) ([]models.Room, error) {
	ts := now()
	out := make([]models.Room, 0, len(rooms))

	err := r.conn.Tx(ctx, func(tx *sql.Tx) error {
		for _, room := range rooms {
			res, err := tx.ExecContext(ctx, `INSERT INTO rooms (survey_id, name, status, notes, created, updated) VALUES (?, ?, ?, ?, ?, ?)`,
				surveyID, room.Name, room.Status, nullStr(room.Notes), ts, ts)
			if err != nil {
				return err
			}
			id, err := res.LastInsertId()
			if err != nil {
				return err
			}
			room.ID = id
			room.SurveyID = surveyID
			room.Created = ts
			room.Updated = ts
			out = append(out, room)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *Repo) GetRoomByID(ctx context.Context, id int64) (*models.Room, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+roomCols+` FROM rooms WHERE id = ?`, id)
	var room models.Room
	var notes sql.NullString
	if err := row.Scan(&room.ID, &room.SurveyID, &room.Name, &room.Status, &notes, &room.Created, &room.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	room.Notes = notes.String
	return &room, nil
}

func (r *Repo) UpdateRoom(ctx context.Context, room *models.Room) error {
	if room == nil {
		return fmt.Errorf("room is nil")
	}

	_, err := r.conn.Exec(ctx, `UPDATE rooms SET name = ?, status = ?, notes = ?, updated = ? WHERE id = ?`,
		room.Name, room.Status, nullStr(room.Notes), now(), room.ID)
	return err
}

// DeleteRoom removes the room together with its issues in one transaction.
func (r *Repo) DeleteRoom(ctx context.Context, id int64) error {
	return r.conn.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM issues WHERE room_id = ?`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("room %d not found", id)
		}
		return nil
	})
}

// ListRoomsBySurvey returns the survey's rooms in creation order with their
// issues nested.
func (r *Repo) ListRoomsBySurvey(ctx context.Context, surveyID int64) ([]models.Room, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+roomCols+` FROM rooms WHERE survey_id = ? ORDER BY created ASC, id ASC`, surveyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Room
	index := make(map[int64]int)
	for rows.Next() {
		var room models.Room
		var notes sql.NullString
		if err := rows.Scan(&room.ID, &room.SurveyID, &room.Name, &room.Status, &notes, &room.Created, &room.Updated); err != nil {
			return nil, err
		}
		room.Notes = notes.String
		index[room.ID] = len(out)
		out = append(out, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	issues, err := r.ListIssuesBySurvey(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	for _, issue := range issues {
		if i, ok := index[issue.RoomID]; ok {
			out[i].Issues = append(out[i].Issues, issue)
		}
	}

	return out, nil
}

// MarkAllIssuesFixed flips every issue of the room to fixed and the room to
// inspected_ok. A failure anywhere rolls back the whole batch so callers
// never observe partially fixed rooms.
func (r *Repo) MarkAllIssuesFixed(ctx context.Context, roomID int64) error {
	return r.conn.Tx(ctx, func(tx *sql.Tx) error {
		ts := now()
		if _, err := tx.ExecContext(ctx, `UPDATE issues SET status = ?, updated = ? WHERE room_id = ?`, models.IssueFixed, ts, roomID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `UPDATE rooms SET status = ?, updated = ? WHERE id = ?`, models.RoomInspectedOK, ts, roomID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("room %d not found", roomID)
		}
		return nil
	})
}
