package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/predial/vistoria/pkg/models"
)

const issueCols = `id, room_id, survey_id, area, description, severity, status, photo, recommended_action, estimated_cost, created, updated`

// severityRank orders issues critical first in survey listings.
const severityRank = `CASE severity WHEN 'critical' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END`

// CreateIssue inserts the issue and flips the parent room to has_issues in
// the same transaction, so a room can never carry issues while reading as
// inspected.
func (r *Repo) CreateIssue(ctx context.Context, i *models.Issue) (int64, error) {
	if i == nil {
		return 0, fmt.Errorf("issue is nil")
	}

	var id int64
	err := r.conn.Tx(ctx, func(tx *sql.Tx) error {
		ts := now()
		res, err := tx.ExecContext(ctx, `INSERT INTO issues (room_id, survey_id, area, description, severity, status, photo, recommended_action, estimated_cost, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i.RoomID, i.SurveyID, i.Area, i.Description, i.Severity, i.Status, nullStr(i.Photo), nullStr(i.RecommendedAction), i.EstimatedCost, ts, ts)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `UPDATE rooms SET status = ?, updated = ? WHERE id = ? AND status != ?`,
			models.RoomHasIssues, ts, i.RoomID, models.RoomHasIssues)
		return err
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

func (r *Repo) GetIssueByID(ctx context.Context, id int64) (*models.Issue, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+issueCols+` FROM issues WHERE id = ?`, id)
	i, err := scanIssue(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return i, nil
}

func (r *Repo) UpdateIssue(ctx context.Context, i *models.Issue) error {
	if i == nil {
		return fmt.Errorf("issue is nil")
	}

	_, err := r.conn.Exec(ctx, `UPDATE issues SET area = ?, description = ?, severity = ?, status = ?, photo = ?, recommended_action = ?, estimated_cost = ?, updated = ? WHERE id = ?`,
		i.Area, i.Description, i.Severity, i.Status, nullStr(i.Photo), nullStr(i.RecommendedAction), i.EstimatedCost, now(), i.ID)
	return err
}

// DeleteIssue removes the issue; when it was the last one of a has_issues
// room the room flips back to inspected_ok, atomically.
func (r *Repo) DeleteIssue(ctx context.Context, id int64) error {
	return r.conn.Tx(ctx, func(tx *sql.Tx) error {
		var roomID int64
		if err := tx.QueryRowContext(ctx, `SELECT room_id FROM issues WHERE id = ?`, id).Scan(&roomID); err != nil {
			if err == sql.ErrNoRows {
				return fmt.Errorf("issue %d not found", id)
			}
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM issues WHERE id = ?`, id); err != nil {
			return err
		}

		var remaining int64
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM issues WHERE room_id = ?`, roomID).Scan(&remaining); err != nil {
			return err
		}
		if remaining == 0 {
			if _, err := tx.ExecContext(ctx, `UPDATE rooms SET status = ?, updated = ? WHERE id = ? AND status = ?`,
				models.RoomInspectedOK, now(), roomID, models.RoomHasIssues); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repo) ListIssuesBySurvey(ctx context.Context, surveyID int64) ([]models.Issue, error) {
	return r.listIssues(ctx, `SELECT `+issueCols+` FROM issues WHERE survey_id = ? ORDER BY `+severityRank+` ASC, created ASC, id ASC`, surveyID)
}

func (r *Repo) ListIssuesByRoom(ctx context.Context, roomID int64) ([]models.Issue, error) {
	return r.listIssues(ctx, `SELECT `+issueCols+` FROM issues WHERE room_id = ? ORDER BY created ASC, id ASC`, roomID)
}

func (r *Repo) listIssues(ctx context.Context, query string, args ...any) ([]models.Issue, error) {
	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Issue
	for rows.Next() {
		i, err := scanIssue(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *i)
	}

	return out, rows.Err()
}

func scanIssue(scan func(dest ...any) error) (*models.Issue, error) {
	var i models.Issue
	var photo, action sql.NullString
	if err := scan(&i.ID, &i.RoomID, &i.SurveyID, &i.Area, &i.Description, &i.Severity, &i.Status, &photo, &action, &i.EstimatedCost, &i.Created, &i.Updated); err != nil {
		return nil, err
	}

	i.Photo = photo.String
	i.RecommendedAction = action.String
	return &i, nil
}
