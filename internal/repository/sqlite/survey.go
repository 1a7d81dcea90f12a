package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/predial/vistoria/pkg/models"
)

const surveyCols = `id, building_id, client_id, engineer_id, building_client_id, survey_date, status, engineer_notes, client_signature, final_report, created, updated`

func (r *Repo) CreateSurvey(ctx context.Context, s *models.Survey) (int64, error) {
	if s == nil {
		return 0, fmt.Errorf("survey is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO surveys (building_id, client_id, engineer_id, building_client_id, survey_date, status, engineer_notes, client_signature, final_report, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.BuildingID, s.ClientID, s.EngineerID, s.BuildingClientID, s.SurveyDate, s.Status, nullStr(s.EngineerNotes), nullStr(s.ClientSignature), nullStr(s.FinalReport), ts, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *Repo) GetSurveyByID(ctx context.Context, id int64) (*models.Survey, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+surveyCols+` FROM surveys WHERE id = ?`, id)
	s, err := scanSurvey(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return s, nil
}

func (r *Repo) UpdateSurvey(ctx context.Context, s *models.Survey) error {
	if s == nil {
		return fmt.Errorf("survey is nil")
	}

	_, err := r.conn.Exec(ctx, `UPDATE surveys SET survey_date = ?, status = ?, engineer_notes = ?, client_signature = ?, final_report = ?, updated = ? WHERE id = ?`,
		s.SurveyDate, s.Status, nullStr(s.EngineerNotes), nullStr(s.ClientSignature), nullStr(s.FinalReport), now(), s.ID)
	return err
}

// DeleteSurvey removes the survey together with its rooms and issues. The
// three deletes commit together or not at all.
func (r *Repo) DeleteSurvey(ctx context.Context, id int64) error {
	return r.conn.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM issues WHERE survey_id = ?`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE survey_id = ?`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM surveys WHERE id = ?`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("survey %d not found", id)
		}
		return nil
	})
}

func (r *Repo) ListSurveysByEngineer(ctx context.Context, engineerID int64) ([]models.Survey, error) {
	return r.listSurveys(ctx, `SELECT `+surveyCols+` FROM surveys WHERE engineer_id = ? ORDER BY survey_date DESC`, engineerID)
}

func (r *Repo) ListSurveysByClient(ctx context.Context, clientID int64) ([]models.Survey, error) {
	return r.listSurveys(ctx, `SELECT `+surveyCols+` FROM surveys WHERE client_id = ? ORDER BY survey_date DESC`, clientID)
}

func (r *Repo) ListAllSurveys(ctx context.Context) ([]models.Survey, error) {
	return r.listSurveys(ctx, `SELECT `+surveyCols+` FROM surveys ORDER BY survey_date DESC`)
}

func (r *Repo) CountPendingRooms(ctx context.Context, surveyID int64) (int64, error) {
	return r.countRow(ctx, `SELECT COUNT(*) FROM rooms WHERE survey_id = ? AND status = ?`, surveyID, models.RoomPending)
}

func (r *Repo) CountRoomsBySurvey(ctx context.Context, surveyID int64) (int64, error) {
	return r.countRow(ctx, `SELECT COUNT(*) FROM rooms WHERE survey_id = ?`, surveyID)
}

func (r *Repo) CountIssuesBySurvey(ctx context.Context, surveyID int64) (int64, error) {
	return r.countRow(ctx, `SELECT COUNT(*) FROM issues WHERE survey_id = ?`, surveyID)
}

func (r *Repo) countRow(ctx context.Context, query string, args ...any) (int64, error) {
	var cnt int64
	if err := r.conn.QueryRow(ctx, query, args...).Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *Repo) listSurveys(ctx context.Context, query string, args ...any) ([]models.Survey, error) {
	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Survey
	for rows.Next() {
		s, err := scanSurvey(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}

	return out, rows.Err()
}

func scanSurvey(scan func(dest ...any) error) (*models.Survey, error) {
	var s models.Survey
	var notes, sig, report sql.NullString
	if err := scan(&s.ID, &s.BuildingID, &s.ClientID, &s.EngineerID, &s.BuildingClientID, &s.SurveyDate, &s.Status, &notes, &sig, &report, &s.Created, &s.Updated); err != nil {
		return nil, err
	}

	s.EngineerNotes = notes.String
	s.ClientSignature = sig.String
	s.FinalReport = report.String
	return &s, nil
}
