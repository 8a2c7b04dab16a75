package activity

import (
	"database/sql"
	"fmt"

	"github.com/fastprodman/paygate/internal/repos/activity"
)

var _ activity.Activity = (*activityRepo)(nil)

type activityRepo struct{}

func New() *activityRepo {
	return &activityRepo{}
}

func (r *activityRepo) Insert(tx *sql.Tx, e activity.Entry) error {
	_, err := tx.Exec(`
		INSERT INTO activity_log (subject_id, causer_id, description)
		VALUES ($1, $2, $3)
	`, e.SubjectID, e.CauserID, e.Description)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}

	return nil
}

func (r *activityRepo) ListBySubject(tx *sql.Tx, subjectID uint64) ([]activity.Entry, error) {
	rows, err := tx.Query(`
		SELECT id, subject_id, causer_id, description, created_at
		FROM activity_log
		WHERE subject_id = $1
		ORDER BY id
	`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	var out []activity.Entry

	for rows.Next() {
		var e activity.Entry

		err = rows.Scan(&e.ID, &e.SubjectID, &e.CauserID, &e.Description, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}

		out = append(out, e)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate activity: %w", err)
	}

	return out, nil
}
