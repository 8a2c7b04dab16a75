package settings

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/paygate/internal/repos/settings"
)

var _ settings.Settings = (*settingsRepo)(nil)

type settingsRepo struct{ db *sql.DB }

func New(db *sql.DB) *settingsRepo {
	return &settingsRepo{db: db}
}

func (r *settingsRepo) All(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("query settings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)

	for rows.Next() {
		var k, v string

		err = rows.Scan(&k, &v)
		if err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}

		out[k] = v
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate settings: %w", err)
	}

	return out, nil
}
