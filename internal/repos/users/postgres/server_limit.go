package users

import (
	"database/sql"
	"fmt"
)

func (r *usersRepo) IncreaseServerLimit(tx *sql.Tx, userID uint64, amount int64) error {
	res, err := tx.Exec(`
		UPDATE users
		SET server_limit = server_limit + $2
		WHERE id = $1
	`, userID, amount)
	if err != nil {
		return fmt.Errorf("increase server limit: %w", err)
	}

	return expectOneRow(res)
}

func (r *usersRepo) RaiseServerLimit(tx *sql.Tx, userID uint64, floor int64) (bool, error) {
	res, err := tx.Exec(`
		UPDATE users
		SET server_limit = $2
		WHERE id = $1
		  AND server_limit < $2
	`, userID, floor)
	if err != nil {
		return false, fmt.Errorf("raise server limit: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	return affected > 0, nil
}
