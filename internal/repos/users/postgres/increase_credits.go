package users

import (
	"database/sql"
	"fmt"
)

func (r *usersRepo) IncreaseCredits(tx *sql.Tx, userID uint64, amount int64) error {
	res, err := tx.Exec(`
		UPDATE users
		SET credits = credits + $2
		WHERE id = $1
	`, userID, amount)
	if err != nil {
		return fmt.Errorf("increase credits: %w", err)
	}

	return expectOneRow(res)
}
