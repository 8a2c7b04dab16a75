package users

import (
	"database/sql"
	"fmt"

	"github.com/fastprodman/paygate/internal/repos/users"
)

func (r *usersRepo) PromoteRole(tx *sql.Tx, userID uint64, from, to users.Role) (bool, error) {
	res, err := tx.Exec(`
		UPDATE users
		SET role = $3
		WHERE id = $1
		  AND role = $2
	`, userID, string(from), string(to))
	if err != nil {
		return false, fmt.Errorf("promote role: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	return affected > 0, nil
}
