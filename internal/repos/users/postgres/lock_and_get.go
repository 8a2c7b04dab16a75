package users

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/paygate/internal/repos/users"
)

func (r *usersRepo) LockAndGet(tx *sql.Tx, userID uint64) (users.Account, error) {
	a, err := scanAccount(tx.QueryRow(`
		SELECT `+accountColumns+`
		FROM users
		WHERE id = $1
		FOR UPDATE
	`, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.Account{}, users.ErrUserNotFound
		}

		return users.Account{}, fmt.Errorf("lock/get user: %w", err)
	}

	return a, nil
}
