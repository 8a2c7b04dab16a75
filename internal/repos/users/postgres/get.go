package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/paygate/internal/repos/users"
)

func (r *usersRepo) Get(ctx context.Context, userID uint64) (users.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM users
		WHERE id = $1
	`, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.Account{}, users.ErrUserNotFound
		}

		return users.Account{}, fmt.Errorf("get user: %w", err)
	}

	return a, nil
}
