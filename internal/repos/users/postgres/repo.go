package users

import (
	"database/sql"
	"fmt"

	"github.com/fastprodman/paygate/internal/repos/users"
)

var _ users.Users = (*usersRepo)(nil)

type usersRepo struct{ db *sql.DB }

func New(db *sql.DB) *usersRepo {
	return &usersRepo{db: db}
}

const accountColumns = `id, name, role, credits, server_limit`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (users.Account, error) {
	var a users.Account

	err := row.Scan(&a.ID, &a.Name, &a.Role, &a.Credits, &a.ServerLimit)
	if err != nil {
		return users.Account{}, err
	}

	return a, nil
}

func expectOneRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return users.ErrUserNotFound
	}

	return nil
}
