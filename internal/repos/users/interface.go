package users

import (
	"context"
	"database/sql"
	"errors"
)

var ErrUserNotFound = errors.New("user not found")

type Role string

const (
	RoleMember Role = "member"
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

type Account struct {
	ID          uint64
	Name        string
	Role        Role
	Credits     int64
	ServerLimit int64
}

type Users interface {
	Exists(tx *sql.Tx, userID uint64) error
	Get(ctx context.Context, userID uint64) (Account, error)
	LockAndGet(tx *sql.Tx, userID uint64) (Account, error)
	IncreaseCredits(tx *sql.Tx, userID uint64, amount int64) error
	IncreaseServerLimit(tx *sql.Tx, userID uint64, amount int64) error
	// RaiseServerLimit sets server_limit to floor when it is currently lower.
	RaiseServerLimit(tx *sql.Tx, userID uint64, floor int64) (bool, error)
	// PromoteRole moves the user from one role to another; false when the
	// user did not hold the from role.
	PromoteRole(tx *sql.Tx, userID uint64, from, to Role) (bool, error)
}
