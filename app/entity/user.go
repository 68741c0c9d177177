package entity

import (
	"database/sql"
)

// User is a row in the users table. SessionToken and ResetToken are
// nullable: a user without an active session or pending reset carries
// NULL in those columns.
type User struct {
	ID             int64
	Email          string
	HashedPassword string
	SessionToken   sql.NullString
	ResetToken     sql.NullString
}
