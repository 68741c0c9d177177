package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means a lookup or update matched zero rows.
	ErrNotFound = errors.New("user not found")
	// ErrInvalidQuery means the criteria were malformed, matched more than
	// one row, or a commit-time conflict occurred during an update.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidField means an update referenced a field users don't have
	// or one that cannot be changed.
	ErrInvalidField = errors.New("invalid user field")
)

// StorageError wraps an underlying persistence failure during create.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %v", e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Field names a column of the users table.
type Field string

const (
	FieldID             Field = "id"
	FieldEmail          Field = "email"
	FieldHashedPassword Field = "hashed_password"
	FieldSessionToken   Field = "session_token"
	FieldResetToken     Field = "reset_token"
)

var queryableFields = map[Field]bool{
	FieldID:             true,
	FieldEmail:          true,
	FieldHashedPassword: true,
	FieldSessionToken:   true,
	FieldResetToken:     true,
}

// The id is assigned by the store and immutable afterwards.
var updatableFields = map[Field]bool{
	FieldEmail:          true,
	FieldHashedPassword: true,
	FieldSessionToken:   true,
	FieldResetToken:     true,
}

// Criterion is a single field-equals-value constraint for FindUserBy.
type Criterion struct {
	field Field
	value any
}

func ByID(id int64) Criterion {
	return Criterion{field: FieldID, value: id}
}

func ByEmail(email string) Criterion {
	return Criterion{field: FieldEmail, value: email}
}

func BySessionToken(token string) Criterion {
	return Criterion{field: FieldSessionToken, value: token}
}

func ByResetToken(token string) Criterion {
	return Criterion{field: FieldResetToken, value: token}
}

// ByField builds a criterion from a raw field name. Unknown fields are
// rejected by FindUserBy with ErrInvalidQuery.
func ByField(field Field, value any) Criterion {
	return Criterion{field: field, value: value}
}

// Change is a single field assignment for UpdateUser.
type Change struct {
	field Field
	value any
}

func SetEmail(email string) Change {
	return Change{field: FieldEmail, value: email}
}

func SetHashedPassword(hash string) Change {
	return Change{field: FieldHashedPassword, value: hash}
}

func SetSessionToken(token string) Change {
	return Change{field: FieldSessionToken, value: token}
}

func ClearSessionToken() Change {
	return Change{field: FieldSessionToken, value: nil}
}

func SetResetToken(token string) Change {
	return Change{field: FieldResetToken, value: token}
}

func ClearResetToken() Change {
	return Change{field: FieldResetToken, value: nil}
}

// SetField builds a change from a raw field name. Unknown or immutable
// fields are rejected by UpdateUser with ErrInvalidField before any
// change is applied.
func SetField(field Field, value any) Change {
	return Change{field: field, value: value}
}
