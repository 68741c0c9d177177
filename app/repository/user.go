package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/vibast-solutions/ms-go-users/app/entity"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const createUsersTable = `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL CHECK (email <> ''),
		hashed_password TEXT NOT NULL CHECK (hashed_password <> ''),
		session_token TEXT,
		reset_token TEXT
	)
`

// UserStore persists User entities in a single SQLite file. It owns the
// database handle for its whole lifetime; writes are serialized through a
// mutex since the backing store has a single writer.
type UserStore struct {
	db *sql.DB
	mu sync.Mutex
}

// Open connects to the SQLite database at path and ensures the users
// table exists. When resetOnStart is true the table is dropped first,
// discarding every previously stored user.
func Open(path string, resetOnStart bool) (*UserStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StorageError{Err: err}
	}
	// One connection: the store holds a single session handle.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &StorageError{Err: err}
	}

	if resetOnStart {
		logrus.WithField("path", path).Warn("Resetting users table, existing rows are dropped")
		if _, err := db.Exec(`DROP TABLE IF EXISTS users`); err != nil {
			db.Close()
			return nil, &StorageError{Err: err}
		}
	}
	if _, err := db.Exec(createUsersTable); err != nil {
		db.Close()
		return nil, &StorageError{Err: err}
	}

	return NewUserStore(db), nil
}

// NewUserStore wraps an already-open handle whose schema is in place.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Close() error {
	return s.db.Close()
}

// AddUser inserts a new user and returns the entity with its assigned id.
// Any persistence failure rolls back the transaction and surfaces a
// *StorageError wrapping the cause.
func (s *UserStore) AddUser(ctx context.Context, email, hashedPassword string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &StorageError{Err: err}
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO users (email, hashed_password) VALUES (?, ?)`,
		email, hashedPassword,
	)
	if err != nil {
		_ = tx.Rollback()
		return nil, &StorageError{Err: err}
	}

	id, err := result.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return nil, &StorageError{Err: err}
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return nil, &StorageError{Err: err}
	}

	return &entity.User{
		ID:             id,
		Email:          email,
		HashedPassword: hashedPassword,
	}, nil
}

// FindUserBy returns the unique user matching every criterion. Zero
// matches yield ErrNotFound; unknown fields, empty criteria, or more than
// one match yield ErrInvalidQuery.
func (s *UserStore) FindUserBy(ctx context.Context, criteria ...Criterion) (*entity.User, error) {
	if len(criteria) == 0 {
		return nil, fmt.Errorf("%w: no criteria given", ErrInvalidQuery)
	}

	where := make([]string, 0, len(criteria))
	args := make([]any, 0, len(criteria))
	for _, c := range criteria {
		if !queryableFields[c.field] {
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidQuery, string(c.field))
		}
		where = append(where, string(c.field)+" = ?")
		args = append(args, c.value)
	}

	// LIMIT 2 so an ambiguous match is detectable without scanning the table.
	query := `
		SELECT id, email, hashed_password, session_token, reset_token
		FROM users WHERE ` + strings.Join(where, " AND ") + ` LIMIT 2`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
		}
		return nil, ErrNotFound
	}

	user := &entity.User{}
	if err := rows.Scan(
		&user.ID,
		&user.Email,
		&user.HashedPassword,
		&user.SessionToken,
		&user.ResetToken,
	); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	if rows.Next() {
		return nil, fmt.Errorf("%w: criteria match more than one user", ErrInvalidQuery)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	return user, nil
}

// UpdateUser applies the given changes to the user with that id. The
// whole change set is validated before anything is written: an unknown or
// immutable field fails with ErrInvalidField and mutates nothing. A
// missing id fails with ErrNotFound. All changes are applied and
// committed in one transaction; a commit failure rolls back and surfaces
// ErrInvalidQuery.
func (s *UserStore) UpdateUser(ctx context.Context, id int64, changes ...Change) error {
	for _, c := range changes {
		if !updatableFields[c.field] {
			return fmt.Errorf("%w: %q", ErrInvalidField, string(c.field))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.FindUserBy(ctx, ByID(id)); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: user with id %d", ErrNotFound, id)
		}
		return err
	}

	if len(changes) == 0 {
		return nil
	}

	assignments := make([]string, 0, len(changes))
	args := make([]any, 0, len(changes)+1)
	for _, c := range changes {
		assignments = append(assignments, string(c.field)+" = ?")
		args = append(args, c.value)
	}
	args = append(args, id)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	query := `UPDATE users SET ` + strings.Join(assignments, ", ") + ` WHERE id = ?`
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	return nil
}
