package store

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound signals a row that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate signals a unique-constraint violation, e.g. a taken
	// email or a second vote on the same post.
	ErrDuplicate = errors.New("already exists")
	// ErrMissingReferent signals a foreign-key violation: the row being
	// written points at an entity that does not exist.
	ErrMissingReferent = errors.New("referenced row does not exist")
)

const (
	pgUniqueViolation           = "23505"
	pgForeignKeyViolation       = "23503"
	pgInvalidTextRepresentation = "22P02"
)

// invalidID reports ids that are not syntactically valid UUIDs. Postgres
// rejects such values with a cast error before comparing them to any
// column, so they can never name a row.
func invalidID(ids ...string) bool {
	for _, id := range ids {
		if uuid.Validate(id) != nil {
			return true
		}
	}
	return false
}

// translate maps driver-level errors onto the store's error kinds so raw
// pgx errors never cross the package boundary.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrDuplicate
		case pgForeignKeyViolation:
			return ErrMissingReferent
		case pgInvalidTextRepresentation:
			// A parameter that cannot be cast to the column type, such
			// as a malformed uuid, matches no row.
			return ErrNotFound
		}
	}
	return err
}
