package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicate is returned when a write violates a unique index.
var ErrDuplicate = errors.New("duplicate record")

// ErrInUse is returned when a delete is blocked by referencing rows.
var ErrInUse = errors.New("record still referenced")

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrDuplicate
		case pgForeignKeyViolation:
			return ErrInUse
		}
	}
	return err
}

// validID reports whether id can be bound to a UUID column. Callers answer
// pgx.ErrNoRows for anything else so a malformed id reads as a missing row.
func validID(id string) bool {
	if len(id) != 36 && len(id) != 32 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

func validIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			out = append(out, id)
		}
	}
	return out
}

// idClause binds id against column, or matches nothing when id is malformed.
func idClause(column, id string, args *[]any) string {
	if !validID(id) {
		return "FALSE"
	}
	*args = append(*args, id)
	return fmt.Sprintf("%s=$%d", column, len(*args))
}
