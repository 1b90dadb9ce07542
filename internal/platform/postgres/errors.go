package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jvillar/taskdeck-api/internal/store"
)

// Error codes from the PostgreSQL manual, class 23 (integrity
// constraint violation). These are the only ones the tasks schema can
// produce on bad input.
const (
	checkViolationCode   = "23514"
	notNullViolationCode = "23502"
)

// mapError classifies a driver error for the given operation. Constraint
// violations mean the data was invalid; anything else at this level is an
// infrastructure failure, reported through the unavailability sentinel so
// callers can distinguish it from bad input.
func mapError(operation string, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case checkViolationCode, notNullViolationCode:
			return store.NewStoreError(store.ErrInvalidEntity, "task", operation, err)
		}
	}

	return store.NewStoreError(store.ErrBackendUnavailable, "task", operation, err)
}
