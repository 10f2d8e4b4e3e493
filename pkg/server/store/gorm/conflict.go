package gorm

import (
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/lib/pq"

	"github.com/coursewarehq/courseware/pkg/server/store"
)

// uniqueViolation is the Postgres error code for a violated UNIQUE
// constraint. The pre-insert duplicate check is only a fast path; two
// racing creates can both pass it, and this translation is what turns
// the losing insert into the same conflict outcome.
const uniqueViolation = "23505"

func translateConflict(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return store.ErrConflict
	}

	// lib/pq surfaces the same code when the connection came through
	// the database/sql pq driver (mig-era deployments and tests).
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return store.ErrConflict
	}

	return fmt.Errorf("%s: %w", op, err)
}
