package repository

import (
	"errors"
	"fmt"

	"github.com/LavaJover/shvark-binary-engine/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

// classify marks serialization failures and deadlocks as retryable.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return fmt.Errorf("%w: %v", domain.ErrTransient, err)
		}
	}
	return err
}
