package database

import (
	stderrors "errors"
	"strings"

	"github.com/lib/pq"

	"github.com/polisdoc/polisdoc-backend/pkg/errors"
)

// MapPQError converts a PostgreSQL error to an AppError.
// Returns nil if the error is not a pq.Error or has no specific mapping.
func MapPQError(err error) *errors.AppError {
	var pqErr *pq.Error
	if !stderrors.As(err, &pqErr) {
		return nil
	}

	code := string(pqErr.Code)
	switch {
	// undefined_table (42P01): auto_migrate is off and the schema was never applied
	case code == "42P01":
		return errors.ServiceUnavailable("audit log table does not exist").WithCause(err)

	// connection exceptions (08xxx), admin shutdown / cannot connect now (57P0x)
	case strings.HasPrefix(code, "08"), strings.HasPrefix(code, "57P0"):
		return errors.ServiceUnavailable("database unavailable").WithCause(err)

	// Not null violation (23502)
	case code == "23502":
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{
			col: "must not be empty",
		})

	default:
		return nil
	}
}
