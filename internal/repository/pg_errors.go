package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/civicdesk/issue-admin/pkg/util/errorutil"
)

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// mapPgError turns constraint violations into domain errors.
func mapPgError(err error, resource string, details map[string]any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, details)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return apperrors.NewValidationError("referenced record does not exist", mergeDetails(details, "constraint", pgErr.ConstraintName))
		case pgUniqueViolation:
			return apperrors.NewConflict(resource+" already exists", mergeDetails(details, "constraint", pgErr.ConstraintName))
		}
	}
	return err
}

func mergeDetails(details map[string]any, key string, value any) map[string]any {
	out := make(map[string]any, len(details)+1)
	for k, v := range details {
		out[k] = v
	}
	out[key] = value
	return out
}
