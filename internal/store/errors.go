package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"chapterpress/internal/content"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation. The only
// unique indexes in the schema are the slug indexes.
const uniqueViolation = "23505"

// translate maps driver errors to content sentinels.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return content.ErrDuplicateSlug
	}
	return err
}
