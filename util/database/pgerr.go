package database

import (
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation, optionally narrowed to a constraint name substring.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return false
	}
	if constraint == "" {
		return true
	}
	c := strings.ToLower(constraint)
	return strings.Contains(strings.ToLower(pgErr.ConstraintName), c) ||
		strings.Contains(strings.ToLower(pgErr.Message), c)
}
