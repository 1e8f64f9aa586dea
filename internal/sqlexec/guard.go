package sqlexec

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotSelect is returned for statements that are not read queries.
	ErrNotSelect = errors.New("only SELECT statements are allowed")
	// ErrMultipleStatements is returned when more than one statement is given.
	ErrMultipleStatements = errors.New("only a single statement is allowed")
	// ErrNoDSN is returned when no database connection is configured.
	ErrNoDSN = errors.New("no database connection configured")

	reSelect = regexp.MustCompile(`(?i)\bselect\b`)
	reLimit  = regexp.MustCompile(`(?i)\blimit\b`)
)

// PrepareReadOnly validates sql as a single read query and appends
// "LIMIT limit" when it has none.
func PrepareReadOnly(sql string, limit int) (string, error) {
	stmt := strings.TrimSpace(sql)
	stmt = strings.TrimRight(stmt, "; \t\n")
	if stmt == "" {
		return "", errors.New("empty statement")
	}
	if hasStatementBreak(stmt) {
		return "", ErrMultipleStatements
	}
	if !reSelect.MatchString(stmt) {
		return "", ErrNotSelect
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if !reLimit.MatchString(stmt) {
		stmt = fmt.Sprintf("%s LIMIT %d", stmt, limit)
	}
	return stmt, nil
}

// hasStatementBreak reports whether stmt contains a ';' outside quoted
// strings and identifiers.
func hasStatementBreak(stmt string) bool {
	var quote rune
	for _, c := range stmt {
		switch {
		case quote != 0:
			// A doubled quote ('' or "") toggles out and straight back in.
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == ';':
			return true
		}
	}
	return false
}

// DSNSource loads a DSN stored outside the environment (the keychain).
type DSNSource func() (string, error)

// ResolveDSN returns the first DSN found in SQLAGENT_DSN, DATABASE_URL or
// stored, and where it came from. The DSN is validated by pgx.
func ResolveDSN(stored DSNSource) (dsn, origin string, err error) {
	for _, key := range []string{"SQLAGENT_DSN", "DATABASE_URL"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			dsn, origin = v, key
			break
		}
	}
	if dsn == "" && stored != nil {
		if v, serr := stored(); serr == nil && strings.TrimSpace(v) != "" {
			dsn, origin = strings.TrimSpace(v), "keychain"
		}
	}
	if dsn == "" {
		return "", "", ErrNoDSN
	}
	if _, err := pgxpool.ParseConfig(dsn); err != nil {
		return "", origin, fmt.Errorf("invalid DSN from %s: %w", origin, err)
	}
	return dsn, origin, nil
}

// DatabaseName returns the database a DSN points at, or "" when unknown.
func DatabaseName(dsn string) string {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return ""
	}
	return cfg.ConnConfig.Database
}
