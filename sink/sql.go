package sink

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // registers "sqlite"

	"github.com/danthegoodman1/SEC13FHoldings/filing"
)

// SQL replaces a table named after the identifier on every write.
type SQL struct {
	db      *sql.DB
	dialect dialect
}

type dialect struct {
	driver      string
	placeholder func(n int) string
}

var (
	postgres = dialect{driver: "pgx", placeholder: func(n int) string { return fmt.Sprintf("$%d", n) }}
	sqlite   = dialect{driver: "sqlite", placeholder: func(int) string { return "?" }}
)

// dialectFor picks the driver from the connection string: postgres urls go
// to pgx, everything else is treated as a SQLite path or file: uri.
func dialectFor(databaseURL string) (dialect, string) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgres, databaseURL
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return sqlite, strings.TrimPrefix(databaseURL, "sqlite://")
	}
	return sqlite, databaseURL
}

// OpenSQL opens and pings the database. The returned sink owns the
// connection pool until Close.
func OpenSQL(ctx context.Context, databaseURL string) (*SQL, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("%w: empty database url", ErrPersistence)
	}
	d, dsn := dialectFor(databaseURL)
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, persistErr("opening", d.driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, persistErr("connecting to", d.driver, err)
	}
	log.Info().Str("driver", d.driver).Msg("connected to database")
	return &SQL{db: db, dialect: d}, nil
}

func (s *SQL) Write(ctx context.Context, name string, rs *filing.RecordSet) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return persistErr("beginning transaction for", name, err)
	}
	defer tx.Rollback() //nolint:errcheck

	table := quoteIdent(name)
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return persistErr("dropping", name, err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(table, rs.Columns)); err != nil {
		return persistErr("creating", name, err)
	}

	stmt, err := tx.PrepareContext(ctx, s.insertSQL(table, rs.Columns))
	if err != nil {
		return persistErr("preparing insert for", name, err)
	}
	defer stmt.Close()

	args := make([]any, len(rs.Columns)+1)
	for i, r := range rs.Records {
		args[0] = int64(i)
		for j, v := range r {
			args[j+1] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return persistErr("inserting into", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return persistErr("committing", name, err)
	}
	log.Info().Str("table", name).Int("rows", len(rs.Records)).Msg("updated database")
	return nil
}

func (s *SQL) Close() error {
	return s.db.Close()
}

func createTableSQL(table string, cols filing.Columns) string {
	defs := make([]string, 0, len(cols)+1)
	defs = append(defs, `"index" BIGINT`)
	for _, c := range cols {
		defs = append(defs, quoteIdent(c)+" TEXT")
	}
	return "CREATE TABLE " + table + " (" + strings.Join(defs, ", ") + ")"
}

func (s *SQL) insertSQL(table string, cols filing.Columns) string {
	names := make([]string, 0, len(cols)+1)
	marks := make([]string, 0, len(cols)+1)
	names = append(names, `"index"`)
	marks = append(marks, s.dialect.placeholder(1))
	for i, c := range cols {
		names = append(names, quoteIdent(c))
		marks = append(marks, s.dialect.placeholder(i+2))
	}
	return "INSERT INTO " + table + " (" + strings.Join(names, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")"
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
