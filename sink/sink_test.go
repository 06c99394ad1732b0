package sink

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/danthegoodman1/SEC13FHoldings/filing"
)

func sampleSet() *filing.RecordSet {
	return &filing.RecordSet{
		Columns: filing.Columns{"nameOfIssuer", "value", "shrsOrPrnAmt"},
		Records: []filing.Record{
			{"APPLE INC", "73667", "250866566"},
			{"BERKSHIRE HATHAWAY, INC", "983", filing.Placeholder},
		},
	}
}

func TestCSVWriter(t *testing.T) {
	var buf bytes.Buffer
	s, err := Open(context.Background(), Options{Kind: KindCSV, Stdout: &buf})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Write(context.Background(), "0000320193", sampleSet()))

	assert.Equal(t,
		"nameOfIssuer,value,shrsOrPrnAmt\nAPPLE INC,73667,250866566\n\"BERKSHIRE HATHAWAY, INC\",983,N/A\n",
		buf.String())
}

func TestCSVDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s, err := Open(context.Background(), Options{Kind: KindCSV, Dir: dir})
	require.NoError(t, err)

	require.NoError(t, s.Write(context.Background(), "0000320193", sampleSet()))

	b, err := os.ReadFile(filepath.Join(dir, "0000320193.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "nameOfIssuer,value,shrsOrPrnAmt\n")
}

func TestSQL_ReplacesTable(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "holdings.db")
	s, err := Open(ctx, Options{Kind: KindSQL, DatabaseURL: "sqlite://" + dbPath})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Write(ctx, "0000320193", sampleSet()))
	second := &filing.RecordSet{
		Columns: filing.Columns{"nameOfIssuer", "cusip"},
		Records: []filing.Record{{"MICROSOFT CORP", "594918104"}},
	}
	require.NoError(t, s.Write(ctx, "0000320193", second))

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "0000320193"`).Scan(&count))
	assert.Equal(t, 1, count)

	var idx int64
	var name, cusip string
	require.NoError(t, db.QueryRow(`SELECT "index", "nameOfIssuer", "cusip" FROM "0000320193"`).Scan(&idx, &name, &cusip))
	assert.Equal(t, int64(0), idx)
	assert.Equal(t, "MICROSOFT CORP", name)
	assert.Equal(t, "594918104", cusip)
}

func TestSQL_EmptyURL(t *testing.T) {
	_, err := Open(context.Background(), Options{Kind: KindSQL})
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestSQL_WriteAfterCloseIsPersistenceError(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQL(ctx, filepath.Join(t.TempDir(), "h.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	err = s.Write(ctx, "x", sampleSet())

	assert.ErrorIs(t, err, ErrPersistence)
}

func TestDialectFor(t *testing.T) {
	d, dsn := dialectFor("postgres://u:p@localhost/CoinLogic")
	assert.Equal(t, "pgx", d.driver)
	assert.Equal(t, "postgres://u:p@localhost/CoinLogic", dsn)

	d, dsn = dialectFor("sqlite:///tmp/x.db")
	assert.Equal(t, "sqlite", d.driver)
	assert.Equal(t, "/tmp/x.db", dsn)

	s := &SQL{dialect: postgres}
	assert.Equal(t, `INSERT INTO "t" ("index", "a", "b") VALUES ($1, $2, $3)`, s.insertSQL(`"t"`, filing.Columns{"a", "b"}))
}

func TestXLSX(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(context.Background(), Options{Kind: KindXLSX, Dir: dir})
	require.NoError(t, err)

	require.NoError(t, s.Write(context.Background(), "0000320193", sampleSet()))

	f, err := excelize.OpenFile(filepath.Join(dir, "0000320193.xlsx"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"nameOfIssuer", "value", "shrsOrPrnAmt"}, rows[0])
	assert.Equal(t, []string{"BERKSHIRE HATHAWAY, INC", "983", "N/A"}, rows[2])
}

func TestXLSX_RequiresDir(t *testing.T) {
	_, err := Open(context.Background(), Options{Kind: KindXLSX})
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestOpen_UnknownKind(t *testing.T) {
	_, err := Open(context.Background(), Options{Kind: "parquet"})
	assert.Error(t, err)
}
