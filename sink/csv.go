package sink

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/danthegoodman1/SEC13FHoldings/filing"
)

// CSV writes a header line followed by one line per record.
type CSV struct {
	dir string
	w   io.Writer
}

// NewCSVWriter streams every record set to w, one after the other.
func NewCSVWriter(w io.Writer) *CSV {
	if w == nil {
		w = os.Stdout
	}
	return &CSV{w: w}
}

// NewCSVDir writes each record set to dir/<name>.csv, truncating an
// existing file.
func NewCSVDir(dir string) (*CSV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, persistErr("creating", dir, err)
	}
	return &CSV{dir: dir}, nil
}

func (s *CSV) Write(_ context.Context, name string, rs *filing.RecordSet) error {
	if s.dir == "" {
		if err := writeCSV(s.w, rs); err != nil {
			return persistErr("writing csv", name, err)
		}
		return nil
	}

	path := filepath.Join(s.dir, name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return persistErr("creating", path, err)
	}
	if err := writeCSV(f, rs); err != nil {
		f.Close()
		return persistErr("writing", path, err)
	}
	if err := f.Close(); err != nil {
		return persistErr("closing", path, err)
	}
	return nil
}

func (s *CSV) Close() error { return nil }

func writeCSV(w io.Writer, rs *filing.RecordSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rs.Columns); err != nil {
		return err
	}
	for _, r := range rs.Records {
		if err := cw.Write(r); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
