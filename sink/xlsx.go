package sink

import (
	"context"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/danthegoodman1/SEC13FHoldings/filing"
)

const SheetName = "13F"

// XLSX writes each record set to dir/<name>.xlsx on a single sheet.
type XLSX struct {
	dir string
}

func NewXLSX(dir string) (*XLSX, error) {
	if dir == "" {
		return nil, persistErr("creating", "xlsx sink", os.ErrInvalid)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, persistErr("creating", dir, err)
	}
	return &XLSX{dir: dir}, nil
}

func (s *XLSX) Write(_ context.Context, name string, rs *filing.RecordSet) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return persistErr("naming sheet for", name, err)
	}
	if err := setRow(f, 1, rs.Columns); err != nil {
		return persistErr("writing header for", name, err)
	}
	for i, r := range rs.Records {
		if err := setRow(f, i+2, r); err != nil {
			return persistErr("writing row for", name, err)
		}
	}

	path := filepath.Join(s.dir, name+".xlsx")
	if err := f.SaveAs(path); err != nil {
		return persistErr("saving", path, err)
	}
	return nil
}

func (s *XLSX) Close() error { return nil }

func setRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	vals := make([]interface{}, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return f.SetSheetRow(SheetName, cell, &vals)
}
