// Package sink persists extracted record sets.
package sink

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/danthegoodman1/SEC13FHoldings/filing"
)

// ErrPersistence wraps every failure to write a record set.
var ErrPersistence = errors.New("persistence error")

// Sink receives one record set per identifier. A write to an existing name
// replaces whatever was stored under it.
type Sink interface {
	Write(ctx context.Context, name string, rs *filing.RecordSet) error
	Close() error
}

const (
	KindCSV  = "csv"
	KindSQL  = "sql"
	KindXLSX = "xlsx"
)

type Options struct {
	Kind        string
	DatabaseURL string
	// Dir receives one file per identifier. An empty Dir sends CSV output to
	// Stdout.
	Dir    string
	Stdout io.Writer
}

// Open creates the sink described by opts.
func Open(ctx context.Context, opts Options) (Sink, error) {
	switch opts.Kind {
	case KindSQL:
		return OpenSQL(ctx, opts.DatabaseURL)
	case KindXLSX:
		return NewXLSX(opts.Dir)
	case KindCSV, "":
		if opts.Dir == "" {
			return NewCSVWriter(opts.Stdout), nil
		}
		return NewCSVDir(opts.Dir)
	}
	return nil, fmt.Errorf("unknown sink %q", opts.Kind)
}

func persistErr(op, name string, err error) error {
	return fmt.Errorf("%w: %s %s: %v", ErrPersistence, op, name, err)
}
