// Package companies reads and writes the "Display Name: Identifier" list
// that drives batch runs.
package companies

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/lo"
)

const separator = ": "

type Company struct {
	Name string
	CIK  string
}

func (c Company) String() string {
	return c.Name + separator + c.CIK
}

// Load parses the companies file at path.
func Load(path string) ([]Company, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening companies file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads one "Name: CIK" pair per line. Blank lines are skipped and a
// repeated CIK keeps its first entry.
func Parse(r io.Reader) ([]Company, error) {
	var out []Company
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		name, cik, ok := strings.Cut(text, separator)
		if !ok {
			return nil, fmt.Errorf("line %d: expected %q separator in %q", line, separator, strings.TrimSpace(text))
		}
		cik = strings.TrimSpace(cik)
		if cik == "" {
			return nil, fmt.Errorf("line %d: empty identifier", line)
		}
		out = append(out, Company{Name: strings.TrimSpace(name), CIK: cik})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading companies: %w", err)
	}
	return lo.UniqBy(out, func(c Company) string { return c.CIK }), nil
}

// Write emits companies in the format Parse reads.
func Write(w io.Writer, list []Company) error {
	bw := bufio.NewWriter(w)
	for _, c := range list {
		if _, err := fmt.Fprintln(bw, c.String()); err != nil {
			return err
		}
	}
	return bw.Flush()
}
