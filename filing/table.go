package filing

import (
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/samber/lo"
)

// Placeholder fills a column an entry does not carry.
const Placeholder = "N/A"

// Columns is the ordered header of a RecordSet.
type Columns []string

// Record is one holdings entry, aligned positionally with Columns.
type Record []string

type RecordSet struct {
	Columns Columns
	Records []Record
}

// Columns returns the field names of the widest holdings entry, in the order
// they appear in it. Fields that only occur in narrower entries are not
// included.
func (d *Document) Columns() (Columns, error) {
	entries := d.entries()
	if len(entries) == 0 {
		return nil, ErrEmptyDocument
	}

	var widest Columns
	for _, entry := range entries {
		var names Columns
		for _, n := range xmlquery.Find(entry, ".//*") {
			if isLeaf(n) && strings.TrimSpace(n.InnerText()) != "" && !lo.Contains(names, n.Data) {
				names = append(names, n.Data)
			}
		}
		if len(names) > len(widest) {
			widest = names
		}
	}
	return widest, nil
}

// Rows returns one Record per holdings entry in document order.
func (d *Document) Rows(cols Columns) []Record {
	entries := d.entries()
	rows := make([]Record, 0, len(entries))
	for _, entry := range entries {
		row := make(Record, len(cols))
		for i, col := range cols {
			n := findField(entry, col)
			if n == nil {
				row[i] = Placeholder
				continue
			}
			row[i] = n.InnerText()
		}
		rows = append(rows, row)
	}
	return rows
}

// Extract builds the RecordSet of a filing.
func Extract(d *Document) (*RecordSet, error) {
	cols, err := d.Columns()
	if err != nil {
		return nil, err
	}
	return &RecordSet{Columns: cols, Records: d.Rows(cols)}, nil
}

// findField returns the first descendant of entry named name, ignoring any
// namespace prefix. Names that cannot be written as an XPath literal never
// match.
func findField(entry *xmlquery.Node, name string) *xmlquery.Node {
	if strings.Contains(name, "'") {
		return nil
	}
	n, err := xmlquery.Query(entry, ".//*[local-name()='"+name+"']")
	if err != nil {
		return nil
	}
	return n
}

func isLeaf(n *xmlquery.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			return false
		}
	}
	return true
}
