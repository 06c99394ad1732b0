// Package filing parses 13F filings and extracts their information table.
package filing

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"

	"github.com/antchfx/xmlquery"
)

// A full submission text file wraps each XML document in <XML>...</XML>.
var xmlBlockRe = regexp.MustCompile(`(?is)<XML>(.*?)</XML>`)

// Document is a parsed filing. A submission with several embedded XML
// documents (primary document and information table) keeps one root per
// document, in file order.
type Document struct {
	roots []*xmlquery.Node
}

// Parse reads a raw filing. Bodies without <XML> blocks are parsed as a
// single XML document.
func Parse(raw []byte) (*Document, error) {
	blocks := xmlBlockRe.FindAllSubmatch(raw, -1)
	if len(blocks) == 0 {
		root, err := xmlquery.Parse(bytes.NewReader(bytes.TrimSpace(raw)))
		if err != nil {
			return nil, fmt.Errorf("parsing filing: %w", err)
		}
		return &Document{roots: []*xmlquery.Node{root}}, nil
	}

	doc := &Document{}
	for i, b := range blocks {
		root, err := xmlquery.Parse(bytes.NewReader(bytes.TrimSpace(b[1])))
		if err != nil {
			return nil, fmt.Errorf("parsing xml block %d: %w", i+1, err)
		}
		doc.roots = append(doc.roots, root)
	}
	return doc, nil
}

// ErrEmptyDocument is returned for a well-formed filing without holdings.
var ErrEmptyDocument = errors.New("filing has no holdings entries")

const entryXPath = "//*[local-name()='infoTable']"

// entries returns every holdings entry in document order.
func (d *Document) entries() []*xmlquery.Node {
	var out []*xmlquery.Node
	for _, root := range d.roots {
		out = append(out, xmlquery.Find(root, entryXPath)...)
	}
	return out
}

// Len reports the number of holdings entries.
func (d *Document) Len() int {
	return len(d.entries())
}
