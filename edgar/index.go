package edgar

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/danthegoodman1/SEC13FHoldings/companies"
)

const dailyIndexPath = "/Archives/edgar/daily-index/%d/QTR%d/"

// IndexRow is one line of an EDGAR master index file.
type IndexRow struct {
	CIK             string
	CompanyName     string
	FormType        string
	DateFiled       string
	FileName        string
	AccessionNumber string
}

// Index lists filings from the EDGAR daily index.
type Index struct {
	fetcher Fetcher
	base    *url.URL
}

func NewIndex(fetcher Fetcher, baseURL string) (*Index, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	return &Index{fetcher: fetcher, base: base}, nil
}

// QuarterFilings returns every filing listed in the master files of the
// given quarter.
func (x *Index) QuarterFilings(ctx context.Context, year, quarter int) ([]*IndexRow, error) {
	if quarter < 1 || quarter > 4 {
		return nil, fmt.Errorf("quarter must be between 1 and 4, got %d", quarter)
	}
	listing := x.base.ResolveReference(&url.URL{Path: fmt.Sprintf(dailyIndexPath, year, quarter)})

	qtr, err := x.fetcher.Download(ctx, listing.String())
	if err != nil {
		return nil, fmt.Errorf("getting quarter listing: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(qtr))
	if err != nil {
		return nil, fmt.Errorf("reading the master link html: %w", err)
	}

	masterFiles := []string{}
	doc.Find("a").Each(func(i int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || !strings.HasPrefix(strings.TrimSpace(s.Text()), "master.") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			log.Warn().Str("href", href).Msg("skipping unparseable master file link")
			return
		}
		masterFiles = append(masterFiles, listing.ResolveReference(ref).String())
	})

	log.Info().Int("count", len(masterFiles)).Int("year", year).Int("quarter", quarter).Msg("got master files")

	filings := []*IndexRow{}
	for _, masterFile := range masterFiles {
		mf, err := x.fetcher.Download(ctx, masterFile)
		if err != nil {
			return nil, fmt.Errorf("downloading master file %s: %w", masterFile, err)
		}
		filings = append(filings, ParseMasterIndex(mf)...)
	}

	return filings, nil
}

// ParseMasterIndex reads the pipe-delimited rows of a master index file,
// skipping its preamble, header and any malformed line.
func ParseMasterIndex(fileContent []byte) []*IndexRow {
	resp := []*IndexRow{}

	for _, row := range strings.Split(string(fileContent), "\n") {
		row = strings.TrimRight(row, "\r")
		if row == "" {
			continue
		}
		parts := strings.Split(row, "|")
		if len(parts) != 5 {
			if strings.Contains(row, "|") {
				log.Debug().Str("row", row).Msg("row did not have correct amount of parts")
			}
			continue
		}
		if parts[0] == "CIK" {
			continue
		}

		accessionNumber := strings.Split(parts[4], ".txt")[0]
		split := strings.Split(accessionNumber, "/")
		accessionNumber = split[len(split)-1]
		accessionNumber = strings.ReplaceAll(accessionNumber, "-", "")

		resp = append(resp, &IndexRow{
			CIK:             parts[0],
			CompanyName:     parts[1],
			FormType:        parts[2],
			DateFiled:       parts[3],
			FileName:        parts[4],
			AccessionNumber: accessionNumber,
		})
	}

	return resp
}

// Filers13F keeps the 13F-HR and 13F-HR/A filers, one entry per CIK in
// first-seen order.
func Filers13F(rows []*IndexRow) []companies.Company {
	rows = lo.Filter(rows, func(v *IndexRow, i int) bool {
		return v.FormType == "13F-HR" || v.FormType == "13F-HR/A"
	})
	rows = lo.UniqBy(rows, func(v *IndexRow) string {
		return v.CIK
	})
	return lo.Map(rows, func(v *IndexRow, i int) companies.Company {
		return companies.Company{Name: strings.TrimSpace(v.CompanyName), CIK: v.CIK}
	})
}
