// Package scraper drives filing discovery, extraction and persistence for
// one identifier at a time.
package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog/log"

	"github.com/danthegoodman1/SEC13FHoldings/companies"
	"github.com/danthegoodman1/SEC13FHoldings/filing"
	"github.com/danthegoodman1/SEC13FHoldings/sink"
)

// Locator finds and parses the latest 13F filing of an identifier.
type Locator interface {
	Locate(ctx context.Context, cik string) (*filing.Document, error)
}

type Scraper struct {
	locator Locator
	sink    sink.Sink
}

// New returns a Scraper writing into s. The caller keeps ownership of s and
// closes it after the last Scrape or Batch.
func New(locator Locator, s sink.Sink) *Scraper {
	return &Scraper{locator: locator, sink: s}
}

// Scrape locates, extracts and writes the holdings of cik.
func (s *Scraper) Scrape(ctx context.Context, cik string) (*filing.RecordSet, error) {
	start := time.Now()
	logger := log.With().Str("cik", cik).Logger()
	logger.Info().Msg("extracting 13F")

	doc, err := s.locator.Locate(ctx, cik)
	if err != nil {
		return nil, fmt.Errorf("cik %s: %w", cik, err)
	}

	rs, err := filing.Extract(doc)
	if err != nil {
		return nil, fmt.Errorf("cik %s: %w", cik, err)
	}
	if e := logger.Debug(); e.Enabled() {
		e.Strs("columns", rs.Columns).Msg("extracted rows\n" + spew.Sdump(rs.Records))
	}

	if err := s.sink.Write(ctx, cik, rs); err != nil {
		return nil, fmt.Errorf("cik %s: %w", cik, err)
	}

	logger.Info().Int("rows", len(rs.Records)).Int("columns", len(rs.Columns)).Dur("elapsed", time.Since(start)).Msg("file extraction complete")
	return rs, nil
}

type Failure struct {
	Company companies.Company
	Err     error
}

// Report summarises a batch run.
type Report struct {
	Succeeded []companies.Company
	Failed    []Failure
}

// Batch scrapes every company in order. A failing company is logged and
// recorded in the report; the batch carries on with the next one. Only a
// cancelled ctx stops the loop early.
func (s *Scraper) Batch(ctx context.Context, list []companies.Company) Report {
	var report Report
	for _, c := range list {
		if err := ctx.Err(); err != nil {
			report.Failed = append(report.Failed, Failure{Company: c, Err: err})
			continue
		}
		if _, err := s.Scrape(ctx, c.CIK); err != nil {
			log.Error().Err(err).Str("company", c.Name).Str("cik", c.CIK).Msg("skipping company")
			report.Failed = append(report.Failed, Failure{Company: c, Err: err})
			continue
		}
		report.Succeeded = append(report.Succeeded, c)
	}
	log.Info().Int("succeeded", len(report.Succeeded)).Int("failed", len(report.Failed)).Msg("batch complete")
	return report
}
