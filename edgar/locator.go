// Package edgar navigates EDGAR pages to find 13F filings and filers.
package edgar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/danthegoodman1/SEC13FHoldings/filing"
)

const DefaultBaseURL = "https://www.sec.gov"

// ErrNotFound is returned when a navigation step cannot find the link it
// expects, usually because the identifier matches no 13F filer.
var ErrNotFound = errors.New("not found")

var txtLinkRe = regexp.MustCompile(`.*\.txt$`)

// Fetcher returns the raw bytes behind a url.
type Fetcher interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

type Locator struct {
	fetcher Fetcher
	base    *url.URL
}

func NewLocator(fetcher Fetcher, baseURL string) (*Locator, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	return &Locator{fetcher: fetcher, base: base}, nil
}

// Locate finds the latest 13F filing of cik and returns it parsed.
func (l *Locator) Locate(ctx context.Context, cik string) (*filing.Document, error) {
	indexURL, err := l.filingIndexURL(ctx, cik)
	if err != nil {
		return nil, err
	}
	fileURL, err := l.filingTextURL(ctx, indexURL)
	if err != nil {
		return nil, err
	}
	return l.filingDocument(ctx, fileURL)
}

// SearchURL is the company browse page listing 13F filings for cik.
func (l *Locator) SearchURL(cik string) string {
	u := l.base.ResolveReference(&url.URL{Path: "/cgi-bin/browse-edgar"})
	u.RawQuery = "action=getcompany&CIK=" + url.QueryEscape(cik) + "&type=13F&dateb=&owner=exclude&count=40"
	return u.String()
}

func (l *Locator) filingIndexURL(ctx context.Context, cik string) (string, error) {
	doc, err := l.fetchHTML(ctx, l.SearchURL(cik))
	if err != nil {
		return "", err
	}
	href, ok := doc.Find("a#documentsbutton").First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return "", fmt.Errorf("%w: no documents link for cik %s, the cik is probably invalid", ErrNotFound, cik)
	}
	return l.resolve(href)
}

func (l *Locator) filingTextURL(ctx context.Context, indexURL string) (string, error) {
	doc, err := l.fetchHTML(ctx, indexURL)
	if err != nil {
		return "", err
	}
	var href string
	doc.Find("a").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if h, ok := s.Attr("href"); ok && txtLinkRe.MatchString(strings.TrimSpace(s.Text())) {
			href = h
			return false
		}
		return true
	})
	if href == "" {
		return "", fmt.Errorf("%w: no .txt filing link on %s", ErrNotFound, indexURL)
	}
	return l.resolve(href)
}

func (l *Locator) filingDocument(ctx context.Context, fileURL string) (*filing.Document, error) {
	raw, err := l.fetcher.Download(ctx, fileURL)
	if err != nil {
		return nil, err
	}
	doc, err := filing.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fileURL, err)
	}
	log.Debug().Str("url", fileURL).Int("entries", doc.Len()).Msg("extracted filing")
	return doc, nil
}

func (l *Locator) fetchHTML(ctx context.Context, u string) (*goquery.Document, error) {
	body, err := l.fetcher.Download(ctx, u)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("reading html of %s: %w", u, err)
	}
	return doc, nil
}

func (l *Locator) resolve(href string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("%w: bad link %q: %v", ErrNotFound, href, err)
	}
	return l.base.ResolveReference(ref).String(), nil
}
