package edgar_client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"scorecardbackend/types"

	"github.com/PuerkitoBio/goquery"
)

var HTTPClient = &http.Client{
	Timeout: time.Second * 30,
}

const browseURL = "https://www.sec.gov/cgi-bin/browse-edgar"

// userAgent identifies the caller to the SEC, which rejects anonymous
// clients.
func userAgent() string {
	if v := os.Getenv("EDGAR_USER_AGENT"); v != "" {
		return v
	}
	return "scorecardbackend admin@scorecardbackend.example"
}

// GetRecentFilings scrapes the company's recent filings from the EDGAR
// browse page. formType narrows the results ("10-K", "10-Q", ...); empty
// returns everything.
func GetRecentFilings(ctx context.Context, symbol, formType string, limit int) ([]types.Filing, error) {
	query := url.Values{}
	query.Set("action", "getcompany")
	query.Set("company", symbol)
	query.Set("type", formType)
	query.Set("owner", "include")
	query.Set("count", fmt.Sprintf("%d", limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, browseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent())

	resp, err := HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("edgar: unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	filings := []types.Filing{}
	doc.Find("table.tableFile2 tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}
		filing := types.Filing{
			Form:        cells.Eq(0).Text(),
			Description: cells.Eq(2).Text(),
			FilingDate:  cells.Eq(3).Text(),
		}
		if href, ok := cells.Eq(1).Find("a").First().Attr("href"); ok {
			filing.URL = "https://www.sec.gov" + href
		}
		if filing.Form != "" {
			filings = append(filings, filing)
		}
	})
	return filings, nil
}
