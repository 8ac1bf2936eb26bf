package fmp_client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"
)

// HTTPClient is shared across all endpoint calls. The generous timeout
// matches how slow the provider gets under load.
var HTTPClient = &http.Client{
	Timeout: time.Second * 90,
}

const defaultBaseURL = "https://financialmodelingprep.com/api/v3"

func baseURL() string {
	if v := os.Getenv("FMP_BASE_URL"); v != "" {
		return v
	}
	return defaultBaseURL
}

func apiKey() string {
	return os.Getenv("FMP_API_KEY")
}

func getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("apikey", apiKey())

	endpoint := baseURL() + "/" + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fmp %s: unexpected status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func limitQuery(limit int) url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	return q
}
