package scraping

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

var ErrUnexpectedStatus = errors.New("unexpected status code")

// Fetcher downloads yearly price pages from the price source site.
type Fetcher struct {
	client *resty.Client
}

func NewFetcher(baseURL, userAgent string, timeout time.Duration) *Fetcher {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("User-Agent", userAgent)
	client.SetTimeout(timeout)

	return &Fetcher{client: client}
}

// YearPage returns the raw HTML of one city's page for one year.
func (f *Fetcher) YearPage(code string, year int) ([]byte, error) {
	res, err := f.client.R().
		SetPathParams(map[string]string{
			"code": code,
			"year": fmt.Sprint(year),
		}).
		Get("/years/{code}/{year}/")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, res.StatusCode())
	}
	return res.Body(), nil
}
