package scraping

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housingprice/server/config"
	"housingprice/server/internal/queue"
)

func page(months ...int) string {
	body := `<table class="ntable"><tr><th>月份</th><th>价格</th></tr>`
	for _, m := range months {
		body += fmt.Sprintf("<tr><td>%d月</td><td>%d</td></tr>", m, 1000*m)
	}
	return body + "</table>"
}

type recorder struct {
	mu    sync.Mutex
	paths []string
	agent string
}

func newSourceServer(t *testing.T, rec *recorder) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.mu.Lock()
		rec.paths = append(rec.paths, r.URL.Path)
		rec.agent = r.Header.Get("User-Agent")
		rec.mu.Unlock()

		switch r.URL.Path {
		case "/years/108/2015/":
			io.WriteString(w, page(2, 1))
		case "/years/108/2016/":
			w.WriteHeader(http.StatusNotFound)
		case "/years/108/2017/":
			io.WriteString(w, page(1))
		case "/years/1/2015/", "/years/1/2016/", "/years/1/2017/":
			io.WriteString(w, "<p>no table</p>")
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestCrawler(baseURL string) (*Crawler, *[]time.Duration) {
	cfg := &config.Config{}
	cfg.Scraper.BaseURL = baseURL
	cfg.Scraper.UserAgent = "housingctl-test"
	cfg.Scraper.Timeout = 2 * time.Second
	cfg.Scraper.Delay = time.Second
	cfg.Scraper.StartYear = 2015
	cfg.Scraper.EndYear = 2017

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	crawler := NewCrawler(cfg, logger)
	var sleeps []time.Duration
	crawler.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }
	return crawler, &sleeps
}

func TestFetcherYearPage(t *testing.T) {
	rec := &recorder{}
	server := newSourceServer(t, rec)
	fetcher := NewFetcher(server.URL, "agent/1.0", time.Second)

	body, err := fetcher.YearPage("108", 2015)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ntable")
	assert.Equal(t, "agent/1.0", rec.agent)

	_, err = fetcher.YearPage("108", 2016)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestCrawlCitySkipsFailedYears(t *testing.T) {
	rec := &recorder{}
	crawler, sleeps := newTestCrawler(newSourceServer(t, rec).URL)

	rows := crawler.CrawlCity(config.City{Code: "108", Name: "Nanning"})

	require.Len(t, rows, 3)
	assert.Equal(t, 2015, rows[0].Year)
	assert.Equal(t, 1, rows[0].Month)
	assert.Equal(t, 2, rows[1].Month)
	assert.Equal(t, 2017, rows[2].Year)
	assert.Equal(t, []string{"/years/108/2015/", "/years/108/2016/", "/years/108/2017/"}, rec.paths)
	assert.Equal(t, []time.Duration{time.Second, time.Second, time.Second}, *sleeps)
}

func TestCrawlerRun(t *testing.T) {
	rec := &recorder{}
	crawler, _ := newTestCrawler(newSourceServer(t, rec).URL)

	q := queue.NewPriceQueue(4, logrus.New())
	var batches []queue.CityBatch
	q.Subscribe(func(b queue.CityBatch) error {
		batches = append(batches, b)
		return nil
	})
	q.Start()

	total, err := crawler.Run([]config.City{
		{Code: "108", Name: "Nanning"},
		{Code: "1", Name: "Beijing"},
	}, q)
	require.NoError(t, err)
	require.NoError(t, q.Close())

	assert.Equal(t, 3, total)
	require.Len(t, batches, 2)
	assert.Equal(t, "Nanning", batches[0].City)
	assert.Len(t, batches[0].Prices, 3)
	assert.Equal(t, "Beijing", batches[1].City)
	assert.Empty(t, batches[1].Prices)
	assert.Len(t, rec.paths, 6)
}

func TestCrawlerRunClosedQueue(t *testing.T) {
	rec := &recorder{}
	crawler, _ := newTestCrawler(newSourceServer(t, rec).URL)

	q := queue.NewPriceQueue(1, logrus.New())
	q.Close()

	_, err := crawler.Run([]config.City{{Code: "108", Name: "Nanning"}}, q)
	assert.ErrorIs(t, err, queue.ErrQueueClosed)
}
