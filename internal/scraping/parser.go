package scraping

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"housingprice/server/internal/models"
)

var ErrNoTable = errors.New("no price table found")

var (
	monthPattern = regexp.MustCompile(`(\d+)月?`)
	pricePattern = regexp.MustCompile(`(\d+)`)
)

// ParseYearPage extracts the monthly second-hand prices from a yearly page.
// The first cell of each row holds the month and the second the price; only
// the leading run of digits of each is used. The header row is skipped and
// rows come back ordered by month.
func ParseYearPage(body []byte, city string, year int) ([]models.MonthlyPrice, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	table := doc.Find("table.ntable").First()
	if table.Length() == 0 {
		table = doc.Find("table").First()
	}
	if table.Length() == 0 {
		return nil, ErrNoTable
	}

	var prices []models.MonthlyPrice
	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		if i == 0 {
			return
		}
		cells := tr.Find("td")
		if cells.Length() < 2 {
			return
		}

		month, ok := firstNumber(monthPattern, cells.Eq(0).Text())
		if !ok || month < 1 || month > 12 {
			return
		}
		price, ok := firstNumber(pricePattern, cells.Eq(1).Text())
		if !ok {
			return
		}

		prices = append(prices, models.MonthlyPrice{
			CityName: city,
			Year:     year,
			Month:    month,
			Price:    decimal.NewNullDecimal(decimal.NewFromInt(int64(price))),
		})
	})

	sort.SliceStable(prices, func(i, j int) bool {
		return prices[i].Month < prices[j].Month
	})
	return prices, nil
}

func firstNumber(re *regexp.Regexp, text string) (int, bool) {
	m := re.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
