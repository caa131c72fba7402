package scraping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yearPage = `<html><body>
<table class="other"><tr><td>ignore</td><td>1</td></tr></table>
<table class="ntable">
  <tr><th>月份</th><th>二手房</th><th>新房</th></tr>
  <tr><td>3月</td><td>7650元/㎡</td><td>9000</td></tr>
  <tr><td>1月</td><td>7812</td><td>9100</td></tr>
  <tr><td>2月</td><td>--</td><td>9050</td></tr>
  <tr><td>合计</td><td>7700</td></tr>
  <tr><td>only one cell</td></tr>
</table>
</body></html>`

func TestParseYearPage(t *testing.T) {
	rows, err := ParseYearPage([]byte(yearPage), "Nanning", 2015)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Month)
	assert.Equal(t, "7812", rows[0].Price.Decimal.String())
	assert.Equal(t, 3, rows[1].Month)
	assert.Equal(t, "7650", rows[1].Price.Decimal.String())
	assert.Equal(t, "Nanning", rows[1].CityName)
	assert.Equal(t, 2015, rows[1].Year)
}

func TestParseYearPageFallsBackToFirstTable(t *testing.T) {
	page := `<table><tr><td>month</td><td>price</td></tr><tr><td>12</td><td>8000</td></tr></table>`

	rows, err := ParseYearPage([]byte(page), "Beijing", 2020)
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, 12, rows[0].Month)
}

func TestParseYearPageNoTable(t *testing.T) {
	_, err := ParseYearPage([]byte(`<html><body><p>maintenance</p></body></html>`), "Beijing", 2020)
	assert.ErrorIs(t, err, ErrNoTable)
}

func TestParseYearPageRejectsOutOfRangeMonths(t *testing.T) {
	page := `<table class="ntable"><tr><th>m</th></tr><tr><td>13月</td><td>1</td></tr><tr><td>0月</td><td>1</td></tr></table>`

	rows, err := ParseYearPage([]byte(page), "Beijing", 2020)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
