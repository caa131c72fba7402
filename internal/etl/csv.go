// Package etl moves price rows between CSV files and the database: per-city
// crawl output, the merged monthly file and yearly files.
//
// Files carry no header row. Monthly files hold city_name,year,month,price
// and yearly files hold city_name,year,price,change_rate. An empty price or
// change rate is read as null. A leading UTF-8 byte order mark and a header
// row starting with city_name are tolerated on read.
package etl

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"housingprice/server/config"
	"housingprice/server/internal/models"
)

const cityFileSuffix = "_house_price.csv"

var bom = []byte{0xEF, 0xBB, 0xBF}

// CityFileName is the crawl output file name of a city.
func CityFileName(city string) string {
	return config.NormalizeCity(city) + cityFileSuffix
}

func WriteMonthly(w io.Writer, rows []models.MonthlyPrice) error {
	cw := csv.NewWriter(w)
	for _, r := range rows {
		record := []string{
			r.CityName,
			strconv.Itoa(r.Year),
			strconv.Itoa(r.Month),
			formatDecimal(r.Price),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteYearly(w io.Writer, rows []models.YearlyPrice) error {
	cw := csv.NewWriter(w)
	for _, r := range rows {
		record := []string{
			r.CityName,
			strconv.Itoa(r.Year),
			formatDecimal(r.Price),
			formatDecimal(r.ChangeRate),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCityFile writes one city's monthly rows to dir, replacing any earlier
// file, and returns the file path.
func WriteCityFile(dir, city string, rows []models.MonthlyPrice) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, CityFileName(city))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := WriteMonthly(w, rows); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, f.Close()
}

func ReadMonthly(r io.Reader) ([]models.MonthlyPrice, error) {
	records, err := readRecords(r, 4)
	if err != nil {
		return nil, err
	}

	rows := make([]models.MonthlyPrice, 0, len(records))
	for _, rec := range records {
		year, err := strconv.Atoi(rec.fields[1])
		if err != nil {
			return nil, rec.errorf("invalid year %q", rec.fields[1])
		}
		month, err := strconv.Atoi(rec.fields[2])
		if err != nil || month < 1 || month > 12 {
			return nil, rec.errorf("invalid month %q", rec.fields[2])
		}
		price, err := parseDecimal(rec.fields[3])
		if err != nil {
			return nil, rec.errorf("invalid price %q", rec.fields[3])
		}

		rows = append(rows, models.MonthlyPrice{
			CityName: rec.fields[0],
			Year:     year,
			Month:    month,
			Price:    price,
		})
	}
	return rows, nil
}

func ReadYearly(r io.Reader) ([]models.YearlyPrice, error) {
	records, err := readRecords(r, 4)
	if err != nil {
		return nil, err
	}

	rows := make([]models.YearlyPrice, 0, len(records))
	for _, rec := range records {
		year, err := strconv.Atoi(rec.fields[1])
		if err != nil {
			return nil, rec.errorf("invalid year %q", rec.fields[1])
		}
		price, err := parseDecimal(rec.fields[2])
		if err != nil {
			return nil, rec.errorf("invalid price %q", rec.fields[2])
		}
		rate, err := parseDecimal(rec.fields[3])
		if err != nil {
			return nil, rec.errorf("invalid change rate %q", rec.fields[3])
		}

		rows = append(rows, models.YearlyPrice{
			CityName:   rec.fields[0],
			Year:       year,
			Price:      price,
			ChangeRate: rate,
		})
	}
	return rows, nil
}

func ReadMonthlyFile(path string) ([]models.MonthlyPrice, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := ReadMonthly(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

func ReadYearlyFile(path string) ([]models.YearlyPrice, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := ReadYearly(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

type record struct {
	line   int
	fields []string
}

func (r record) errorf(format string, args ...any) error {
	return fmt.Errorf("line %d: %s", r.line, fmt.Sprintf(format, args...))
}

func readRecords(r io.Reader, width int) ([]record, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(bom)); err == nil && bytes.Equal(head, bom) {
		br.Discard(len(bom))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = width
	cr.TrimLeadingSpace = true

	var records []record
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		if line == 1 && strings.EqualFold(strings.TrimSpace(fields[0]), "city_name") {
			continue
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		records = append(records, record{line: line, fields: fields})
	}
	return records, nil
}

func parseDecimal(s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

func formatDecimal(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
