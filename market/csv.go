package market

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// DateLayout is the calendar date format used by daily CSVs and config.
const DateLayout = "2006-01-02"

// LoadCSV reads a daily bar CSV in the usual Yahoo Finance export layout:
//
//	Date,Open,High,Low,Close,Adj Close,Volume
//
// Columns are matched by header name, only Date and Close are required.
// Bars are kept when their date is within [from, to); a zero bound is open.
// Rows with an empty or "null" close (exchange holidays in Yahoo exports) are
// skipped. Duplicate dates keep the first row.
func LoadCSV(path, instrument string, from, to time.Time) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := ReadCSV(f, instrument, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Source = path
	return s, nil
}

// ReadCSV is LoadCSV over an arbitrary reader.
func ReadCSV(r io.Reader, instrument string, from, to time.Time) (*Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("empty csv")
	}
	if err != nil {
		return nil, err
	}
	cols := columnIndex(header)
	dateCol, ok := cols["date"]
	if !ok {
		return nil, errors.New("missing Date column")
	}
	closeCol, ok := cols["close"]
	if !ok {
		return nil, errors.New("missing Close column")
	}

	s := &Series{Instrument: instrument}
	seen := make(map[int64]bool)
	line := 1

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(row) <= dateCol || len(row) <= closeCol {
			continue
		}

		closeStr := strings.TrimSpace(row[closeCol])
		if closeStr == "" || strings.EqualFold(closeStr, "null") {
			continue
		}

		t, err := parseDate(row[dateCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad date %q: %w", line, row[dateCol], err)
		}
		if !inRange(t, from, to) {
			continue
		}
		if seen[t.Unix()] {
			continue
		}

		cl, err := strconv.ParseFloat(closeStr, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad close %q: %w", line, closeStr, err)
		}
		if math.IsNaN(cl) || math.IsInf(cl, 0) || cl <= 0 {
			return nil, fmt.Errorf("line %d: close must be a positive number, got %v", line, cl)
		}

		c := Candle{Time: t, Close: cl}
		c.Open = optFloat(row, cols, "open", cl)
		c.High = optFloat(row, cols, "high", cl)
		c.Low = optFloat(row, cols, "low", cl)
		c.Volume = optFloat(row, cols, "volume", 0)

		seen[t.Unix()] = true
		s.Candles = append(s.Candles, c)
	}

	sort.SliceStable(s.Candles, func(i, j int) bool {
		return s.Candles[i].Time.Before(s.Candles[j].Time)
	})
	return s, nil
}

// LoadUniverse loads <dir>/<symbol>.csv for every symbol. Files are read
// concurrently; the returned slice keeps the order of symbols, which is the
// per-bar iteration order.
func LoadUniverse(dir string, symbols []string, from, to time.Time) ([]*Series, error) {
	if len(symbols) == 0 {
		return nil, errors.New("no instruments")
	}
	out := make([]*Series, len(symbols))
	var g errgroup.Group
	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() error {
			s, err := LoadCSV(filepath.Join(dir, sym+".csv"), sym, from, to)
			if err != nil {
				return fmt.Errorf("load %s: %w", sym, err)
			}
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseDate parses a config or CSV date (YYYY-MM-DD or RFC3339), normalized to UTC.
func ParseDate(s string) (time.Time, error) {
	return parseDate(s)
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(DateLayout, s)
	if err == nil {
		return t.UTC(), nil
	}
	t2, err2 := time.Parse(time.RFC3339, s)
	if err2 != nil {
		return time.Time{}, err
	}
	return t2.UTC(), nil
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	return cols
}

func optFloat(row []string, cols map[string]int, name string, def float64) float64 {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return def
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}
