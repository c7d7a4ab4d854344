package journal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/smatrader/strategies"
)

// Header is the first row of every trade CSV.
var Header = []string{"Empresa", "Operacion", "Cantidad", "Estrategia", "Valor portafolio"}

// CSV is the trade journal file. Opening it truncates the file and writes
// the header; every Record is a scoped append (open, write, flush, sync,
// close) so a row is on disk before the run moves on.
type CSV struct {
	path   string
	rows   int
	closed bool
}

// NewCSV truncates path and writes the header.
func NewCSV(path string) (*CSV, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := writeRows(f, Header); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return &CSV{path: path}, nil
}

func (j *CSV) Path() string { return j.path }

// Rows returns the number of trade rows written, header excluded.
func (j *CSV) Rows() int { return j.rows }

func (j *CSV) Record(t TradeRecord) error {
	if j.closed {
		return fmt.Errorf("%w: %s is closed", ErrWrite, j.path)
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	f, err := os.OpenFile(j.path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := writeRows(f, csvRow(t)); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	j.rows++
	return nil
}

func (j *CSV) Close() error {
	j.closed = true
	return nil
}

func csvRow(t TradeRecord) []string {
	return []string{
		t.Instrument,
		t.Operation(),
		strconv.FormatInt(t.Quantity, 10),
		string(t.Strategy),
		FormatValue(t.PortfolioValue),
	}
}

// writeRows writes with CRLF line endings, the dialect the file has always
// used.
func writeRows(w io.Writer, rows ...[]string) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	for _, r := range rows {
		if err := cw.Write(r); err != nil {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// ReadCSV loads the trade rows of a journal file. Only the CSV columns are
// populated; Seq is the 1-based row number.
func ReadCSV(path string) ([]TradeRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err == io.EOF {
		return nil, errors.New("journal: missing header")
	}
	if err != nil {
		return nil, err
	}
	if len(header) != len(Header) || header[0] != Header[0] {
		return nil, fmt.Errorf("journal: unexpected header %v", header)
	}

	var out []TradeRecord
	for {
		row, err := r.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}

		action, err := ParseOperation(row[1])
		if err != nil {
			return nil, err
		}
		qty, err := strconv.ParseInt(row[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("journal: bad quantity %q: %w", row[2], err)
		}
		val, err := decimal.NewFromString(row[4])
		if err != nil {
			return nil, fmt.Errorf("journal: bad portfolio value %q: %w", row[4], err)
		}

		out = append(out, TradeRecord{
			Instrument:     row[0],
			Action:         action,
			Quantity:       qty,
			Strategy:       strategies.ID(row[3]),
			PortfolioValue: val,
			Seq:            len(out) + 1,
		})
	}
}
