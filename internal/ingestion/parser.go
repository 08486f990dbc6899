package ingestion

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/guttosm/stockpulse/internal/domain/models"
)

// Series is one ticker's rows from a price file.
type Series struct {
	Symbol string
	Rows   []models.RawBar
}

// header describes the column layout of a price file.
type header struct {
	fields  []string // field per data column, as written
	tickers []string // ticker per data column; empty for flat files
}

// ParseCSV reads a daily price CSV as written by yfinance.
//
// Two layouts are accepted:
//
//	Date,Open,High,Low,Close,Adj Close,Volume          flat, one ticker
//
//	Price,Close,High,Low,Open,Volume                   multi-level, one or more tickers
//	Ticker,ZBAO,ZBAO,ZBAO,ZBAO,ZBAO
//	Date,,,,,
//
// Flat files take their symbol from defaultSymbol. Cells are kept as strings and
// coerced later by the normalizer, so an empty or malformed price does not fail the
// file. A bad header, a bad date or a row with the wrong column count does.
func ParseCSV(ctx context.Context, r io.Reader, defaultSymbol string) ([]Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // checked explicitly per row
	cr.TrimLeadingSpace = true

	hdr, pending, lineNumber, err := readHeader(cr)
	if err != nil {
		return nil, err
	}

	flatSymbol := strings.ToUpper(strings.TrimSpace(defaultSymbol))
	if hdr.tickers == nil && flatSymbol == "" {
		return nil, errors.New("flat layout needs a symbol")
	}

	var order []string
	bySymbol := map[string]*Series{}
	seriesFor := func(sym string) *Series {
		s, ok := bySymbol[sym]
		if !ok {
			s = &Series{Symbol: sym}
			bySymbol[sym] = s
			order = append(order, sym)
		}
		return s
	}

	handle := func(rec []string) error {
		if len(rec) != len(hdr.fields)+1 {
			return fmt.Errorf("invalid column count on line %d: expected %d got %d", lineNumber, len(hdr.fields)+1, len(rec))
		}
		day, err := parseDay(rec[0])
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNumber, err)
		}

		rows := map[string]models.RawBar{}
		for i, field := range hdr.fields {
			sym, colSym := flatSymbol, ""
			if hdr.tickers != nil {
				sym, colSym = hdr.tickers[i], hdr.tickers[i]
			}
			row, ok := rows[sym]
			if !ok {
				row = models.RawBar{Date: day, Columns: map[models.ColumnKey]any{}}
				rows[sym] = row
			}
			row.Columns[models.ColumnKey{Field: field, Symbol: colSym}] = strings.TrimSpace(rec[i+1])
		}
		for _, sym := range uniqueInOrder(hdr, flatSymbol) {
			s := seriesFor(sym)
			s.Rows = append(s.Rows, rows[sym])
		}
		return nil
	}

	if pending != nil {
		if err := handle(pending); err != nil {
			return nil, err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		rec, err := cr.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read line after %d: %w", lineNumber, err)
		}
		lineNumber++
		if blank(rec) {
			continue
		}
		if err := handle(rec); err != nil {
			return nil, err
		}
	}

	out := make([]Series, 0, len(order))
	for _, sym := range order {
		out = append(out, *bySymbol[sym])
	}
	return out, nil
}

// readHeader consumes the header rows. pending is a data row read while probing
// for the optional "Date" row of the multi-level layout.
func readHeader(cr *csv.Reader) (hdr header, pending []string, lineNumber int, err error) {
	first, err := cr.Read()
	if err != nil {
		return header{}, nil, 0, fmt.Errorf("read header: %w", err)
	}
	lineNumber = 1
	if len(first) < 2 {
		return header{}, nil, lineNumber, fmt.Errorf("invalid header: expected a date column and price columns, got %d columns", len(first))
	}

	switch strings.ToLower(strings.TrimSpace(first[0])) {
	case "date":
		hdr.fields = trimAll(first[1:])

	case "price":
		hdr.fields = trimAll(first[1:])
		tick, err := cr.Read()
		if err != nil {
			return header{}, nil, lineNumber, fmt.Errorf("read ticker header: %w", err)
		}
		lineNumber++
		if !strings.EqualFold(strings.TrimSpace(tick[0]), "ticker") || len(tick) != len(first) {
			return header{}, nil, lineNumber, fmt.Errorf("invalid ticker header on line %d", lineNumber)
		}
		hdr.tickers = make([]string, 0, len(tick)-1)
		for _, t := range tick[1:] {
			t = strings.ToUpper(strings.TrimSpace(t))
			if t == "" {
				return header{}, nil, lineNumber, fmt.Errorf("empty ticker on line %d", lineNumber)
			}
			hdr.tickers = append(hdr.tickers, t)
		}

		row, err := cr.Read()
		if err == io.EOF {
			return hdr, nil, lineNumber, nil
		}
		if err != nil {
			return header{}, nil, lineNumber, fmt.Errorf("read line after %d: %w", lineNumber, err)
		}
		lineNumber++
		if !strings.EqualFold(strings.TrimSpace(row[0]), "date") {
			pending = row
		}

	default:
		return header{}, nil, lineNumber, fmt.Errorf("invalid header: first column must be Date or Price, got %q", first[0])
	}

	if !hasField(hdr.fields, models.FieldClose) {
		return header{}, nil, lineNumber, errors.New("invalid header: no Close column")
	}
	return hdr, pending, lineNumber, nil
}

// parseDay accepts a plain date or a timestamp whose first ten characters are one.
func parseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) < len(models.DateLayout) {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	d, err := time.Parse(models.DateLayout, s[:len(models.DateLayout)])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %v", s, err)
	}
	return d, nil
}

// parseFile parses one file, naming flat content after the file stem
// ("zbao.csv" and "ZBAO_daily.csv" both become ZBAO).
func parseFile(ctx context.Context, path string) ([]Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ParseCSV(ctx, f, symbolFromFilename(path))
}

func symbolFromFilename(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if i := strings.IndexByte(stem, '_'); i > 0 {
		stem = stem[:i]
	}
	return strings.ToUpper(strings.TrimSpace(stem))
}

func uniqueInOrder(h header, flat string) []string {
	if h.tickers == nil {
		return []string{flat}
	}
	seen := map[string]bool{}
	var out []string
	for _, t := range h.tickers {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func hasField(fields []string, want string) bool {
	for _, f := range fields {
		if strings.EqualFold(f, want) {
			return true
		}
	}
	return false
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

func blank(rec []string) bool {
	for _, s := range rec {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}
