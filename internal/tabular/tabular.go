// Package tabular reads flat CSV and XLSX files into header-keyed rows.
package tabular

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// ErrMissingHeader indicates the file has no header row
var ErrMissingHeader = errors.New("missing header")

// Table is a header plus rows keyed by header name
type Table struct {
	Header []string
	Rows   []map[string]string
}

// Options control how a file is read
type Options struct {
	// Sheet selects the XLSX sheet; the first sheet is used when empty
	Sheet string
}

// ReadFile reads path as CSV or XLSX depending on its extension
func ReadFile(path string, opts Options) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(path, opts.Sheet)
	case ".csv", ".txt", "":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadCSV(f)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
}

// ReadCSV reads a CSV stream. A UTF-8 BOM is stripped and header names are trimmed.
func ReadCSV(r io.Reader) (*Table, error) {
	br := stripUTF8BOM(bufio.NewReader(r))
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, ErrMissingHeader
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if err := cleanHeader(header); err != nil {
		return nil, err
	}

	t := &Table{Header: header}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if blank(rec) {
			continue
		}
		t.Rows = append(t.Rows, keyed(header, rec))
	}
	return t, nil
}

// ReadXLSX reads one sheet of an XLSX workbook
func ReadXLSX(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrMissingHeader
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrMissingHeader
	}

	header := rows[0]
	if err := cleanHeader(header); err != nil {
		return nil, err
	}
	t := &Table{Header: header}
	for _, rec := range rows[1:] {
		if blank(rec) {
			continue
		}
		t.Rows = append(t.Rows, keyed(header, rec))
	}
	return t, nil
}

// Require returns an error naming the first column missing from the header
func (t *Table) Require(columns ...string) error {
	have := make(map[string]struct{}, len(t.Header))
	for _, h := range t.Header {
		have[h] = struct{}{}
	}
	for _, c := range columns {
		if _, ok := have[c]; !ok {
			return fmt.Errorf("missing required header column: %s", c)
		}
	}
	return nil
}

func stripUTF8BOM(r *bufio.Reader) *bufio.Reader {
	b, err := r.Peek(3)
	if err == nil && len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
	return r
}

func cleanHeader(h []string) error {
	for i := range h {
		h[i] = strings.TrimSpace(h[i])
		if !utf8.ValidString(h[i]) {
			return fmt.Errorf("invalid header encoding")
		}
	}
	return nil
}

// keyed zips a record with the header. Short records leave trailing columns empty.
func keyed(header, rec []string) map[string]string {
	m := make(map[string]string, len(header))
	for i, name := range header {
		if name == "" {
			continue
		}
		if i < len(rec) {
			m[name] = rec[i]
		} else {
			m[name] = ""
		}
	}
	return m
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
