// Package ioformats reads business lists and writes profiles for the
// command-line runner.
package ioformats

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/use-agent/sitescan/models"
)

// Input formats.
const (
	FormatCSV    = "csv"
	FormatNDJSON = "ndjson"
)

// csvColumns maps accepted header names to business fields.
var csvColumns = map[string]string{
	"url":      "website",
	"website":  "website",
	"name":     "name",
	"category": "category",
	"phone":    "phone",
}

// ReadFile reads businesses from a CSV or NDJSON file, chosen by extension.
// Unknown extensions are tried as CSV first, then as NDJSON.
func ReadFile(path string) ([]models.Business, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return Read(f, FormatCSV)
	case ".ndjson", ".jsonl":
		return Read(f, FormatNDJSON)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if bs, err := Read(bytes.NewReader(data), FormatCSV); err == nil && len(bs) > 0 {
		return bs, nil
	}
	return Read(bytes.NewReader(data), FormatNDJSON)
}

// Read parses businesses in the given format.
func Read(r io.Reader, format string) ([]models.Business, error) {
	switch format {
	case FormatCSV:
		return readCSV(r)
	case FormatNDJSON:
		return readNDJSON(r)
	default:
		return nil, fmt.Errorf("unknown input format %q", format)
	}
}

// readCSV expects a header row naming at least one of url, website, name
// or category. Rows with no signal are skipped.
func readCSV(r io.Reader) ([]models.Business, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("empty csv")
	}

	cols := make(map[string]int)
	for i, h := range rows[0] {
		field, ok := csvColumns[strings.ToLower(strings.TrimSpace(h))]
		if !ok {
			continue
		}
		if _, seen := cols[field]; !seen {
			cols[field] = i
		}
	}
	if _, ok := cols["website"]; !ok {
		if _, ok := cols["name"]; !ok {
			if _, ok := cols["category"]; !ok {
				return nil, errors.New("csv must contain a url, website, name or category header column")
			}
		}
	}

	cell := func(row []string, field string) string {
		i, ok := cols[field]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []models.Business
	for _, row := range rows[1:] {
		b := models.Business{
			Website:  cell(row, "website"),
			Name:     cell(row, "name"),
			Category: cell(row, "category"),
			Phone:    cell(row, "phone"),
		}
		if hasSignal(b) {
			out = append(out, b)
		}
	}
	return out, nil
}

// ndjsonLine accepts both "url" and "website" for the site address.
type ndjsonLine struct {
	URL      string `json:"url"`
	Website  string `json:"website"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Phone    string `json:"phone"`
}

// readNDJSON reads one business object per line. A line that is not an
// object is taken as a bare website address.
func readNDJSON(r io.Reader) ([]models.Business, error) {
	var out []models.Business
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "{") {
			out = append(out, models.Business{Website: line})
			continue
		}
		var l ndjsonLine
		if err := json.Unmarshal([]byte(line), &l); err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		b := models.Business{
			Website:  strings.TrimSpace(l.URL),
			Name:     strings.TrimSpace(l.Name),
			Category: strings.TrimSpace(l.Category),
			Phone:    strings.TrimSpace(l.Phone),
		}
		if b.Website == "" {
			b.Website = strings.TrimSpace(l.Website)
		}
		if hasSignal(b) {
			out = append(out, b)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.New("no businesses found in ndjson")
	}
	return out, nil
}

func hasSignal(b models.Business) bool {
	return b.Website != "" || b.Name != "" || b.Category != ""
}

// WriteNDJSON writes one profile per line, without raw markup unless
// includeRawHTML is set.
func WriteNDJSON(w io.Writer, profiles []*models.Profile, includeRawHTML bool) error {
	enc := json.NewEncoder(w)
	for _, p := range profiles {
		if !includeRawHTML {
			p = p.WithoutRawHTML()
		}
		if err := enc.Encode(p); err != nil {
			return err
		}
	}
	return nil
}
