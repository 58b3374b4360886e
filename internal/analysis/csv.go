package analysis

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"datachat-backend/internal/state"
)

// ParseCSV reads a CSV document into a DataFrame. Comma is tried first,
// then semicolon. Headers must be non-empty and unique; malformed data rows
// are skipped rather than failing the whole upload.
func ParseCSV(r io.Reader) (*state.DataFrame, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	df, err := parseWithComma(raw, ',')
	if err != nil || len(df.Headers) <= 1 {
		// Single-column result usually means the wrong separator
		cols := 0
		if df != nil {
			cols = len(df.Headers)
		}
		if alt, altErr := parseWithComma(raw, ';'); altErr == nil && len(alt.Headers) > cols {
			return alt, nil
		}
		if err != nil {
			return nil, err
		}
	}
	return df, nil
}

func parseWithComma(raw []byte, comma rune) (*state.DataFrame, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = comma
	reader.FieldsPerRecord = -1 // Allow variable fields
	reader.LazyQuotes = true    // Allow bare quotes in non-quoted fields
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read headers: %v", err)
	}

	seen := make(map[string]bool, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		key := strings.ToLower(h)
		if seen[key] {
			return nil, fmt.Errorf("duplicate column name: %s", h)
		}
		seen[key] = true
		headers[i] = h
	}

	rows := [][]string{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Skip malformed rows
			continue
		}
		rows = append(rows, record)
	}

	return &state.DataFrame{
		Headers: headers,
		Rows:    rows,
	}, nil
}
