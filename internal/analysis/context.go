package analysis

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"datachat-backend/internal/state"
)

// Column type constants
const (
	TypeNumeric     = "numeric"
	TypeDatetime    = "datetime"
	TypeCategorical = "categorical"
	TypeText        = "text"
	TypeUnknown     = "unknown" // fully-null column
)

// topValueLimit is how many frequent values a categorical column reports
const topValueLimit = 5

// ValueCount pairs a cell value with its occurrence count
type ValueCount struct {
	Value string
	Count int
}

// ColumnInfo is the derived description of one column
type ColumnInfo struct {
	Name        string
	Index       int
	Type        string
	NullCount   int
	NonNull     int
	Min         float64
	Max         float64
	Mean        float64
	MinDate     string
	MaxDate     string
	UniqueCount int
	TopValues   []ValueCount
}

// ContextSummary is a read-only snapshot of the active table: shape plus
// per-column type, range and null information. It is recomputed per request
// and never references a column absent from the table.
type ContextSummary struct {
	Rows    int
	Columns []ColumnInfo
}

// BuildContext derives a ContextSummary from a DataFrame in a single pass
// per column.
func BuildContext(df *state.DataFrame) ContextSummary {
	summary := ContextSummary{
		Rows:    len(df.Rows),
		Columns: make([]ColumnInfo, 0, len(df.Headers)),
	}

	for idx, name := range df.Headers {
		summary.Columns = append(summary.Columns, buildColumnInfo(df, idx, name))
	}
	return summary
}

func buildColumnInfo(df *state.DataFrame, idx int, name string) ColumnInfo {
	info := ColumnInfo{Name: name, Index: idx}

	counts := make(map[string]int)
	allNumeric, allDates := true, true
	sum, minV, maxV := 0.0, 0.0, 0.0
	var minDate, maxDate time.Time

	for i := range df.Rows {
		val := strings.TrimSpace(df.Value(i, idx))
		if val == "" {
			info.NullCount++
			continue
		}
		info.NonNull++
		counts[val]++

		if allNumeric {
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				sum += f
				if info.NonNull == 1 || f < minV {
					minV = f
				}
				if info.NonNull == 1 || f > maxV {
					maxV = f
				}
			} else {
				allNumeric = false
			}
		}
		if allDates {
			if t, ok := parseDate(val); ok {
				if minDate.IsZero() || t.Before(minDate) {
					minDate = t
				}
				if maxDate.IsZero() || t.After(maxDate) {
					maxDate = t
				}
			} else {
				allDates = false
			}
		}
	}

	info.UniqueCount = len(counts)

	switch {
	case info.NonNull == 0:
		info.Type = TypeUnknown
	case allNumeric:
		info.Type = TypeNumeric
		info.Min = minV
		info.Max = maxV
		info.Mean = sum / float64(info.NonNull)
	case allDates:
		info.Type = TypeDatetime
		info.MinDate = minDate.Format("2006-01-02")
		info.MaxDate = maxDate.Format("2006-01-02")
	case isCategorical(info.UniqueCount, len(df.Rows)):
		info.Type = TypeCategorical
		info.TopValues = topValues(counts, topValueLimit)
	default:
		info.Type = TypeText
		info.TopValues = topValues(counts, topValueLimit)
	}

	return info
}

// isCategorical treats a column as categorical when its cardinality is low
// relative to the row count
func isCategorical(unique, rows int) bool {
	threshold := rows / 10
	if threshold < 20 {
		threshold = 20
	}
	return unique <= threshold
}

var dateFormats = []string{
	time.RFC3339,
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
}

func parseDate(val string) (time.Time, bool) {
	for _, f := range dateFormats {
		if t, err := time.Parse(f, val); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// topValues returns the n most frequent values, ties broken by value so the
// output is deterministic
func topValues(counts map[string]int, n int) []ValueCount {
	vals := make([]ValueCount, 0, len(counts))
	for v, c := range counts {
		vals = append(vals, ValueCount{Value: v, Count: c})
	}
	sort.Slice(vals, func(i, j int) bool {
		if vals[i].Count != vals[j].Count {
			return vals[i].Count > vals[j].Count
		}
		return vals[i].Value < vals[j].Value
	})
	if len(vals) > n {
		vals = vals[:n]
	}
	return vals
}

// Column looks up a column by name, case-insensitive. Nil if absent.
func (s ContextSummary) Column(name string) *ColumnInfo {
	for i := range s.Columns {
		if strings.EqualFold(s.Columns[i].Name, name) {
			return &s.Columns[i]
		}
	}
	return nil
}

// ColumnsOfType returns the columns of the given type, in table order
func (s ContextSummary) ColumnsOfType(colType string) []ColumnInfo {
	out := []ColumnInfo{}
	for _, c := range s.Columns {
		if c.Type == colType {
			out = append(out, c)
		}
	}
	return out
}

// FirstOfType returns the first column of the given type, nil if none
func (s ContextSummary) FirstOfType(colType string) *ColumnInfo {
	for i := range s.Columns {
		if s.Columns[i].Type == colType {
			return &s.Columns[i]
		}
	}
	return nil
}

// Render produces the textual table context used to ground LLM prompts
func (s ContextSummary) Render() string {
	var b strings.Builder
	b.WriteString("DATASET INFO:\n")
	fmt.Fprintf(&b, "- Total rows: %d\n", s.Rows)
	fmt.Fprintf(&b, "- Total columns: %d\n\n", len(s.Columns))
	b.WriteString("AVAILABLE COLUMNS:\n")

	for _, col := range s.Columns {
		fmt.Fprintf(&b, "\n- %s:\n", col.Name)
		fmt.Fprintf(&b, "  Type: %s\n", col.Type)
		fmt.Fprintf(&b, "  Non-null: %d/%d\n", col.NonNull, s.Rows)

		switch col.Type {
		case TypeNumeric:
			fmt.Fprintf(&b, "  Range: %g to %g\n", col.Min, col.Max)
			fmt.Fprintf(&b, "  Mean: %.2f\n", col.Mean)
		case TypeDatetime:
			fmt.Fprintf(&b, "  Date range: %s to %s\n", col.MinDate, col.MaxDate)
		case TypeCategorical, TypeText:
			fmt.Fprintf(&b, "  Unique values: %d\n", col.UniqueCount)
			if len(col.TopValues) > 0 {
				tops := make([]string, len(col.TopValues))
				for i, tv := range col.TopValues {
					tops[i] = tv.Value
				}
				fmt.Fprintf(&b, "  Top values: %s\n", strings.Join(tops, ", "))
			}
		}
	}
	return b.String()
}

// SampleRows renders the first n rows as a plain text table for prompts
func SampleRows(df *state.DataFrame, n int) string {
	if n > len(df.Rows) {
		n = len(df.Rows)
	}

	t := table.NewWriter()
	header := make(table.Row, len(df.Headers))
	for i, h := range df.Headers {
		header[i] = h
	}
	t.AppendHeader(header)

	for i := 0; i < n; i++ {
		row := make(table.Row, len(df.Headers))
		for j := range df.Headers {
			row[j] = df.Value(i, j)
		}
		t.AppendRow(row)
	}
	return t.Render()
}

// NumericValues extracts the parseable float values of a column
func NumericValues(df *state.DataFrame, colIdx int) []float64 {
	values := []float64{}
	for i := range df.Rows {
		if val, err := strconv.ParseFloat(strings.TrimSpace(df.Value(i, colIdx)), 64); err == nil {
			values = append(values, val)
		}
	}
	return values
}

// ValueCounts tallies the non-empty values of a column, most frequent first
func ValueCounts(df *state.DataFrame, colIdx int, topN int) []ValueCount {
	counts := make(map[string]int)
	for i := range df.Rows {
		val := strings.TrimSpace(df.Value(i, colIdx))
		if val == "" {
			continue
		}
		counts[val]++
	}
	return topValues(counts, topN)
}

// SuggestColumns matches query words against column names to hint which
// columns a chart or analysis likely concerns. Falls back to the leading
// categorical and numeric columns when nothing matches.
func SuggestColumns(summary ContextSummary, query string) []string {
	words := strings.Fields(strings.ToLower(query))
	suggestions := []string{}

	for _, col := range summary.Columns {
		colLower := strings.ToLower(col.Name)
		for _, w := range words {
			w = strings.Trim(w, "?.,!\"'")
			if w == "" {
				continue
			}
			if strings.Contains(colLower, w) || strings.Contains(w, colLower) {
				suggestions = append(suggestions, col.Name)
				break
			}
		}
	}

	if len(suggestions) == 0 {
		for _, col := range summary.ColumnsOfType(TypeCategorical) {
			suggestions = append(suggestions, col.Name)
			if len(suggestions) == 2 {
				break
			}
		}
		for _, col := range summary.ColumnsOfType(TypeNumeric) {
			suggestions = append(suggestions, col.Name)
			if len(suggestions) == 4 {
				break
			}
		}
	}
	return suggestions
}
