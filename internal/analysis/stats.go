package analysis

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"datachat-backend/internal/state"
)

// ComputeStat answers a Stats-intent query with a deterministic computation
// over the table. It never calls the LLM and always returns non-empty text.
// Queries that need a column but name none get a clarification listing the
// available columns.
func ComputeStat(df *state.DataFrame, summary ContextSummary, query string) string {
	q := strings.ToLower(query)

	switch {
	case strings.Contains(q, "null") || strings.Contains(q, "missing"):
		return nullSummary(summary, query)
	case strings.Contains(q, "schema") || strings.Contains(q, "describe") ||
		strings.Contains(q, "data type") || strings.Contains(q, "dtype") ||
		(strings.Contains(q, "list") && strings.Contains(q, "column")):
		return schemaListing(summary)
	case strings.Contains(q, "mean") || strings.Contains(q, "average"):
		return numericStat(df, summary, query, "mean")
	case strings.Contains(q, "median"):
		return numericStat(df, summary, query, "median")
	case strings.Contains(q, "mode"):
		return numericStat(df, summary, query, "mode")
	case strings.Contains(q, "unique"):
		return uniqueSummary(df, summary, query)
	case strings.Contains(q, "row"):
		return fmt.Sprintf("The dataset has **%s rows**.", formatInt(summary.Rows))
	case strings.Contains(q, "column") || strings.Contains(q, "feature"):
		return fmt.Sprintf("The dataset has **%d columns**.", len(summary.Columns))
	case strings.Contains(q, "count"):
		return fmt.Sprintf("The dataset has **%s rows** and **%d columns**.",
			formatInt(summary.Rows), len(summary.Columns))
	default:
		return schemaListing(summary)
	}
}

// findColumn resolves a column mentioned in the query, matching names as
// whole words case-insensitively. Longer names are tried first so that
// "Fare Class" wins over "Fare" when both are present.
func findColumn(summary ContextSummary, query string) *ColumnInfo {
	ordered := make([]*ColumnInfo, 0, len(summary.Columns))
	for i := range summary.Columns {
		ordered = append(ordered, &summary.Columns[i])
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Name) > len(ordered[j].Name)
	})

	for _, col := range ordered {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(col.Name) + `\b`)
		if err != nil {
			continue
		}
		if re.MatchString(query) {
			return col
		}
	}
	return nil
}

func nullSummary(summary ContextSummary, query string) string {
	if col := findColumn(summary, query); col != nil {
		pct := 0.0
		if summary.Rows > 0 {
			pct = float64(col.NullCount) / float64(summary.Rows) * 100
		}
		return fmt.Sprintf("Column **%s** has **%d** missing values (%.1f%%).",
			col.Name, col.NullCount, pct)
	}

	var b strings.Builder
	b.WriteString("**Null value summary:**\n\n")
	total := 0
	for _, col := range summary.Columns {
		if col.NullCount == 0 {
			continue
		}
		total += col.NullCount
		pct := float64(col.NullCount) / float64(summary.Rows) * 100
		fmt.Fprintf(&b, "- %s: %.1f%% (%d values)\n", col.Name, pct, col.NullCount)
	}
	if total == 0 {
		return "No missing values in the dataset."
	}
	return b.String()
}

func numericStat(df *state.DataFrame, summary ContextSummary, query, stat string) string {
	col := findColumn(summary, query)
	if col == nil {
		return clarifyColumn(summary, stat)
	}
	if col.Type != TypeNumeric {
		return fmt.Sprintf("Column **%s** is not numeric (%s). Numeric columns: %s.",
			col.Name, col.Type, joinNames(summary.ColumnsOfType(TypeNumeric)))
	}

	switch stat {
	case "mean":
		return fmt.Sprintf("The mean of **%s** is **%.2f**.", col.Name, col.Mean)
	case "median":
		return fmt.Sprintf("The median of **%s** is **%.2f**.",
			col.Name, median(NumericValues(df, col.Index)))
	default:
		counts := ValueCounts(df, col.Index, 1)
		if len(counts) == 0 {
			return fmt.Sprintf("Column **%s** has no values to take a mode of.", col.Name)
		}
		return fmt.Sprintf("The mode of **%s** is **%s** (%d occurrences).",
			col.Name, counts[0].Value, counts[0].Count)
	}
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

func uniqueSummary(df *state.DataFrame, summary ContextSummary, query string) string {
	if col := findColumn(summary, query); col != nil {
		examples := []string{}
		for _, vc := range ValueCounts(df, col.Index, 10) {
			examples = append(examples, vc.Value)
		}
		return fmt.Sprintf("Column **%s** has **%d** unique values: %s.",
			col.Name, col.UniqueCount, strings.Join(examples, ", "))
	}

	var b strings.Builder
	b.WriteString("**Unique value counts:**\n\n")
	for _, col := range summary.Columns {
		fmt.Fprintf(&b, "- %s: %d\n", col.Name, col.UniqueCount)
	}
	return b.String()
}

func schemaListing(summary ContextSummary) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Column", "Type", "Missing", "Unique"})
	for _, col := range summary.Columns {
		t.AppendRow(table.Row{col.Name, col.Type, col.NullCount, col.UniqueCount})
	}

	return fmt.Sprintf("**Schema** (%s rows, %d columns):\n\n%s",
		formatInt(summary.Rows), len(summary.Columns), t.RenderMarkdown())
}

func clarifyColumn(summary ContextSummary, stat string) string {
	return fmt.Sprintf("I couldn't tell which column you want the %s of. Available columns: %s.",
		stat, joinNames(summary.Columns))
}

func joinNames(cols []ColumnInfo) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return strings.Join(names, ", ")
}

// formatInt renders an integer with thousands separators
func formatInt(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
