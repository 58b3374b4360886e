package analysis

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"datachat-backend/internal/models"
	"datachat-backend/internal/state"
)

// maxCorrelationCols caps the pairwise correlation scan during profiling
const maxCorrelationCols = 6

// ProfileTable builds the structured profile returned on upload: headline
// KPIs, per-column schema info and a handful of auto-generated insights.
func ProfileTable(df *state.DataFrame, summary ContextSummary) *models.Profile {
	profile := &models.Profile{
		Rows:    summary.Rows,
		Columns: len(summary.Columns),
	}

	totalMissing := 0
	for _, col := range summary.Columns {
		totalMissing += col.NullCount
		pct := 0.0
		if summary.Rows > 0 {
			pct = math.Round(float64(col.NullCount)/float64(summary.Rows)*1000) / 10
		}
		profile.Schema = append(profile.Schema, models.ColumnProfile{
			Name:       col.Name,
			Type:       col.Type,
			Missing:    col.NullCount,
			MissingPct: pct,
			Unique:     col.UniqueCount,
		})
	}

	numeric := summary.ColumnsOfType(TypeNumeric)
	categorical := summary.ColumnsOfType(TypeCategorical)

	profile.KPIs = []models.KPI{
		{Label: "Total Rows", Value: formatInt(summary.Rows), Icon: "rows"},
		{Label: "Total Columns", Value: fmt.Sprintf("%d", len(summary.Columns)), Icon: "columns"},
		{Label: "Missing Values", Value: formatInt(totalMissing), Icon: "missing"},
		{Label: "Numeric Cols", Value: fmt.Sprintf("%d", len(numeric)), Icon: "numeric"},
		{Label: "Categorical Cols", Value: fmt.Sprintf("%d", len(categorical)), Icon: "categorical"},
	}

	profile.Insights = buildInsights(df, summary, numeric)
	return profile
}

func buildInsights(df *state.DataFrame, summary ContextSummary, numeric []ColumnInfo) []string {
	insights := []string{}

	// Worst missing-data column
	var worst *ColumnInfo
	for i := range summary.Columns {
		col := &summary.Columns[i]
		if col.NullCount == 0 {
			continue
		}
		if worst == nil || col.NullCount > worst.NullCount {
			worst = col
		}
	}
	if worst != nil && summary.Rows > 0 {
		pct := float64(worst.NullCount) / float64(summary.Rows) * 100
		insights = append(insights,
			fmt.Sprintf("Column '%s' has %.1f%% missing values", worst.Name, pct))
	}

	// Identifier-like column: every value distinct and non-numeric
	for _, col := range summary.Columns {
		if col.Type != TypeNumeric && col.NonNull > 0 && col.UniqueCount == summary.Rows {
			insights = append(insights,
				fmt.Sprintf("Column '%s' appears to be a unique identifier", col.Name))
			break
		}
	}

	// Strongest numeric correlation
	if c1, c2, r, rho, ok := strongestCorrelation(df, numeric); ok {
		insights = append(insights,
			fmt.Sprintf("Strong correlation between '%s' and '%s' (pearson %.2f, spearman %.2f)",
				c1, c2, r, rho))
	}

	// Dataset size note
	if summary.Rows > 10000 {
		insights = append(insights, fmt.Sprintf("Large dataset with %s rows", formatInt(summary.Rows)))
	} else if summary.Rows > 0 && summary.Rows < 100 {
		insights = append(insights, fmt.Sprintf("Small dataset with only %d rows", summary.Rows))
	}

	if len(insights) > 5 {
		insights = insights[:5]
	}
	return insights
}

func strongestCorrelation(df *state.DataFrame, numeric []ColumnInfo) (string, string, float64, float64, bool) {
	if len(numeric) < 2 {
		return "", "", 0, 0, false
	}
	if len(numeric) > maxCorrelationCols {
		numeric = numeric[:maxCorrelationCols]
	}

	bestAbs := 0.0
	var c1, c2 string
	var best float64
	var bestX, bestY []float64

	for i := 0; i < len(numeric); i++ {
		for j := i + 1; j < len(numeric); j++ {
			xs, ys := PairedColumns(df, numeric[i].Index, numeric[j].Index)
			if len(xs) < 2 {
				continue
			}

			r := PearsonCorrelation(xs, ys)
			if math.Abs(r) > bestAbs {
				bestAbs = math.Abs(r)
				best = r
				c1, c2 = numeric[i].Name, numeric[j].Name
				bestX, bestY = xs, ys
			}
		}
	}

	if bestAbs > 0.5 {
		return c1, c2, best, SpearmanCorrelation(bestX, bestY), true
	}
	return "", "", 0, 0, false
}

// PairedColumns extracts row-aligned numeric pairs from two columns. A row
// contributes only when both cells parse, so the two samples always come
// from the same rows regardless of where each column has gaps.
func PairedColumns(df *state.DataFrame, xIdx, yIdx int) ([]float64, []float64) {
	xs := []float64{}
	ys := []float64{}
	for i := range df.Rows {
		xv, errX := strconv.ParseFloat(strings.TrimSpace(df.Value(i, xIdx)), 64)
		yv, errY := strconv.ParseFloat(strings.TrimSpace(df.Value(i, yIdx)), 64)
		if errX != nil || errY != nil {
			continue
		}
		xs = append(xs, xv)
		ys = append(ys, yv)
	}
	return xs, ys
}

// PearsonCorrelation computes the linear correlation of two equal-length
// samples; 0 when degenerate.
func PearsonCorrelation(x, y []float64) float64 {
	n := float64(len(x))
	if n == 0 {
		return 0
	}

	sumX, sumY, sumXY, sumX2, sumY2 := 0.0, 0.0, 0.0, 0.0, 0.0
	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumX2 += x[i] * x[i]
		sumY2 += y[i] * y[i]
	}

	num := n*sumXY - sumX*sumY
	den := math.Sqrt((n*sumX2 - sumX*sumX) * (n*sumY2 - sumY*sumY))

	if den == 0 {
		return 0
	}
	return num / den
}

// SpearmanCorrelation is rank-based Pearson
func SpearmanCorrelation(x, y []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return PearsonCorrelation(computeRanks(x), computeRanks(y))
}

func computeRanks(vals []float64) []float64 {
	n := len(vals)
	type indexedVal struct {
		val   float64
		index int
	}

	indexed := make([]indexedVal, n)
	for i, v := range vals {
		indexed[i] = indexedVal{v, i}
	}

	sort.Slice(indexed, func(i, j int) bool {
		return indexed[i].val < indexed[j].val
	})

	ranks := make([]float64, n)
	for rank, iv := range indexed {
		ranks[iv.index] = float64(rank + 1)
	}
	return ranks
}
