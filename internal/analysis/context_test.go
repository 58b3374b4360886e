package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datachat-backend/internal/state"
)

func sampleFrame() *state.DataFrame {
	return &state.DataFrame{
		Headers: []string{"PassengerId", "Pclass", "Name", "Sex", "Age", "Fare", "Cabin"},
		Rows: [][]string{
			{"1", "3", "Braund, Mr. Owen", "male", "22", "7.25", ""},
			{"2", "1", "Cumings, Mrs. John", "female", "38", "71.28", ""},
			{"3", "3", "Heikkinen, Miss Laina", "female", "26", "7.92", ""},
			{"4", "1", "Futrelle, Mrs. Jacques", "female", "35", "53.1", ""},
			{"5", "3", "Allen, Mr. William", "male", "", "8.05", ""},
			{"6", "3", "Moran, Mr. James", "male", "27", "8.46", ""},
		},
	}
}

func TestBuildContextTypes(t *testing.T) {
	summary := BuildContext(sampleFrame())

	require.Equal(t, 6, summary.Rows)
	require.Len(t, summary.Columns, 7)

	age := summary.Column("Age")
	require.NotNil(t, age)
	assert.Equal(t, TypeNumeric, age.Type)
	assert.Equal(t, 1, age.NullCount)
	assert.Equal(t, 5, age.NonNull)
	assert.Equal(t, 22.0, age.Min)
	assert.Equal(t, 38.0, age.Max)
	assert.InDelta(t, 29.6, age.Mean, 0.001)

	sex := summary.Column("Sex")
	require.NotNil(t, sex)
	assert.Equal(t, TypeCategorical, sex.Type)
	assert.Equal(t, 2, sex.UniqueCount)

	cabin := summary.Column("Cabin")
	require.NotNil(t, cabin)
	assert.Equal(t, TypeUnknown, cabin.Type)
	assert.Equal(t, 6, cabin.NullCount)
}

func TestBuildContextDatetime(t *testing.T) {
	df := &state.DataFrame{
		Headers: []string{"Date", "Sales"},
		Rows: [][]string{
			{"2024-02-01", "150"},
			{"2024-01-01", "100"},
			{"2024-03-15", "120"},
		},
	}
	summary := BuildContext(df)

	date := summary.Column("Date")
	require.NotNil(t, date)
	assert.Equal(t, TypeDatetime, date.Type)
	assert.Equal(t, "2024-01-01", date.MinDate)
	assert.Equal(t, "2024-03-15", date.MaxDate)

	sales := summary.Column("Sales")
	require.NotNil(t, sales)
	assert.Equal(t, TypeNumeric, sales.Type)
}

func TestColumnLookupIsCaseInsensitive(t *testing.T) {
	summary := BuildContext(sampleFrame())
	assert.NotNil(t, summary.Column("age"))
	assert.NotNil(t, summary.Column("AGE"))
	assert.Nil(t, summary.Column("Gender"))
}

func TestRenderListsOnlyRealColumns(t *testing.T) {
	df := sampleFrame()
	rendered := BuildContext(df).Render()

	assert.Contains(t, rendered, "DATASET INFO:")
	assert.Contains(t, rendered, "AVAILABLE COLUMNS:")
	for _, h := range df.Headers {
		assert.Contains(t, rendered, h)
	}
	assert.Contains(t, rendered, "Total rows: 6")
}

func TestValueCountsDeterministic(t *testing.T) {
	df := sampleFrame()
	idx := df.ColumnIndex("Sex")
	require.NotEqual(t, -1, idx)

	counts := ValueCounts(df, idx, 10)
	require.Len(t, counts, 2)
	// Equal counts break ties alphabetically
	assert.Equal(t, ValueCount{Value: "female", Count: 3}, counts[0])
	assert.Equal(t, ValueCount{Value: "male", Count: 3}, counts[1])
}

func TestNumericValuesSkipsBlanksAndText(t *testing.T) {
	df := sampleFrame()
	values := NumericValues(df, df.ColumnIndex("Age"))
	assert.Len(t, values, 5)

	values = NumericValues(df, df.ColumnIndex("Sex"))
	assert.Empty(t, values)
}

func TestSampleRowsRendersTable(t *testing.T) {
	out := SampleRows(sampleFrame(), 5)
	assert.Contains(t, out, "PASSENGERID")
	assert.True(t, strings.Contains(out, "Braund") || strings.Contains(out, "braund"))
}

func TestSuggestColumnsMatchesQueryWords(t *testing.T) {
	summary := BuildContext(sampleFrame())

	got := SuggestColumns(summary, "show the distribution of age")
	assert.Contains(t, got, "Age")

	// Nothing matches: fall back to leading categorical and numeric columns
	got = SuggestColumns(summary, "tell me something interesting")
	assert.NotEmpty(t, got)
}
