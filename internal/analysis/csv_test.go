package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSVBasic(t *testing.T) {
	df, err := ParseCSV(strings.NewReader("name,age,city\nAlice,30,Berlin\nBob,25,Paris\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "age", "city"}, df.Headers)
	require.Equal(t, 2, df.NumRows())
	assert.Equal(t, "Alice", df.Value(0, 0))
	assert.Equal(t, "Paris", df.Value(1, 2))
}

func TestParseCSVSemicolonFallback(t *testing.T) {
	df, err := ParseCSV(strings.NewReader("name;age;city\nAlice;30;Berlin\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "age", "city"}, df.Headers)
	assert.Equal(t, 1, df.NumRows())
}

func TestParseCSVQuotedCommas(t *testing.T) {
	df, err := ParseCSV(strings.NewReader("name,note\n\"Smith, John\",hello\n"))
	require.NoError(t, err)

	assert.Equal(t, "Smith, John", df.Value(0, 0))
}

func TestParseCSVEmptyHeaderGetsPlaceholder(t *testing.T) {
	df, err := ParseCSV(strings.NewReader("a,,c\n1,2,3\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "column_2", "c"}, df.Headers)
}

func TestParseCSVDuplicateHeaderFails(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("a,A\n1,2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate column name")
}

func TestParseCSVRaggedRowsKept(t *testing.T) {
	df, err := ParseCSV(strings.NewReader("a,b,c\n1,2,3\n4,5\n"))
	require.NoError(t, err)

	require.Equal(t, 2, df.NumRows())
	// Missing trailing cells read back as empty
	assert.Equal(t, "", df.Value(1, 2))
}

func TestParseCSVEmptyInputFails(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	require.Error(t, err)
}
