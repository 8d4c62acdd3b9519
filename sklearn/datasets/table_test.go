package datasets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/lassoridge/pkg/errors"
)

func newTable(t *testing.T, s string) *Table {
	t.Helper()
	table, err := ReadCSV(strings.NewReader(s))
	require.NoError(t, err)
	return table
}

func TestTable_ColumnAndIndex(t *testing.T) {
	table := newTable(t, defaultCSV)

	assert.Equal(t, []string{"", "default", "student", "balance", "income"}, table.Columns)
	assert.Equal(t, 5, table.NRows())
	assert.Equal(t, 3, table.Index("balance"))
	assert.Equal(t, -1, table.Index("missing"))

	col, err := table.Column("student")
	require.NoError(t, err)
	assert.Equal(t, []string{"No", "Yes", "No", "No", "Yes"}, col)

	_, err = table.Column("missing")
	var mce *errors.MissingColumnError
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, []string{"missing"}, mce.Columns)
}

func TestTable_DropColumn(t *testing.T) {
	table := newTable(t, defaultCSV)
	original := table.Rows[0]

	assert.True(t, table.DropColumn(""))
	assert.False(t, table.DropColumn(""))
	assert.Equal(t, []string{"default", "student", "balance", "income"}, table.Columns)
	assert.Equal(t, []string{"No", "No", "729.5", "44361.6"}, table.Rows[0])
	// 元の行スライスは書き換えない
	assert.Equal(t, "1", original[0])
}

func TestTable_DropMissing(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		dropped int
		rows    int
	}{
		{"all columns", nil, 1, 4},
		{"income only", []string{"income"}, 1, 4},
		{"balance only", []string{"balance"}, 0, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := newTable(t, defaultCSV)
			dropped, err := table.DropMissing(tt.columns...)
			require.NoError(t, err)
			assert.Equal(t, tt.dropped, dropped)
			assert.Equal(t, tt.rows, table.NRows())
		})
	}

	table := newTable(t, "a,b\n1,\n2,NaN\n3,4\n")
	dropped, err := table.DropMissing()
	require.NoError(t, err)
	assert.Equal(t, 2, dropped)
	assert.Equal(t, [][]string{{"3", "4"}}, table.Rows)

	_, err = table.DropMissing("nope")
	assert.Error(t, err)
}

func TestTable_Float(t *testing.T) {
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	defer errors.SetWarningHandler(func(error) {})

	table := newTable(t, "flag,value\nYes,1.5\nno, 2\nYES,-3e2\n")

	v, err := table.Float("value")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2, -300}, v)
	assert.Empty(t, warnings)

	flags, err := table.Float("flag")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 1}, flags)
	require.Len(t, warnings, 1)
	var dcw *errors.DataConversionWarning
	require.True(t, errors.As(warnings[0], &dcw))
	assert.Equal(t, "float64", dcw.ToType)
	assert.Contains(t, dcw.Reason, `"flag"`)

	bad := newTable(t, "x\n1\nabc\n")
	_, err = bad.Float("x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `row 1`)

	_, err = bad.Float("y")
	assert.Error(t, err)
}
