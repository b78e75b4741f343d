package xlsxparser

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// newWorkbook builds a workbook whose first sheet holds rows, starting at A1.
func newWorkbook(t *testing.T, sheet string, rows [][]interface{}) *excelize.File {
	t.Helper()

	f := excelize.NewFile()
	if sheet != "Sheet1" {
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	return f
}

func saveWorkbook(t *testing.T, f *excelize.File) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "branch.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestParse(t *testing.T) {
	f := newWorkbook(t, "Sales", [][]interface{}{
		{"transaction_id", "date", "customer_id", "branch", "quantity", "price"},
		{"T1", "2024-01-01", "C1", "A", 2, 10.5},
		{nil, nil, nil, nil, nil, nil},
		{"T2", "2024-01-02", "C2", "B", 1},
	})
	path := saveWorkbook(t, f)

	rs, err := Parse(path, "")
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"transaction_id", "date", "customer_id", "branch", "quantity", "price"},
		rs.Columns)
	require.Equal(t, 2, rs.Len())

	assert.Equal(t, "T1", rs.Rows[0].Get("transaction_id"))
	assert.Equal(t, "2", rs.Rows[0].Get("quantity"))
	assert.Equal(t, "10.5", rs.Rows[0].Get("price"))
	assert.Equal(t, path, rs.Rows[0].Source)
	assert.Equal(t, 1, rs.Rows[0].Line)

	assert.Equal(t, "", rs.Rows[1].Get("price"))
	assert.Equal(t, 2, rs.Rows[1].Line)
}

func TestParse_NamedSheet(t *testing.T) {
	f := newWorkbook(t, "Sheet1", [][]interface{}{{"ignored"}})
	_, err := f.NewSheet("Branch B")
	require.NoError(t, err)
	row := []interface{}{"id", "branch"}
	require.NoError(t, f.SetSheetRow("Branch B", "A1", &row))
	row = []interface{}{"T9", "B"}
	require.NoError(t, f.SetSheetRow("Branch B", "A2", &row))
	path := saveWorkbook(t, f)

	rs, err := Parse(path, "Branch B")
	require.NoError(t, err)
	assert.Equal(t, []string{"T9"}, rs.Values("id"))

	_, err = Parse(path, "Missing")
	assert.ErrorContains(t, err, `sheet "Missing" not found`)

	names, err := SheetNames(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sheet1", "Branch B"}, names)
}

func TestParseReader_EmptySheet(t *testing.T) {
	f := excelize.NewFile()
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	_, err := ParseReader(&buf, "mem.xlsx", "")
	assert.ErrorIs(t, err, ErrEmptySheet)
}

func TestParse_NativeDateCells(t *testing.T) {
	f := newWorkbook(t, "Sheet1", [][]interface{}{
		{"transaction_id", "date", "customer_id"},
		{"T1", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "C1"},
		{"T2", time.Date(2024, 3, 4, 15, 30, 0, 0, time.UTC), "C2"},
		{"T3", "2024-05-06", "C3"},
	})
	path := saveWorkbook(t, f)

	rs, err := Parse(path, "")
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"2024-01-02 00:00:00", "2024-03-04 15:30:00", "2024-05-06"},
		rs.Values("date"))
}

func TestParse_CustomDateFormat(t *testing.T) {
	f := newWorkbook(t, "Sheet1", [][]interface{}{
		{"id", "date"},
		{"T1", 45293},
	})
	format := "dd/mm/yyyy"
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &format})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "B2", "B2", style))
	path := saveWorkbook(t, f)

	rs, err := Parse(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-02 00:00:00"}, rs.Values("date"))
}

func TestParse_FormattedNumbersReadAsStored(t *testing.T) {
	f := newWorkbook(t, "Sheet1", [][]interface{}{
		{"quantity", "price", "share"},
		{3, 1234.5, 0.25},
	})
	thousands, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	require.NoError(t, err)
	percent, err := f.NewStyle(&excelize.Style{NumFmt: 10})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "A2", "B2", thousands))
	require.NoError(t, f.SetCellStyle("Sheet1", "C2", "C2", percent))
	path := saveWorkbook(t, f)

	rs, err := Parse(path, "")
	require.NoError(t, err)
	require.Equal(t, 1, rs.Len())
	assert.Equal(t, "3", rs.Rows[0].Get("quantity"))
	assert.Equal(t, "1234.5", rs.Rows[0].Get("price"))
	assert.Equal(t, "0.25", rs.Rows[0].Get("share"))
}

func TestParse_DuplicateHeaders(t *testing.T) {
	f := newWorkbook(t, "Sheet1", [][]interface{}{
		{"id", "price", "price"},
		{"T1", 10, 12},
	})
	path := saveWorkbook(t, f)

	rs, err := Parse(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "price", "price.1"}, rs.Columns)
	assert.Equal(t, "10", rs.Rows[0].Get("price"))
	assert.Equal(t, "12", rs.Rows[0].Get("price.1"))
}

func TestHeaderNames(t *testing.T) {
	assert.Equal(t,
		[]string{"id", "Column_B", "price", "price.1"},
		headerNames([]string{" id", "", "price ", "price"}))
}

func TestIsDateFormatCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"yyyy-mm-dd", true},
		{"dd/mm/yyyy hh:mm", true},
		{"[$-409]mmmm d, yyyy", true},
		{"mmm-yy", true},
		{"hh:mm:ss", false},
		{"#,##0.00", false},
		{`0.0" days"`, false},
		{`#,##0 \d`, false},
		{"[Red]0.00", false},
		{"General", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, isDateFormatCode(tt.code))
		})
	}
}

func TestParse_MissingFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "absent.xlsx"), "")
	assert.Error(t, err)
}
