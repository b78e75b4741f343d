package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNull(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"NA", true},
		{"n/a", true},
		{"NaN", true},
		{"null", true},
		{"NULL", true},
		{"None", true},
		{"#N/A", true},
		{"#NA", true},
		{"-NaN", true},
		{" <NA> ", true},
		{"-", false},
		{"Null", false},
		{"none", false},
		{"Na", false},
		{"0", false},
		{"C1", false},
		{"Nancy", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNull(tt.value))
		})
	}
}

func TestUniqueColumns(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"distinct", []string{"a", "b"}, []string{"a", "b"}},
		{"repeats", []string{"price", "price", "price"}, []string{"price", "price.1", "price.2"}},
		{"literal suffix taken", []string{"a", "a.1", "a"}, []string{"a", "a.1", "a.2"}},
		{"suffix collides later", []string{"a", "a", "a.1"}, []string{"a", "a.1", "a.1.1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UniqueColumns(tt.in))
		})
	}
}

func TestRow_IsNull(t *testing.T) {
	row := NewRow(map[string]string{"a": "x", "b": "NA"})

	assert.False(t, row.IsNull("a"))
	assert.True(t, row.IsNull("b"))
	assert.True(t, row.IsNull("missing"))
}

func TestRecordSet_AppendKeepsUniformSchema(t *testing.T) {
	rs := NewRecordSet("a", "b", "a")
	assert.Equal(t, []string{"a", "b"}, rs.Columns)

	rs.Append(NewRow(map[string]string{"a": "1"}))
	rs.Append(NewRow(map[string]string{"a": "2", "c": "3"}))

	assert.Equal(t, []string{"a", "b", "c"}, rs.Columns)
	for _, row := range rs.Rows {
		assert.Len(t, row.Fields, 3)
	}
	assert.Equal(t, "", rs.Rows[0].Get("c"))
	assert.Equal(t, "", rs.Rows[1].Get("b"))
}

func TestRecordSet_Concat(t *testing.T) {
	left := NewRecordSet("id", "branch")
	left.Append(NewRow(map[string]string{"id": "1", "branch": "A"}))

	right := NewRecordSet("id", "price")
	right.Append(NewRow(map[string]string{"id": "2", "price": "5"}))

	out := left.Concat(right)

	require.Equal(t, 2, out.Len())
	assert.Equal(t, []string{"id", "branch", "price"}, out.Columns)
	assert.Equal(t, []string{"1", "2"}, out.Values("id"))
	assert.True(t, out.Rows[0].IsNull("price"))
	assert.True(t, out.Rows[1].IsNull("branch"))

	// inputs are untouched
	assert.Equal(t, []string{"id", "branch"}, left.Columns)
	assert.Len(t, left.Rows[0].Fields, 2)
}

func TestRecordSet_CloneIsDeep(t *testing.T) {
	rs := NewRecordSet("a")
	rs.Append(NewRow(map[string]string{"a": "1"}))

	clone := rs.Clone()
	clone.Rows[0].Fields["a"] = "changed"
	clone.Columns[0] = "z"

	assert.Equal(t, "1", rs.Rows[0].Get("a"))
	assert.Equal(t, "a", rs.Columns[0])
}

func TestRecordSet_Filter(t *testing.T) {
	rs := NewRecordSet("a")
	for _, v := range []string{"1", "", "3"} {
		rs.Append(NewRow(map[string]string{"a": v}))
	}

	out := rs.Filter(func(r Row) bool { return !r.IsNull("a") })

	assert.Equal(t, []string{"1", "3"}, out.Values("a"))
	assert.Equal(t, 3, rs.Len())

	out.Rows[0].Fields["a"] = "x"
	assert.Equal(t, "1", rs.Rows[0].Get("a"))
}

func TestRecordSet_NilLen(t *testing.T) {
	var rs *RecordSet
	assert.Equal(t, 0, rs.Len())
	assert.Equal(t, 0, rs.Clone().Len())
}
