package utils

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestExpandInputPatterns(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "branch_b.csv"))
	touch(t, filepath.Join(dir, "branch_a.csv"))
	touch(t, filepath.Join(dir, "notes.txt"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.csv"), 0755))

	got, err := ExpandInputPatterns([]string{
		"first.csv",
		filepath.Join(dir, "*.csv"),
		filepath.Join(dir, "*.xlsx"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"first.csv",
		filepath.Join(dir, "branch_a.csv"),
		filepath.Join(dir, "branch_b.csv"),
		filepath.Join(dir, "*.xlsx"),
	}, got)
}

func TestExpandInputPatterns_BadPattern(t *testing.T) {
	_, err := ExpandInputPatterns([]string{"[a-"})
	assert.Error(t, err)
}

func TestGenerateOutputFileName(t *testing.T) {
	now := time.Date(2024, 1, 15, 14, 30, 22, 0, time.UTC)

	tests := []struct {
		name   string
		format string
		params map[string]string
		want   string
	}{
		{"no placeholders", "total_sales_per_branch.csv", nil, "total_sales_per_branch.csv"},
		{"date", "out/sales_{date}.csv", nil, "out/sales_20240115.csv"},
		{"timestamp", "sales_{timestamp}.xlsx", nil, "sales_20240115_143022.xlsx"},
		{"run id", "sales_{run_id}.csv", map[string]string{"run_id": "abc"}, "sales_abc.csv"},
		{"custom", "{region}_{time}.csv", map[string]string{"region": "north"}, "north_143022.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateOutputFileName(tt.format, now, tt.params))
		})
	}
}

func TestGenerateOutputFileName_GeneratesUUID(t *testing.T) {
	name := GenerateOutputFileName("{uuid}", time.Now(), nil)
	_, err := uuid.Parse(name)
	assert.NoError(t, err)
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "out.csv")

	err := WriteFileAtomic(target, func(w io.Writer) error {
		_, err := io.WriteString(w, "branch,total\n")
		return err
	})
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "branch,total\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestWriteFileAtomic_FailureKeepsTarget(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(target, []byte("previous"), 0644))

	boom := errors.New("boom")
	err := WriteFileAtomic(target, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.csv")
	touch(t, file)

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(dir))
	assert.False(t, FileExists(filepath.Join(dir, "missing.csv")))

	size, err := GetFileSize(file)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)
}
