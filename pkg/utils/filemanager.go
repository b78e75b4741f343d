// =============================================================================
// Sales Aggregator - File Manager Utility
// =============================================================================
//
// This module provides file management utilities, including:
//   - Input discovery (glob expansion)
//   - Output file naming with placeholders
//   - Atomic output writes
//   - Existence and size checks
//
// WRITE STRATEGY:
//   - Output is written to a temporary file in the target directory
//   - The temporary file is synced, closed and renamed over the target
//   - On any failure the temporary file is removed and the target is left
//     exactly as it was
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// INPUT DISCOVERY
// =============================================================================

// ExpandInputPatterns resolves glob patterns into file paths.
//
// Each pattern is expanded in place, so the relative order of the arguments
// is preserved and only the matches of a single pattern are sorted. Plain
// paths are passed through untouched. A pattern that matches nothing is
// also passed through, so that it is later reported as a missing input
// rather than silently ignored. Directories are never returned for a glob.
func ExpandInputPatterns(patterns []string) ([]string, error) {
	var result []string

	for _, pattern := range patterns {
		if !hasGlobMeta(pattern) {
			result = append(result, pattern)
			continue
		}

		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid input pattern %q: %w", pattern, err)
		}

		var files []string
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			files = append(files, match)
		}

		if len(files) == 0 {
			result = append(result, pattern)
			continue
		}

		sort.Strings(files)
		result = append(result, files...)
	}

	return result, nil
}

// hasGlobMeta reports whether path contains any glob metacharacter.
func hasGlobMeta(path string) bool {
	return strings.ContainsAny(path, `*?[\`)
}

// =============================================================================
// FILE NAMING
// =============================================================================

// GenerateOutputFileName expands placeholders in an output path.
//
// Placeholders:
//   {run_id}    - The run identifier (params["run_id"], or a new UUID)
//   {uuid}      - Alias of {run_id}
//   {timestamp} - now as YYYYMMDD_HHMMSS
//   {date}      - now as YYYYMMDD
//   {time}      - now as HHMMSS
//
// Any other key in params replaces "{key}".
//
// EXAMPLE:
//   format: "reports/sales_{date}.csv"
//   output: "reports/sales_20240115.csv"
func GenerateOutputFileName(format string, now time.Time, params map[string]string) string {
	id := params["run_id"]
	if id == "" {
		id = uuid.New().String()
	}

	replacements := map[string]string{
		"{run_id}":    id,
		"{uuid}":      id,
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	return result
}

// =============================================================================
// ATOMIC WRITES
// =============================================================================

// WriteFileAtomic writes a file through write and renames it into place.
// Missing parent directories are created. The target is never observed
// partially written, and a failed write leaves any existing target intact.
func WriteFileAtomic(path string, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err = os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", tmpName, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}

	return nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// FileExists reports whether path exists and is a regular file (or a link
// to one).
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// GetFileSize returns the size of a file in bytes.
func GetFileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
