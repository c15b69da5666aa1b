// Package source reads the batch of user ids the pipeline works on.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// idColumns are the accepted header names for the user id column, in
// lookup order. Matching is case-sensitive.
var idColumns = []string{"user_id", "UserID"}

// missingMarkers are cell values treated as absent, like an empty cell.
var missingMarkers = map[string]bool{
	"NA": true, "N/A": true, "NaN": true, "nan": true,
	"null": true, "NULL": true, "None": true,
}

// ReadUserIDs returns the user ids listed in the CSV file at path, in row
// order and with duplicates kept. Rows with a missing id are skipped.
func ReadUserIDs(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening identity file: %w", err)
	}
	defer f.Close()

	return readUserIDs(path, f)
}

// File is an identity file on disk.
type File struct {
	Path string
}

// ReadUserIDs implements pipeline.IdentifierSource.
func (f File) ReadUserIDs() ([]int, error) {
	return ReadUserIDs(f.Path)
}

func readUserIDs(path string, r io.Reader) ([]int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &SchemaError{Path: path}
	}
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	// Header names must match exactly; only data cells are trimmed.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	col := -1
	for _, name := range idColumns {
		for i, h := range header {
			if h == name {
				col = i
				break
			}
		}
		if col >= 0 {
			break
		}
	}
	if col < 0 {
		return nil, &SchemaError{Path: path, Columns: header}
	}

	var ids []int
	row := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			return nil, fmt.Errorf("reading %s row %d: %w", path, row, err)
		}
		if col >= len(rec) {
			continue
		}

		raw := strings.TrimSpace(rec[col])
		if raw == "" || missingMarkers[raw] {
			continue
		}
		id, ok := parseID(raw)
		if !ok {
			return nil, &ValueError{Path: path, Row: row, Value: raw}
		}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return nil, &EmptyInputError{Path: path}
	}
	return ids, nil
}

// parseID accepts plain integers and integral floats such as "3.0", which is
// how spreadsheet exports write an id column that had blank cells.
func parseID(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f < math.MinInt || f > math.MaxInt {
		return 0, false
	}
	return int(f), true
}
