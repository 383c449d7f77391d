package dataset

import (
	"bytes"
	"encoding/csv"
	"math"
	"strconv"
	"strings"
)

// parseCSV reads delimited text. The first row is the header; blank lines are
// skipped; values that parse unambiguously as numbers are coerced to float64.
// Ragged rows never introduce columns beyond the header.
func parseCSV(filename string, raw []byte) (*Tabular, error) {
	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, &Error{KindMalformed, "malformed CSV: " + err.Error()}
	}
	if len(rows) == 0 {
		return nil, &Error{KindEmpty, "empty CSV file"}
	}

	columns := make([]string, 0, len(rows[0]))
	for _, h := range rows[0] {
		columns = append(columns, strings.TrimSpace(h))
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		rec := make(Record, len(columns))
		for i, col := range columns {
			if i < len(row) {
				rec[col] = coerceScalar(row[i])
			}
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, &Error{KindEmpty, "empty CSV file"}
	}

	return &Tabular{Filename: filename, Columns: columns, Records: records}, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// coerceScalar turns a raw cell into a number, bool or string.
func coerceScalar(s string) any {
	t := strings.TrimSpace(s)
	if t == "" {
		return s
	}
	if f, ok := coerceNumber(t); ok {
		return f
	}
	switch t {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

// coerceNumber accepts only plain decimal notation; hex floats, Inf and NaN
// would parse but are not unambiguous tabular numbers.
func coerceNumber(s string) (float64, bool) {
	t := strings.TrimSpace(s)
	if t == "" || strings.ContainsAny(t, "xXpP") {
		return 0, false
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
