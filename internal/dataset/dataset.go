// Package dataset normalizes uploaded tabular files (CSV, JSON, XLSX) into a
// canonical column/record representation that is safe to summarize into a
// prompt. It never embeds a full dataset anywhere; callers must go through
// Summarize to get a bounded rendering.
package dataset

import (
	"fmt"
	"path/filepath"
	"strings"
)

// MaxInputSize is enforced before any parsing happens.
const MaxInputSize = 5 * 1024 * 1024 // 5MB

// Format identifies how raw content should be parsed.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// Kind classifies dataset errors. All of them are user-correctable.
type Kind string

const (
	KindTooLarge          Kind = "too_large"
	KindUnsupportedFormat Kind = "unsupported_format"
	KindEmpty             Kind = "empty"
	KindMalformed         Kind = "malformed"
	KindNoNumericColumn   Kind = "no_numeric_column"
)

// Error is a typed dataset failure with a user-facing message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Record maps column name to a scalar value (string, float64, bool or nil).
type Record map[string]any

// Tabular is the canonical dataset shape.
type Tabular struct {
	Filename string   `json:"filename"`
	Columns  []string `json:"columns"`
	Records  []Record `json:"data"`
}

// DetectFormat infers the format from the filename extension.
func DetectFormat(filename string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, true
	case ".json":
		return FormatJSON, true
	case ".xlsx", ".xls":
		return FormatXLSX, true
	}
	return "", false
}

// Ingest parses raw file content into a Tabular. The size limit is checked
// before any parsing; an unknown format fails without looking at the content.
func Ingest(filename string, raw []byte, format Format) (*Tabular, error) {
	if len(raw) > MaxInputSize {
		return nil, &Error{KindTooLarge, fmt.Sprintf("file too large, maximum size is %dMB", MaxInputSize/1024/1024)}
	}
	switch format {
	case FormatCSV:
		return parseCSV(filename, raw)
	case FormatJSON:
		return parseJSON(filename, raw)
	case FormatXLSX:
		return parseXLSX(filename, raw)
	}
	return nil, &Error{KindUnsupportedFormat, fmt.Sprintf("unsupported file format %q, use csv, json or xlsx", string(format))}
}

// Validate reports whether the dataset is usable for charting. The three
// failure cases carry distinct messages so the UI can tell them apart.
func Validate(t *Tabular) error {
	if len(t.Records) == 0 {
		return &Error{KindEmpty, "no data rows found"}
	}
	if len(t.Columns) == 0 {
		return &Error{KindMalformed, "no columns found"}
	}
	first := t.Records[0]
	for _, col := range t.Columns {
		if isNumeric(first[col]) {
			return nil
		}
	}
	return &Error{KindNoNumericColumn, "no numeric column found for charting"}
}

func isNumeric(v any) bool {
	switch val := v.(type) {
	case float64, float32, int, int64:
		return true
	case string:
		_, ok := coerceNumber(val)
		return ok
	}
	return false
}
