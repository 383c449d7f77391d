package dataset

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"
)

// parseXLSX reads the first sheet of a spreadsheet. The header row defines
// the columns; missing cells default to null.
func parseXLSX(filename string, raw []byte) (*Tabular, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, &Error{KindMalformed, "malformed spreadsheet: " + err.Error()}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &Error{KindEmpty, "spreadsheet has no sheets"}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &Error{KindMalformed, "malformed spreadsheet: " + err.Error()}
	}
	if len(rows) == 0 {
		return nil, &Error{KindEmpty, "empty spreadsheet"}
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
			if i < len(row) && strings.TrimSpace(row[i]) != "" {
				rec[col] = coerceScalar(row[i])
			} else {
				rec[col] = nil
			}
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, &Error{KindEmpty, "empty spreadsheet"}
	}

	return &Tabular{Filename: filename, Columns: columns, Records: records}, nil
}
