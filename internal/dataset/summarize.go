package dataset

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Summarize renders a bounded, deterministic text view of the dataset:
// filename, columns, total row count and at most maxRows records. This is the
// only dataset representation that may be embedded in a prompt.
func Summarize(t *Tabular, maxRows int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\n", t.Filename)
	fmt.Fprintf(&b, "Columns: %s\n", strings.Join(t.Columns, ", "))
	fmt.Fprintf(&b, "Total rows: %d\n\n", len(t.Records))
	b.WriteString("Data (first rows):\n[\n")

	shown := t.Records
	if maxRows >= 0 && len(shown) > maxRows {
		shown = shown[:maxRows]
	}
	for i, rec := range shown {
		b.WriteString("  ")
		b.WriteString(renderRecord(rec, t.Columns))
		if i < len(shown)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("]")

	if rest := len(t.Records) - len(shown); rest > 0 {
		fmt.Fprintf(&b, "\n\n+%d more rows", rest)
	}
	return b.String()
}

// renderRecord emits one record as a JSON object with the declared columns
// first, in order, followed by any extra keys sorted. Map iteration order
// must never leak into prompt text.
func renderRecord(rec Record, columns []string) string {
	var b strings.Builder
	b.WriteString("{")
	first := true
	write := func(key string, val any) {
		if !first {
			b.WriteString(", ")
		}
		first = false
		k, _ := json.Marshal(key)
		v, err := json.Marshal(val)
		if err != nil {
			v = []byte("null")
		}
		b.Write(k)
		b.WriteString(": ")
		b.Write(v)
	}
	seen := make(map[string]bool, len(columns))
	for _, col := range columns {
		seen[col] = true
		if val, ok := rec[col]; ok {
			write(col, val)
		}
	}
	var extras []string
	for k := range rec {
		if !seen[k] {
			extras = append(extras, k)
		}
	}
	sort.Strings(extras)
	for _, k := range extras {
		write(k, rec[k])
	}
	b.WriteString("}")
	return b.String()
}
