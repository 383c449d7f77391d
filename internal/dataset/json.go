package dataset

import (
	"bytes"
	"encoding/json"
)

// parseJSON handles the three accepted shapes: a top-level array of objects,
// an object whose first array-valued property holds the records, or a single
// object wrapped as a one-record dataset.
func parseJSON(filename string, raw []byte) (*Tabular, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, &Error{KindEmpty, "empty JSON file"}
	}

	var rawRecords []json.RawMessage
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &rawRecords); err != nil {
			return nil, &Error{KindMalformed, "malformed JSON: " + err.Error()}
		}
	case '{':
		if arr, ok, err := firstArrayProperty(trimmed); err != nil {
			return nil, &Error{KindMalformed, "malformed JSON: " + err.Error()}
		} else if ok {
			if err := json.Unmarshal(arr, &rawRecords); err != nil {
				return nil, &Error{KindMalformed, "malformed JSON: " + err.Error()}
			}
		} else {
			rawRecords = []json.RawMessage{trimmed}
		}
	default:
		return nil, &Error{KindMalformed, "invalid JSON structure, expected an array or object"}
	}

	if len(rawRecords) == 0 {
		return nil, &Error{KindEmpty, "empty JSON file"}
	}

	records := make([]Record, 0, len(rawRecords))
	for _, rr := range rawRecords {
		var rec Record
		if err := json.Unmarshal(rr, &rec); err != nil {
			return nil, &Error{KindMalformed, "malformed JSON: records must be objects"}
		}
		records = append(records, rec)
	}

	columns, err := objectKeys(rawRecords[0])
	if err != nil {
		return nil, &Error{KindMalformed, "malformed JSON: " + err.Error()}
	}

	return &Tabular{Filename: filename, Columns: columns, Records: records}, nil
}

// firstArrayProperty walks the object's properties in document order and
// returns the value of the first one holding an array.
func firstArrayProperty(obj []byte) (json.RawMessage, bool, error) {
	dec := json.NewDecoder(bytes.NewReader(obj))
	if _, err := dec.Token(); err != nil { // opening brace
		return nil, false, err
	}
	for dec.More() {
		if _, err := dec.Token(); err != nil { // property name
			return nil, false, err
		}
		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return nil, false, err
		}
		v := bytes.TrimSpace(val)
		if len(v) > 0 && v[0] == '[' {
			return val, true, nil
		}
	}
	return nil, false, nil
}

// objectKeys returns the keys of a JSON object in document order, which a
// plain map unmarshal would lose.
func objectKeys(obj []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(obj))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		keys = append(keys, key)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}
