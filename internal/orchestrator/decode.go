package orchestrator

import (
	"bytes"
	"encoding/json"
	"strings"

	"chartchat/internal/chart"
	"chartchat/internal/logger"
)

type wireResult struct {
	Charts       []chart.Spec `json:"charts"`
	IsAdjustment bool         `json:"isAdjustment"`
	Explanation  string       `json:"explanation"`
	Error        string       `json:"error"`
}

// decodeResult is the two-stage decoder for model output: a strict parse of
// the whole content first, then a parse of the first balanced brace-delimited
// substring. Both stages report success explicitly instead of raising.
func decodeResult(content string) (*Result, bool) {
	if r, ok := strictDecode([]byte(content)); ok {
		return r, true
	}
	if fragment, ok := balancedObject(content); ok {
		if r, ok := strictDecode(fragment); ok {
			logger.L.Debug("completion content was not pure JSON; salvaged embedded object")
			return r, true
		}
	}
	return nil, false
}

// strictDecode parses b as exactly one JSON object, defaulting a missing
// charts field to an empty slice and a missing isAdjustment to false.
func strictDecode(b []byte) (*Result, bool) {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	var w wireResult
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return nil, false
	}
	charts := w.Charts
	if charts == nil {
		charts = []chart.Spec{}
	}
	return &Result{
		Charts:       charts,
		IsAdjustment: w.IsAdjustment,
		Explanation:  w.Explanation,
		ErrorMessage: w.Error,
	}, true
}

// balancedObject finds the first balanced {...} substring, tracking string
// literals and escapes so braces inside values don't end the scan early.
func balancedObject(s string) ([]byte, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return nil, false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return []byte(s[start : i+1]), true
			}
		}
	}
	return nil, false
}
