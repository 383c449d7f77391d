// Package chart defines the chart specification wire types shared with the
// rendering front end, plus the conversation message shape carried through
// the generation flow and the history store.
package chart

import "encoding/json"

// Type enumerates the supported chart types.
type Type string

const (
	TypeLine    Type = "line"
	TypeBar     Type = "bar"
	TypePie     Type = "pie"
	TypeArea    Type = "area"
	TypeScatter Type = "scatter"
)

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Spec is a single chart specification. It is immutable once produced; the
// history store snapshots whole slices of Spec per version.
type Spec struct {
	Type        Type        `json:"type"`
	Title       string      `json:"title"`
	Data        []DataPoint `json:"data"`
	XAxisLabel  string      `json:"xAxisLabel,omitempty"`
	YAxisLabel  string      `json:"yAxisLabel,omitempty"`
	Colors      []string    `json:"colors,omitempty"`
	Description string      `json:"description,omitempty"`
}

// DataPoint is one series entry. Beyond the mandatory name/value pair the
// model may emit extra scalar fields (e.g. a second series for scatter
// charts); those round-trip through Extra.
type DataPoint struct {
	Name  string
	Value float64
	Extra map[string]any
}

// MarshalJSON flattens Extra into the same object as name and value.
func (p DataPoint) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(p.Extra)+2)
	for k, v := range p.Extra {
		m[k] = v
	}
	m["name"] = p.Name
	m["value"] = p.Value
	return json.Marshal(m)
}

// UnmarshalJSON picks name and value out of the object and keeps every other
// field in Extra.
func (p *DataPoint) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	if name, ok := m["name"].(string); ok {
		p.Name = name
	}
	if value, ok := m["value"].(float64); ok {
		p.Value = value
	}
	delete(m, "name")
	delete(m, "value")
	if len(m) > 0 {
		p.Extra = m
	} else {
		p.Extra = nil
	}
	return nil
}

// ConversationMessage is one user or assistant turn, optionally carrying the
// chart set the assistant produced on that turn.
type ConversationMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
	Charts    []Spec `json:"chartData,omitempty"`
}
