// Package prompt builds the system instruction sent to the completion
// service. Build is a pure function: no I/O, no clock, no randomness.
package prompt

import (
	"encoding/json"
	"strings"

	"chartchat/internal/chart"
)

const responseContract = `You are an assistant specialized in generating chart specifications from user requests.

Respond ONLY with a single valid JSON object in the following format:
{
  "charts": [
    {
      "type": "line|bar|pie|area|scatter",
      "title": "Chart title",
      "data": [
        {"name": "Name1", "value": 100},
        {"name": "Name2", "value": 200}
      ],
      "xAxisLabel": "X axis label (optional)",
      "yAxisLabel": "Y axis label (optional)",
      "colors": ["#3b82f6", "#10b981"] (optional),
      "description": "Chart description (optional)"
    }
  ],
  "isAdjustment": false,
  "explanation": "Brief explanation of what was produced (optional)"
}

Available chart types:
- line: for temporal or sequential data
- bar: for comparisons between categories
- pie: for showing proportions
- area: for cumulative data over time
- scatter: for correlations between two variables

If the request cannot be satisfied, respond with:
{"charts": [], "error": "reason the request could not be satisfied"}
and no other fields.

Use colors that follow a modern, accessible palette.`

const freshRequestRules = `Treat the user's message as a fresh chart request and set "isAdjustment" to false.
Only invent reasonable sample data when the user supplied numeric values to plot; if the message carries no plottable values and no clear subject, use the error response instead.`

const adjustmentRules = `The user is looking at an active chart set. Decide what their message means:
- If it modifies the active charts (colors, titles, types, adding or removing series), set "isAdjustment" to true and return the FULL updated chart set, preserving every chart the message does not touch.
- If it asks for something unrelated to the active charts, set "isAdjustment" to false and build a new chart set; the previous one is discarded.`

const datasetRules = `The user uploaded a dataset, summarized below. Chart data MUST be derived only from this dataset's columns and values. Never invent values that are not in the dataset, and reference the dataset's actual column names in titles and axis labels.`

// Build produces the system instruction for one generation turn. The four
// mode combinations (dataset yes/no, active chart set yes/no) share the same
// response contract and differ only in guidance.
func Build(hasDataset bool, datasetSummary string, activeCharts []chart.Spec) string {
	var b strings.Builder
	b.WriteString(responseContract)

	hasActive := len(activeCharts) > 0

	switch {
	case hasActive:
		b.WriteString("\n\n")
		b.WriteString(adjustmentRules)
		b.WriteString("\n\nActive chart set:\n")
		b.WriteString(renderCharts(activeCharts))
	case hasDataset:
		// No sample-data allowance here; the dataset rules forbid invented values.
		b.WriteString("\n\nTreat the user's message as a fresh chart request and set \"isAdjustment\" to false.")
	default:
		b.WriteString("\n\n")
		b.WriteString(freshRequestRules)
	}

	if hasDataset {
		b.WriteString("\n\n")
		b.WriteString(datasetRules)
		b.WriteString("\n\n")
		b.WriteString(datasetSummary)
	}

	return b.String()
}

func renderCharts(charts []chart.Spec) string {
	out, err := json.Marshal(charts)
	if err != nil {
		return "[]"
	}
	return string(out)
}
