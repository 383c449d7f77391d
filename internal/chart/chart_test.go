package chart

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// Extra scalar fields on data points (e.g. a second scatter series) must
// survive a decode/encode round trip.
func TestDataPoint_ExtraFieldsRoundTrip(t *testing.T) {
	in := []byte(`{"name":"Jan","value":400,"forecast":420,"region":"EU"}`)

	var p DataPoint
	require.NoError(t, json.Unmarshal(in, &p))
	require.Equal(t, "Jan", p.Name)
	require.Equal(t, float64(400), p.Value)
	require.Equal(t, float64(420), p.Extra["forecast"])
	require.Equal(t, "EU", p.Extra["region"])

	out, err := json.Marshal(p)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	require.Equal(t, float64(420), m["forecast"])
	require.Equal(t, "Jan", m["name"])
}

func TestEnsureColors_CyclesPalette(t *testing.T) {
	two := []string{"#111111", "#222222"}

	got := EnsureColors(5, two)
	require.Equal(t, []string{"#111111", "#222222", "#111111", "#222222", "#111111"}, got)

	got = EnsureColors(1, two)
	require.Equal(t, []string{"#111111"}, got)

	defaults := EnsureColors(3, nil)
	require.Len(t, defaults, 3)
	require.Equal(t, DefaultColors()[:3], defaults)
}
