package chart

// defaultPalette works in both light and dark themes.
var defaultPalette = []string{
	"#3b82f6", // blue
	"#8b5cf6", // violet
	"#ec4899", // pink
	"#f59e0b", // amber
	"#10b981", // emerald
	"#06b6d4", // cyan
	"#f97316", // orange
	"#6366f1", // indigo
}

// DefaultColors returns the default chart palette.
func DefaultColors() []string {
	out := make([]string, len(defaultPalette))
	copy(out, defaultPalette)
	return out
}

// EnsureColors returns exactly n colors, preferring the provided ones and
// cycling the base palette when not enough were given.
func EnsureColors(n int, provided []string) []string {
	base := provided
	if len(base) == 0 {
		base = defaultPalette
	}
	if len(base) >= n {
		out := make([]string, n)
		copy(out, base[:n])
		return out
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, base[i%len(base)])
	}
	return out
}
