package timeline

// tradePalette colors synthetic trade groups when a project has no phases.
// Assignment is cyclic in first-seen order.
var tradePalette = []string{
	"#3B82F6",
	"#F59E0B",
	"#10B981",
	"#EF4444",
	"#8B5CF6",
	"#EC4899",
	"#14B8A6",
	"#F97316",
}

// PaletteColor returns the palette entry for the i-th distinct trade.
func PaletteColor(i int) string {
	if i < 0 {
		i = -i
	}
	return tradePalette[i%len(tradePalette)]
}
