package report

import "fmt"

var sizeUnits = [...]string{"Bytes", "KB", "MB", "GB", "TB"}

// FormatBytes renders a byte count with one fractional digit in the largest
// binary unit the count reaches: 0 -> "0 Bytes", 1536 -> "1.5 KB".
// Counts of a petabyte and above stay in TB.
func FormatBytes(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	unit := 0
	scale := int64(1)
	for unit < len(sizeUnits)-1 && bytes/scale >= 1024 {
		scale *= 1024
		unit++
	}

	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(scale), sizeUnits[unit])
}
