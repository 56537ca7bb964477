package dashboard

import (
	"fmt"
	"math"
	"strconv"
)

var byteUnits = []string{"Bytes", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// FormatBytes renders a byte count with base-1024 units and at most two decimals,
// e.g. 1536 -> "1.5 KB". Trailing zeros are dropped, so 1024 -> "1 KB".
func FormatBytes(n uint64) string {
	if n == 0 {
		return "0 Bytes"
	}
	value := float64(n)
	i := 0
	for value >= 1024 && i < len(byteUnits)-1 {
		value /= 1024
		i++
	}
	rounded := math.Round(value*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + byteUnits[i]
}

// FormatUptime renders seconds as HHhMMmSSs. Hours are not wrapped at 24 and
// grow past two digits when needed.
func FormatUptime(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds / 60) % 60
	secs := seconds % 60
	return fmt.Sprintf("%02dh%02dm%02ds", hours, minutes, secs)
}
