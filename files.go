/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
)

// humanReadableSize formats a byte count with SI units, e.g. "1.5 kB".
func humanReadableSize(bytes int64) string {
	const units = "kMGTPE"

	if bytes < 1000 {
		return fmt.Sprintf("%d B", bytes)
	}

	size := float64(bytes)
	exp := -1
	for size >= 1000 && exp < len(units)-1 {
		size /= 1000
		exp++
	}

	return fmt.Sprintf("%.1f %cB", size, units[exp])
}
