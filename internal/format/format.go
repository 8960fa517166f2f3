// Package format renders amounts and dates for display.
package format

import "github.com/dustin/go-humanize"

const rupee = "₹ "

// Currency renders an amount as rupees with grouped thousands and two
// decimals, e.g. "₹ 1,234.50".
func Currency(v float64) string {
	return rupee + humanize.FormatFloat("#,###.##", v)
}

// Count renders an integer with grouped thousands.
func Count(n int64) string {
	return humanize.Comma(n)
}

// Days renders a missed-day count, e.g. "1 day" or "3 days".
func Days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return Count(int64(n)) + " days"
}
