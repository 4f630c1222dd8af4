package notifier

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount renders an INR amount with Indian digit grouping
// (12,34,567.50). Whole amounts drop the paise.
func FormatAmount(amount decimal.Decimal) string {
	fixed := amount.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	grouped := whole
	if len(whole) > 3 {
		head, tail := whole[:len(whole)-3], whole[len(whole)-3:]
		parts := make([]string, 0, len(head)/2+1)
		for len(head) > 2 {
			parts = append([]string{head[len(head)-2:]}, parts...)
			head = head[:len(head)-2]
		}
		if head != "" {
			parts = append([]string{head}, parts...)
		}
		grouped = strings.Join(parts, ",") + "," + tail
	}

	if amount.IsNegative() {
		grouped = "-" + grouped
	}
	if frac == "00" {
		return grouped
	}
	return grouped + "." + frac
}
