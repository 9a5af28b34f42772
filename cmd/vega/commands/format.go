package commands

import (
	"fmt"
	"strings"
)

// formatDollars renders a dollar amount with thousands separators.
func formatDollars(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	whole := int64(amount)
	cents := int64((amount-float64(whole))*100 + 0.5)

	digits := fmt.Sprintf("%d", whole)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}

	sign := "$"
	if negative {
		sign = "-$"
	}
	return fmt.Sprintf("%s%s.%02d", sign, b.String(), cents)
}
