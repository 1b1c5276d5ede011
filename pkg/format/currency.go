// Package format renders numbers the way Brazilian budget sheets print them.
package format

import (
	"fmt"
	"math"
	"strings"
)

// Currency returns a real-denominated string with thousands separators (e.g., "-R$ 1.234,56").
func Currency(amount float64) string {
	formatted := formatPositive(math.Abs(amount), 2)
	if amount < 0 {
		return "-R$ " + formatted
	}
	return "R$ " + formatted
}

// Number returns a value with "." thousands separators and "," decimals (e.g., "1.234,56").
func Number(amount float64, precision int) string {
	sign := ""
	if amount < 0 && formatPositive(math.Abs(amount), precision) != formatPositive(0, precision) {
		sign = "-"
	}
	return sign + formatPositive(math.Abs(amount), precision)
}

// Decimal returns a value with "," decimals and no thousands separator
// (e.g., "1234,56"), as spreadsheet CSV imports expect.
func Decimal(amount float64, precision int) string {
	if precision < 0 {
		precision = 0
	}
	formatted := fmt.Sprintf("%.*f", precision, amount)
	if strings.Trim(formatted, "-0.") == "" {
		formatted = strings.TrimPrefix(formatted, "-")
	}
	return strings.Replace(formatted, ".", ",", 1)
}

// Area returns a square-metre figure (e.g., "1.234,56 m²").
func Area(value float64) string {
	return Number(value, 2) + " m²"
}

// Percent returns a percentage with two decimals (e.g., "3,61%").
func Percent(value float64) string {
	return Number(value, 2) + "%"
}

func formatPositive(value float64, precision int) string {
	if precision < 0 {
		precision = 0
	}
	formatted := fmt.Sprintf("%.*f", precision, value)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := ""
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte('.')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	if decPart == "" {
		return intPart
	}
	return intPart + "," + decPart
}
