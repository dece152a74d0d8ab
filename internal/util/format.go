package util

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// FormatUSD renders an amount in cents as a dollar string.
// Example: 150050 -> "$1,500.50".
func FormatUSD(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	dollars := humanize.Comma(cents / 100)
	if rem := cents % 100; rem != 0 {
		return fmt.Sprintf("%s$%s.%02d", sign, dollars, rem)
	}
	return fmt.Sprintf("%s$%s", sign, dollars)
}

// TruncateContent shortens a string for notification titles.
func TruncateContent(content string, maxLength int) string {
	if len(content) <= maxLength {
		return content
	}
	return content[:maxLength] + "..."
}

func BoolPointer(b bool) *bool {
	return &b
}

func StringPointer(s string) *string {
	return &s
}

func Int64Pointer(i int64) *int64 {
	return &i
}
