package bidtracker

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// NewID generates a registry-unique identifier. Also used to repair remote
// rows that arrive with a blank or duplicated ID.
func NewID() string {
	return uuid.NewString()
}

// groupDigits inserts thousands separators into a non-negative decimal string.
func groupDigits(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	rem := n % 3
	if rem > 0 {
		b.WriteString(digits[:rem])
	}
	for i := rem; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatNumberWithCommas renders n with ko-KR thousands grouping.
func FormatNumberWithCommas(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := groupDigits(strconv.FormatInt(n, 10))
	if neg {
		return "-" + s
	}
	return s
}

// FormatCurrency renders a KRW amount, e.g. 1234000 -> "1,234,000원".
func FormatCurrency(amount int64) string {
	return FormatNumberWithCommas(amount) + "원"
}

// ParseNumberFromCommas strips every non-digit character and parses the rest.
// Returns 0 for empty or unparseable input.
func ParseNumberFromCommas(s string) int64 {
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	n, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Korean compact units, largest first.
var compactUnits = []struct {
	value  float64
	suffix string
}{
	{1e12, "조"},
	{1e8, "억"},
	{1e4, "만"},
}

// FormatCompactNumber renders n in compact ko-KR notation with at most one
// fraction digit, e.g. 4200000000 -> "42억", 123000 -> "12.3만".
func FormatCompactNumber(n int64) string {
	f := float64(n)
	neg := f < 0
	if neg {
		f = -f
	}
	out := ""
	for _, u := range compactUnits {
		if f >= u.value {
			out = trimTrailingZero(strconv.FormatFloat(f/u.value, 'f', 1, 64)) + u.suffix
			break
		}
	}
	if out == "" {
		out = strconv.FormatFloat(f, 'f', -1, 64)
	}
	if neg {
		return "-" + out
	}
	return out
}

func trimTrailingZero(s string) string {
	return strings.TrimSuffix(s, ".0")
}
