package period

import (
	"fmt"
	"strconv"
	"unicode"
)

// Quarter is a reporting period identified by its closing month.
type Quarter struct {
	Year  int
	Month int // 3, 6, 9 or 12
}

// Number returns the quarter number, 1 through 4.
func (q Quarter) Number() int {
	return q.Month / 3
}

// Token returns the filename token, e.g. "0925" for Q3 2025.
func (q Quarter) Token() string {
	return FormatToken(q.Year, q.Month)
}

// Label returns a human label like "Q3 2025".
func (q Quarter) Label() string {
	return fmt.Sprintf("Q%d %04d", q.Number(), q.Year)
}

// FormatToken returns a quarter token like "0925" (closing month, two-digit year).
func FormatToken(year, month int) string {
	return fmt.Sprintf("%02d%02d", month, year%100)
}

// ParseToken parses "0925" into Q3 2025. Two-digit years are read as 20YY.
func ParseToken(token string) (Quarter, error) {
	if len(token) != 4 {
		return Quarter{}, fmt.Errorf("invalid quarter token %q: want MMYY", token)
	}

	month, err := strconv.Atoi(token[:2])
	if err != nil {
		return Quarter{}, fmt.Errorf("invalid month in quarter token %q: %w", token, err)
	}
	if month < 3 || month > 12 || month%3 != 0 {
		return Quarter{}, fmt.Errorf("invalid month in quarter token %q: %d is not a quarter end", token, month)
	}

	yy, err := strconv.Atoi(token[2:])
	if err != nil {
		return Quarter{}, fmt.Errorf("invalid year in quarter token %q: %w", token, err)
	}

	return Quarter{Year: 2000 + yy, Month: month}, nil
}

// ValidatePattern checks a quarter selector used to filter file names.
// Any non-empty alphanumeric token is accepted, so prefixes like "09" work too.
func ValidatePattern(pattern string) error {
	if pattern == "" {
		return fmt.Errorf("empty quarter pattern")
	}
	for _, r := range pattern {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return fmt.Errorf("invalid quarter pattern %q: only letters and digits are allowed", pattern)
		}
	}
	return nil
}

// Range returns every quarter from fromYear through toYear inclusive, oldest first.
func Range(fromYear, toYear int) []Quarter {
	var out []Quarter
	for y := fromYear; y <= toYear; y++ {
		for m := 3; m <= 12; m += 3 {
			out = append(out, Quarter{Year: y, Month: m})
		}
	}
	return out
}

// Before reports whether q ends earlier than other.
func (q Quarter) Before(other Quarter) bool {
	if q.Year != other.Year {
		return q.Year < other.Year
	}
	return q.Month < other.Month
}
