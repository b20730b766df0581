package ingest

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Outcome records how a raw amount became a number.
type Outcome int

const (
	// OutcomeNumeric means the input was a number or a plain digit string.
	OutcomeNumeric Outcome = iota
	// OutcomeCleaned means formatting characters were stripped before parsing.
	OutcomeCleaned
	// OutcomeMissing means the input was absent and became 0.
	OutcomeMissing
	// OutcomeFallback means the input could not be parsed and became 0.
	OutcomeFallback
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNumeric:
		return "numeric"
	case OutcomeCleaned:
		return "cleaned"
	case OutcomeMissing:
		return "missing"
	case OutcomeFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Result is a normalized amount together with its outcome.
type Result struct {
	Value   float64
	Outcome Outcome
}

// Lossy reports whether the value did not come straight from a number.
func (r Result) Lossy() bool {
	return r.Outcome == OutcomeMissing || r.Outcome == OutcomeFallback
}

// missingTokens are the cell values treated as absent.
var missingTokens = map[string]bool{
	"":         true,
	"#n/a":     true,
	"#n/a n/a": true,
	"#na":      true,
	"<na>":     true,
	"n/a":      true,
	"na":       true,
	"nan":      true,
	"-nan":     true,
	"null":     true,
	"none":     true,
}

// Normalizer coerces raw amount fields into finite floats. It never fails:
// anything it cannot read becomes 0 with OutcomeFallback.
type Normalizer struct {
	// AccountingNegatives reads "(500)" as -500. When false the documented
	// strip rule applies and parentheses are dropped, giving 500.
	AccountingNegatives bool
}

// Normalize converts raw to a Result.
func (n Normalizer) Normalize(raw any) Result {
	switch v := raw.(type) {
	case nil:
		return Result{Outcome: OutcomeMissing}
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return Result{Value: float64(v)}
	case int32:
		return Result{Value: float64(v)}
	case int64:
		return Result{Value: float64(v)}
	case uint:
		return Result{Value: float64(v)}
	case uint32:
		return Result{Value: float64(v)}
	case uint64:
		return Result{Value: float64(v)}
	case decimal.Decimal:
		f, _ := v.Float64()
		return finite(f)
	case string:
		return n.normalizeString(v)
	case []byte:
		return n.normalizeString(string(v))
	default:
		return Result{Outcome: OutcomeFallback}
	}
}

func (n Normalizer) normalizeString(s string) Result {
	s = strings.TrimSpace(s)
	if missingTokens[strings.ToLower(s)] {
		return Result{Outcome: OutcomeMissing}
	}

	// Every string goes through the strip rule, so "2.500" and "1.234.567"
	// in one column are both read as grouped integers.
	negate := n.AccountingNegatives && strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")

	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == '-' {
			return r
		}
		return -1
	}, s)
	if negate {
		cleaned = strings.TrimLeft(cleaned, "-")
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return Result{Outcome: OutcomeFallback}
	}
	if negate {
		f = -f
	}
	if cleaned == s {
		return Result{Value: f}
	}
	return Result{Value: f, Outcome: OutcomeCleaned}
}

func finite(f float64) Result {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Result{Outcome: OutcomeFallback}
	}
	return Result{Value: f}
}
