package ingest

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    float64
		outcome Outcome
	}{
		{"float passes through", 1234.5, 1234.5, OutcomeNumeric},
		{"int passes through", 42, 42, OutcomeNumeric},
		{"int64 passes through", int64(-7), -7, OutcomeNumeric},
		{"float32 passes through", float32(2.5), 2.5, OutcomeNumeric},
		{"decimal passes through", decimal.RequireFromString("10.25"), 10.25, OutcomeNumeric},
		{"numeric string", "1500", 1500, OutcomeNumeric},
		{"padded numeric string", " 1500 ", 1500, OutcomeNumeric},
		{"dot is stripped", "12.5", 125, OutcomeCleaned},
		{"dot grouped thousands", "2.500", 2500, OutcomeCleaned},
		{"single dot group", "1.234", 1234, OutcomeCleaned},
		{"exponent letters stripped", "1e3", 13, OutcomeCleaned},
		{"negative numeric string", "-300", -300, OutcomeNumeric},
		{"thousands separator", "1,234", 1234, OutcomeCleaned},
		{"european thousands", "1.234.567", 1234567, OutcomeCleaned},
		{"currency symbol", "€ 2,500", 2500, OutcomeCleaned},
		{"leading minus survives", "-1,000", -1000, OutcomeCleaned},
		{"parentheses dropped", "(500)", 500, OutcomeCleaned},
		{"nil is missing", nil, 0, OutcomeMissing},
		{"empty is missing", "", 0, OutcomeMissing},
		{"blank is missing", "   ", 0, OutcomeMissing},
		{"nan token is missing", "NaN", 0, OutcomeMissing},
		{"n/a is missing", "N/A", 0, OutcomeMissing},
		{"letters fall back", "abc", 0, OutcomeFallback},
		{"lone dash falls back", "-", 0, OutcomeFallback},
		{"embedded minus falls back", "12-34", 0, OutcomeFallback},
		{"infinity falls back", math.Inf(1), 0, OutcomeFallback},
		{"nan float falls back", math.NaN(), 0, OutcomeFallback},
		{"unsupported type falls back", struct{}{}, 0, OutcomeFallback},
	}

	n := Normalizer{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize(tt.input)
			assert.Equal(t, tt.want, got.Value)
			assert.Equal(t, tt.outcome, got.Outcome)
			assert.False(t, math.IsNaN(got.Value) || math.IsInf(got.Value, 0))
		})
	}
}

func TestNormalize_AccountingNegatives(t *testing.T) {
	n := Normalizer{AccountingNegatives: true}

	got := n.Normalize("(500)")
	assert.Equal(t, -500.0, got.Value)
	assert.Equal(t, OutcomeCleaned, got.Outcome)

	got = n.Normalize("(1,250)")
	assert.Equal(t, -1250.0, got.Value)

	got = n.Normalize("1,250")
	assert.Equal(t, 1250.0, got.Value, "unbracketed values are unaffected")
}

func TestResultLossy(t *testing.T) {
	assert.False(t, Result{Outcome: OutcomeNumeric}.Lossy())
	assert.False(t, Result{Outcome: OutcomeCleaned}.Lossy())
	assert.True(t, Result{Outcome: OutcomeMissing}.Lossy())
	assert.True(t, Result{Outcome: OutcomeFallback}.Lossy())
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "numeric", OutcomeNumeric.String())
	assert.Equal(t, "cleaned", OutcomeCleaned.String())
	assert.Equal(t, "missing", OutcomeMissing.String())
	assert.Equal(t, "fallback", OutcomeFallback.String())
	assert.Equal(t, "unknown", Outcome(99).String())
}
