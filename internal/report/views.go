package report

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/bankbench-dev/bankbench/internal/kpi"
	"github.com/bankbench-dev/bankbench/internal/model"
)

// Tile is one headline metric of a bank compared with the market.
type Tile struct {
	Label   string
	Value   float64
	Market  float64 // NaN when no market average exists
	Percent bool
	// Inverse marks metrics where a lower value is better.
	Inverse bool
}

// Delta returns Value minus Market; NaN when the market is undefined.
func (t Tile) Delta() float64 {
	return t.Value - t.Market
}

// Favorable reports whether the bank beats the market on this metric.
func (t Tile) Favorable() bool {
	d := t.Delta()
	if math.IsNaN(d) || d == 0 {
		return false
	}
	return (d > 0) != t.Inverse
}

// Tiles returns net profit, cost to income, operating income and operating
// expense for row, each against the market average.
func Tiles(row model.KPIRow, avg model.MarketAverages) []Tile {
	return []Tile{
		{Label: "Net profit", Value: row.NetProfitFinal, Market: avg.Get(model.FieldNetProfitFinal)},
		{Label: "Cost to income", Value: row.CostToIncome, Market: avg.Get(model.FieldCostToIncome), Percent: true, Inverse: true},
		{Label: "Operating income", Value: row.OperatingIncome, Market: avg.Get(model.FieldOperatingIncome)},
		{Label: "Operating expense", Value: row.OperatingExpense, Market: avg.Get(model.FieldOperatingExpense), Inverse: true},
	}
}

// Slice is one category of an income or expense breakdown.
type Slice struct {
	Label    string
	Position string
	Value    float64
}

type category struct {
	label    string
	position string
}

// IncomeBreakdown returns the strictly positive income categories of row.
func IncomeBreakdown(row model.WideRow, m kpi.Mapping) []Slice {
	return breakdown(row, []category{
		{"Interest income", m.InterestIncome},
		{"Fee income", m.FeeIncome},
		{"Other income", m.OtherIncome},
		{"FX differences", m.FXGains},
	}, false)
}

// ExpenseBreakdown returns the expense categories of row. Expenses may be
// filed with either sign, so absolute values are used and zeros dropped.
func ExpenseBreakdown(row model.WideRow, m kpi.Mapping) []Slice {
	return breakdown(row, []category{
		{"Interest expense", m.InterestExpense},
		{"Fee expense", m.FeeExpense},
		{"Staff costs", m.StaffCosts},
		{"Depreciation", m.Depreciation},
		{"Admin costs", m.AdminCosts},
		{"Other expense", m.OtherExpense},
		{"Provisions", m.Provisions},
	}, true)
}

func breakdown(row model.WideRow, cats []category, abs bool) []Slice {
	var out []Slice
	for _, c := range cats {
		if !row.Has(c.position) {
			continue
		}
		v := row.Value(c.position)
		if abs {
			v = math.Abs(v)
		}
		if v > 0 {
			out = append(out, Slice{Label: c.label, Position: c.position, Value: v})
		}
	}
	return out
}

// Share returns each slice's fraction of the breakdown total.
func Share(slices []Slice) []float64 {
	total := 0.0
	for _, s := range slices {
		total += s.Value
	}
	shares := make([]float64, len(slices))
	if total == 0 {
		return shares
	}
	for i, s := range slices {
		shares[i] = s.Value / total
	}
	return shares
}

// ErrAdjustmentRange is returned for a what-if percentage outside 0..100.
var ErrAdjustmentRange = errors.New("adjustment must be between 0 and 100 percent")

// Adjustments are what-if percentages applied to three line items.
type Adjustments struct {
	AdminCut       float64
	FeeGrowth      float64
	InterestGrowth float64
}

// Validate checks every percentage is within 0..100.
func (a Adjustments) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"admin cut", a.AdminCut},
		{"fee growth", a.FeeGrowth},
		{"interest growth", a.InterestGrowth},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || c.value < 0 || c.value > 100 {
			return fmt.Errorf("%s %v: %w", c.name, c.value, ErrAdjustmentRange)
		}
	}
	return nil
}

// Projection is the outcome of a what-if simulation.
type Projection struct {
	CurrentProfit float64
	AdminSavings  float64
	FeeGain       float64
	InterestGain  float64
	NewProfit     float64
}

// Change returns NewProfit minus CurrentProfit.
func (p Projection) Change() float64 {
	return decimal.NewFromFloat(p.NewProfit).Sub(decimal.NewFromFloat(p.CurrentProfit)).InexactFloat64()
}

// Simulate projects net profit after cutting admin costs and growing fee and
// interest income by the given percentages. Every effect is added to the
// filed net profit.
func Simulate(row model.KPIRow, m kpi.Mapping, adj Adjustments) (Projection, error) {
	if err := adj.Validate(); err != nil {
		return Projection{}, err
	}

	hundred := decimal.NewFromInt(100)
	effect := func(position string, pct float64) decimal.Decimal {
		base := decimal.NewFromFloat(row.Value(position))
		return base.Mul(decimal.NewFromFloat(pct)).Div(hundred)
	}

	current := decimal.NewFromFloat(row.NetProfitFinal)
	savings := effect(m.AdminCosts, adj.AdminCut)
	fees := effect(m.FeeIncome, adj.FeeGrowth)
	interest := effect(m.InterestIncome, adj.InterestGrowth)

	return Projection{
		CurrentProfit: row.NetProfitFinal,
		AdminSavings:  savings.InexactFloat64(),
		FeeGain:       fees.InexactFloat64(),
		InterestGain:  interest.InexactFloat64(),
		NewProfit:     current.Add(savings).Add(fees).Add(interest).InexactFloat64(),
	}, nil
}

// Hints returns rule-based recommendations used when no narrative is
// available.
func Hints(row model.KPIRow, avg model.MarketAverages) []string {
	var hints []string
	if cir := avg.Get(model.FieldCostToIncome); !math.IsNaN(cir) && row.CostToIncome > cir {
		hints = append(hints, fmt.Sprintf(
			"Cost to income of %.1f%% is above the market's %.1f%%: reduce administrative costs.",
			row.CostToIncome, cir))
	}
	if fees := avg.Get(model.FieldNetFees); !math.IsNaN(fees) && row.NetFees < fees {
		hints = append(hints,
			"Net fee income is below the market average: increase cross-selling of fee-based products.")
	}
	if len(hints) == 0 {
		hints = append(hints, "No major deviation from the market average on cost efficiency or fee income.")
	}
	return hints
}
