package report

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankbench-dev/bankbench/internal/kpi"
	"github.com/bankbench-dev/bankbench/internal/model"
)

var mapping = kpi.DefaultMapping()

func sampleRow() model.KPIRow {
	return kpi.Calculate(model.WideRow{
		Bank: "Hipotekarna Banka",
		Values: map[string]float64{
			mapping.InterestIncome: 8000,
			mapping.FeeIncome:      1000,
			mapping.FeeExpense:     -500,
			mapping.OtherIncome:    0,
			mapping.FXGains:        -20,
			mapping.AdminCosts:     3500,
			mapping.StaffCosts:     2500,
			mapping.Provisions:     -300,
			mapping.NetProfit:      1500,
		},
	}, mapping)
}

func TestTiles(t *testing.T) {
	row := sampleRow()
	avg := model.MarketAverages{
		model.FieldNetProfitFinal:   2000,
		model.FieldCostToIncome:     40,
		model.FieldOperatingIncome:  9000,
		model.FieldOperatingExpense: 7000,
	}

	tiles := Tiles(row, avg)
	require.Len(t, tiles, 4)

	assert.Equal(t, "Net profit", tiles[0].Label)
	assert.Equal(t, -500.0, tiles[0].Delta())
	assert.False(t, tiles[0].Favorable())

	assert.True(t, tiles[1].Percent)
	assert.True(t, tiles[1].Inverse)
	assert.False(t, tiles[1].Favorable(), "higher CIR than market is worse")

	assert.True(t, tiles[3].Inverse)
	assert.True(t, tiles[3].Favorable(), "lower expense than market is better")
}

func TestTiles_UndefinedMarket(t *testing.T) {
	tiles := Tiles(sampleRow(), model.MarketAverages{})
	for _, tile := range tiles {
		assert.True(t, math.IsNaN(tile.Delta()))
		assert.False(t, tile.Favorable())
	}
}

func TestIncomeBreakdown(t *testing.T) {
	slices := IncomeBreakdown(sampleRow().WideRow, mapping)
	require.Len(t, slices, 2, "zero and negative income is omitted")
	assert.Equal(t, "Interest income", slices[0].Label)
	assert.Equal(t, 8000.0, slices[0].Value)
	assert.Equal(t, "Fee income", slices[1].Label)
}

func TestExpenseBreakdown(t *testing.T) {
	slices := ExpenseBreakdown(sampleRow().WideRow, mapping)

	var labels []string
	for _, s := range slices {
		labels = append(labels, s.Label)
		assert.Greater(t, s.Value, 0.0)
	}
	assert.Equal(t, []string{"Fee expense", "Staff costs", "Admin costs", "Provisions"}, labels)
	assert.Equal(t, 500.0, slices[0].Value, "expenses use absolute values")
	assert.Equal(t, 300.0, slices[3].Value)
}

func TestBreakdown_Empty(t *testing.T) {
	assert.Empty(t, IncomeBreakdown(model.WideRow{Bank: "x"}, mapping))
	assert.Empty(t, ExpenseBreakdown(model.WideRow{Bank: "x"}, mapping))
}

func TestShare(t *testing.T) {
	shares := Share([]Slice{{Value: 1}, {Value: 3}})
	assert.Equal(t, []float64{0.25, 0.75}, shares)
	assert.Equal(t, []float64{}, Share(nil))
}

func TestSimulate(t *testing.T) {
	row := sampleRow()
	p, err := Simulate(row, mapping, Adjustments{AdminCut: 10, FeeGrowth: 20, InterestGrowth: 5})
	require.NoError(t, err)

	assert.Equal(t, 1500.0, p.CurrentProfit)
	assert.Equal(t, 350.0, p.AdminSavings)
	assert.Equal(t, 200.0, p.FeeGain)
	assert.Equal(t, 400.0, p.InterestGain)
	assert.Equal(t, 2450.0, p.NewProfit)
	assert.Equal(t, 950.0, p.Change())
}

func TestSimulate_ZeroAdjustments(t *testing.T) {
	p, err := Simulate(sampleRow(), mapping, Adjustments{})
	require.NoError(t, err)
	assert.Equal(t, p.CurrentProfit, p.NewProfit)
	assert.Equal(t, 0.0, p.Change())
}

func TestSimulate_MissingItems(t *testing.T) {
	row := kpi.Calculate(model.WideRow{Bank: "x", Values: map[string]float64{mapping.NetProfit: 10}}, mapping)
	p, err := Simulate(row, mapping, Adjustments{AdminCut: 30, FeeGrowth: 30, InterestGrowth: 30})
	require.NoError(t, err)
	assert.Equal(t, 10.0, p.NewProfit)
}

func TestSimulate_OutOfRange(t *testing.T) {
	for _, adj := range []Adjustments{
		{AdminCut: -1},
		{FeeGrowth: 100.5},
		{InterestGrowth: math.NaN()},
	} {
		_, err := Simulate(sampleRow(), mapping, adj)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrAdjustmentRange))
	}

	_, err := Simulate(sampleRow(), mapping, Adjustments{AdminCut: 100, FeeGrowth: 0})
	assert.NoError(t, err)
}

func TestHints(t *testing.T) {
	row := sampleRow()

	hints := Hints(row, model.MarketAverages{
		model.FieldCostToIncome: row.CostToIncome - 10,
		model.FieldNetFees:      row.NetFees + 100,
	})
	require.Len(t, hints, 2)
	assert.Contains(t, hints[0], "administrative costs")
	assert.Contains(t, hints[1], "cross-selling")

	hints = Hints(row, model.MarketAverages{
		model.FieldCostToIncome: row.CostToIncome + 10,
		model.FieldNetFees:      row.NetFees - 100,
	})
	require.Len(t, hints, 1)
	assert.Contains(t, hints[0], "No major deviation")

	hints = Hints(row, model.MarketAverages{})
	require.Len(t, hints, 1)
}

func TestRenderer_Plain(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, false)

	row := sampleRow()
	r.Tiles(Tiles(row, model.MarketAverages{
		model.FieldNetProfitFinal:   2000,
		model.FieldCostToIncome:     40,
		model.FieldOperatingIncome:  9000,
		model.FieldOperatingExpense: 7000,
	}))
	out := buf.String()
	assert.Contains(t, out, "Net profit")
	assert.Contains(t, out, "€ 1,500")
	assert.Contains(t, out, "€ 2,000")
	assert.Contains(t, out, "-500")
	assert.NotContains(t, out, "\x1b[", "no colour escapes when disabled")
}

func TestRenderer_Colored(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, true)
	r.Tiles([]Tile{{Label: "Net profit", Value: 10, Market: 5}})
	assert.Contains(t, buf.String(), "\x1b[32m", "favourable delta is green")
}

func TestRenderer_NaN(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, false)
	r.Tiles(Tiles(sampleRow(), model.MarketAverages{}))
	assert.Contains(t, buf.String(), "n/a")
	assert.NotContains(t, buf.String(), "NaN")
}

func TestRenderer_NoData(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, false)
	r.NoData("0321", 0)
	assert.Contains(t, buf.String(), "No data for quarter 0321")

	buf.Reset()
	r.NoData("0925", 2)
	assert.Contains(t, buf.String(), "2 matching file(s) were skipped")
}

func TestRenderer_Projection(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, false)

	r.Projection(Projection{CurrentProfit: 1000, AdminSavings: 250, NewProfit: 1250})
	assert.Contains(t, buf.String(), "Net profit improves by € 250")

	buf.Reset()
	r.Projection(Projection{CurrentProfit: 1000, NewProfit: 1000})
	assert.Contains(t, buf.String(), "unchanged")
}

func TestRenderer_Breakdown(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, false)

	r.Breakdown(nil)
	assert.Contains(t, buf.String(), "No data.")

	buf.Reset()
	r.Breakdown([]Slice{{Label: "Interest income", Value: 750}, {Label: "Fee income", Value: 250}})
	assert.Contains(t, buf.String(), "75.0%")
	assert.Contains(t, buf.String(), "25.0%")
}

func TestRenderer_Table(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, false)
	table := &model.KPITable{Rows: []model.KPIRow{sampleRow()}}
	r.Table(table, kpi.Averages(table, ""))

	out := buf.String()
	assert.Contains(t, out, "Hipotekarna Banka")
	assert.Contains(t, out, "Market average")
	assert.Contains(t, out, "NET PROFIT")
}
