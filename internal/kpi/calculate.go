package kpi

import (
	"math"
	"sort"

	"github.com/bankbench-dev/bankbench/internal/model"
)

// Calculate derives the KPIs of a single bank. Labels the row does not carry
// count as zero. Net profit is taken from the filed figure, not recomputed
// from operating income and expense.
func Calculate(row model.WideRow, m Mapping) model.KPIRow {
	get := row.Value

	netInterest := get(m.InterestIncome) - get(m.InterestExpense)
	netFees := get(m.FeeIncome) - get(m.FeeExpense)
	opInc := netInterest + netFees + get(m.OtherIncome) + get(m.FXGains)
	opEx := get(m.StaffCosts) + get(m.Depreciation) + get(m.AdminCosts) + get(m.OtherExpense)

	return model.KPIRow{
		WideRow:          row,
		NetInterest:      netInterest,
		NetFees:          netFees,
		OperatingIncome:  opInc,
		OperatingExpense: opEx,
		CostToIncome:     CostToIncome(opEx, opInc),
		NetProfitFinal:   get(m.NetProfit),
	}
}

// CostToIncome returns opEx as a percentage of opInc, or 0 when opInc is not
// positive.
func CostToIncome(opEx, opInc float64) float64 {
	if opInc > 0 {
		return opEx / opInc * 100
	}
	return 0
}

// CalculateTable applies Calculate to every row of table.
func CalculateTable(table *model.WideTable, m Mapping) *model.KPITable {
	out := &model.KPITable{}
	if table == nil {
		return out
	}
	out.Positions = table.Positions
	out.Rows = make([]model.KPIRow, 0, len(table.Rows))
	for _, row := range table.Rows {
		out.Rows = append(out.Rows, Calculate(row, m))
	}
	return out
}

// Averages returns the unweighted mean of every numeric field across the
// table, leaving out the bank named exclude (none when empty). The cost to
// income ratio is the mean of the per-bank ratios, not a ratio of averaged
// aggregates. Every field is NaN when no bank remains.
func Averages(table *model.KPITable, exclude string) model.MarketAverages {
	fields := table.FieldNames()
	if fields == nil {
		fields = append([]string(nil), model.DerivedFields...)
	}

	sums := make(map[string]float64, len(fields))
	n := 0
	if table != nil {
		for _, row := range table.Rows {
			if exclude != "" && row.Bank == exclude {
				continue
			}
			n++
			for field, v := range row.Fields() {
				sums[field] += v
			}
		}
	}

	avg := make(model.MarketAverages, len(fields))
	for _, f := range fields {
		if n == 0 {
			avg[f] = math.NaN()
			continue
		}
		avg[f] = sums[f] / float64(n)
	}
	return avg
}

func sortedNames(m map[string]string) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
