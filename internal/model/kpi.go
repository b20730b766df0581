package model

import (
	"math"
	"sort"
)

// Derived field names, as they appear in MarketAverages and exports.
const (
	FieldNetInterest      = "net_interest"
	FieldNetFees          = "net_fees"
	FieldOperatingIncome  = "operating_income"
	FieldOperatingExpense = "operating_expense"
	FieldCostToIncome     = "cost_to_income"
	FieldNetProfitFinal   = "net_profit_final"
)

// DerivedFields lists the derived KPI fields in display order.
var DerivedFields = []string{
	FieldNetInterest,
	FieldNetFees,
	FieldOperatingIncome,
	FieldOperatingExpense,
	FieldCostToIncome,
	FieldNetProfitFinal,
}

// KPIRow is a WideRow extended with the derived metrics.
type KPIRow struct {
	WideRow
	NetInterest      float64
	NetFees          float64
	OperatingIncome  float64
	OperatingExpense float64
	CostToIncome     float64 // percent
	NetProfitFinal   float64 // filed net profit, not recomputed
}

// Derived returns the derived metrics keyed by field name.
func (r KPIRow) Derived() map[string]float64 {
	return map[string]float64{
		FieldNetInterest:      r.NetInterest,
		FieldNetFees:          r.NetFees,
		FieldOperatingIncome:  r.OperatingIncome,
		FieldOperatingExpense: r.OperatingExpense,
		FieldCostToIncome:     r.CostToIncome,
		FieldNetProfitFinal:   r.NetProfitFinal,
	}
}

// Fields returns every numeric field of the row: positions plus derived metrics.
func (r KPIRow) Fields() map[string]float64 {
	out := make(map[string]float64, len(r.Values)+len(DerivedFields))
	for k, v := range r.Values {
		out[k] = v
	}
	for k, v := range r.Derived() {
		out[k] = v
	}
	return out
}

// KPITable is a WideTable with derived metrics on every row.
type KPITable struct {
	Positions []string
	Rows      []KPIRow
}

// Len returns the number of banks in the table.
func (t *KPITable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Find returns the row for bank.
func (t *KPITable) Find(bank string) (KPIRow, bool) {
	if t == nil {
		return KPIRow{}, false
	}
	for _, r := range t.Rows {
		if r.Bank == bank {
			return r, true
		}
	}
	return KPIRow{}, false
}

// Banks returns the bank names in row order.
func (t *KPITable) Banks() []string {
	if t == nil {
		return nil
	}
	banks := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		banks[i] = r.Bank
	}
	return banks
}

// FieldNames returns positions followed by the derived fields.
func (t *KPITable) FieldNames() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.Positions)+len(DerivedFields))
	names = append(names, t.Positions...)
	return append(names, DerivedFields...)
}

// MarketAverages maps a numeric field name to its cross-bank mean.
// A field is NaN when no bank contributed to the mean.
type MarketAverages map[string]float64

// Get returns the average for field, NaN when the field is unknown.
func (m MarketAverages) Get(field string) float64 {
	v, ok := m[field]
	if !ok {
		return math.NaN()
	}
	return v
}

// Defined reports whether the averages hold at least one finite value.
func (m MarketAverages) Defined() bool {
	for _, v := range m {
		if !math.IsNaN(v) {
			return true
		}
	}
	return false
}

// Keys returns the field names in lexical order.
func (m MarketAverages) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
