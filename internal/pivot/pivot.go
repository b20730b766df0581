package pivot

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bankbench-dev/bankbench/internal/model"
)

// ReshapeError reports a line item that cannot be placed in the wide table.
type ReshapeError struct {
	Index  int
	Bank   string
	Reason string
}

func (e *ReshapeError) Error() string {
	return fmt.Sprintf("reshape failed at item %d [%s]: %s", e.Index, e.Bank, e.Reason)
}

type cell struct {
	bank     string
	position string
}

// Pivot reshapes long-format line items into one row per bank and one column
// per position. Duplicate (bank, position) pairs are summed, and positions a
// bank never reported are filled with zero. Rows and columns are sorted
// lexically, so the result does not depend on input order.
//
// Empty input yields an empty table.
func Pivot(items []model.LineItem) (*model.WideTable, error) {
	sums := make(map[cell]decimal.Decimal)
	banks := make(map[string]bool)
	positions := make(map[string]bool)

	for i, item := range items {
		if strings.TrimSpace(item.Position) == "" {
			return nil, &ReshapeError{Index: i, Bank: item.Bank, Reason: "blank position label"}
		}
		if math.IsNaN(item.Amount) || math.IsInf(item.Amount, 0) {
			return nil, &ReshapeError{Index: i, Bank: item.Bank, Reason: "non-finite amount"}
		}
		key := cell{bank: item.Bank, position: item.Position}
		sums[key] = sums[key].Add(decimal.NewFromFloat(item.Amount))
		banks[item.Bank] = true
		positions[item.Position] = true
	}

	table := &model.WideTable{
		Positions: sortedKeys(positions),
	}
	for _, bank := range sortedKeys(banks) {
		row := model.WideRow{
			Bank:   bank,
			Values: make(map[string]float64, len(table.Positions)),
		}
		for _, pos := range table.Positions {
			row.Values[pos] = sums[cell{bank: bank, position: pos}].InexactFloat64()
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
