package model

// LineItem is one income-statement row loaded from a bank's CSV extract.
type LineItem struct {
	Position string  // statement row label, e.g. "4. Prihodi od naknada i provizija"
	Amount   float64 // normalized amount, thousands of EUR in the source files
	Bank     string  // bank display name
}

// WideRow holds every position of a single bank.
type WideRow struct {
	Bank   string
	Values map[string]float64
}

// Value returns the amount booked under position, or 0 when the bank has none.
func (r WideRow) Value(position string) float64 {
	return r.Values[position]
}

// Has reports whether position is a column of the row.
func (r WideRow) Has(position string) bool {
	_, ok := r.Values[position]
	return ok
}

// WideTable is the pivoted dataset: one row per bank, one column per position.
// Every row carries a value for every entry of Positions.
type WideTable struct {
	Positions []string
	Rows      []WideRow
}

// Len returns the number of banks in the table.
func (t *WideTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table has no banks.
func (t *WideTable) Empty() bool {
	return t.Len() == 0
}

// Banks returns the bank names in row order.
func (t *WideTable) Banks() []string {
	if t == nil {
		return nil
	}
	banks := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		banks[i] = r.Bank
	}
	return banks
}
