package kpi

import (
	"fmt"
	"strings"
)

// Mapping ties each metric input to the exact position label used in the
// statement files. Labels must match the POZICIJA column verbatim.
type Mapping struct {
	InterestIncome  string `yaml:"interest_income"`
	InterestExpense string `yaml:"interest_expense"`
	FeeIncome       string `yaml:"fee_income"`
	FeeExpense      string `yaml:"fee_expense"`
	AdminCosts      string `yaml:"admin_costs"`
	StaffCosts      string `yaml:"staff_costs"`
	Depreciation    string `yaml:"depreciation"`
	OtherExpense    string `yaml:"other_expense"`
	OtherIncome     string `yaml:"other_income"`
	FXGains         string `yaml:"fx_gains"`
	Provisions      string `yaml:"provisions"`
	NetProfit       string `yaml:"net_profit"`
}

// DefaultMapping returns the labels of the central bank's income statement form.
func DefaultMapping() Mapping {
	return Mapping{
		InterestIncome:  "1. Prihodi od kamata i slicni prihodi",
		InterestExpense: "3. Rashodi od kamata i slicni rashodi",
		FeeIncome:       "4. Prihodi od naknada i provizija",
		FeeExpense:      "5. Rashodi naknada i provizija",
		AdminCosts:      "15. Opsti i administrativni troskovi",
		StaffCosts:      "13. Troskovi zaposlenih",
		Depreciation:    "14. Troskovi amortizacije",
		OtherExpense:    "19. Ostali rashodi",
		OtherIncome:     "12. Ostali prihodi",
		FXGains:         "10. Neto gubici/dobici od kursnih razlika",
		Provisions:      "18. Troskovi rezervisanja",
		NetProfit:       "22. NETO PROFIT/GUBITAK (III - 21)",
	}
}

// Labels returns the mapped labels keyed by their yaml names.
func (m Mapping) Labels() map[string]string {
	return map[string]string{
		"interest_income":  m.InterestIncome,
		"interest_expense": m.InterestExpense,
		"fee_income":       m.FeeIncome,
		"fee_expense":      m.FeeExpense,
		"admin_costs":      m.AdminCosts,
		"staff_costs":      m.StaffCosts,
		"depreciation":     m.Depreciation,
		"other_expense":    m.OtherExpense,
		"other_income":     m.OtherIncome,
		"fx_gains":         m.FXGains,
		"provisions":       m.Provisions,
		"net_profit":       m.NetProfit,
	}
}

// Validate checks that every metric has a label.
func (m Mapping) Validate() error {
	var missing []string
	for _, name := range sortedNames(m.Labels()) {
		if strings.TrimSpace(m.Labels()[name]) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("mapping has no label for %s", strings.Join(missing, ", "))
	}
	return nil
}

// WithDefaults fills unset labels from DefaultMapping, so a config file only
// needs to list the labels that differ.
func (m Mapping) WithDefaults() Mapping {
	d := DefaultMapping()
	fill := func(dst *string, def string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = def
		}
	}
	fill(&m.InterestIncome, d.InterestIncome)
	fill(&m.InterestExpense, d.InterestExpense)
	fill(&m.FeeIncome, d.FeeIncome)
	fill(&m.FeeExpense, d.FeeExpense)
	fill(&m.AdminCosts, d.AdminCosts)
	fill(&m.StaffCosts, d.StaffCosts)
	fill(&m.Depreciation, d.Depreciation)
	fill(&m.OtherExpense, d.OtherExpense)
	fill(&m.OtherIncome, d.OtherIncome)
	fill(&m.FXGains, d.FXGains)
	fill(&m.Provisions, d.Provisions)
	fill(&m.NetProfit, d.NetProfit)
	return m
}
