package narrative

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"text/template"

	"github.com/bankbench-dev/bankbench/internal/model"
)

var promptTemplate = template.Must(template.New("prompt").Parse(`Analyze the bank: {{.Bank}}.
Amounts are in thousands of EUR; cost_to_income is a percentage.

BANK DATA:
{{.BankData}}

MARKET AVERAGE (benchmark):
{{.MarketData}}

Task:
1. Identify the 2 key problems where the bank deviates most from the market average (worse cost to income ratio, lower income, ...).
2. Give 2 concrete recommendations (for example "Reduce administrative costs", "Increase fee income").
3. Be brief and professional.
{{- if .Language}}
Respond in {{.Language}}.
{{- end}}
`))

type promptData struct {
	Bank       string
	BankData   string
	MarketData string
	Language   string
}

// BuildPrompt renders the analysis prompt for one bank.
func BuildPrompt(bank string, row model.KPIRow, avg model.MarketAverages, language string) (string, error) {
	var b strings.Builder
	err := promptTemplate.Execute(&b, promptData{
		Bank:       bank,
		BankData:   FormatRecord(row.Fields()),
		MarketData: FormatRecord(avg),
		Language:   language,
	})
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return b.String(), nil
}

// FormatRecord writes one "field: value" line per field, sorted by field name.
// Undefined values are written as n/a.
func FormatRecord(fields map[string]float64) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, len(names))
	for i, name := range names {
		v := fields[name]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			lines[i] = name + ": n/a"
			continue
		}
		lines[i] = fmt.Sprintf("%s: %.2f", name, v)
	}
	return strings.Join(lines, "\n")
}
