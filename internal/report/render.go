package report

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/bankbench-dev/bankbench/internal/model"
)

// Renderer writes report views as plain text. Amounts are in thousands of EUR
// as filed.
type Renderer struct {
	w     io.Writer
	p     *message.Printer
	good  *color.Color
	bad   *color.Color
	title *color.Color
}

// NewRenderer creates a Renderer. Colour escapes are written only when
// colorize is true.
func NewRenderer(w io.Writer, colorize bool) *Renderer {
	r := &Renderer{
		w:     w,
		p:     message.NewPrinter(language.English),
		good:  color.New(color.FgGreen),
		bad:   color.New(color.FgRed),
		title: color.New(color.Bold),
	}
	for _, c := range []*color.Color{r.good, r.bad, r.title} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// Amount formats v as whole thousands with grouping, e.g. "€ 12,000".
func (r *Renderer) Amount(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return r.p.Sprintf("€ %d", int64(math.Round(v)))
}

func (r *Renderer) signedAmount(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	n := int64(math.Round(v))
	if n > 0 {
		return r.p.Sprintf("+%d", n)
	}
	return r.p.Sprintf("%d", n)
}

func percent(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", v)
}

func signedPercent(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f%%", v)
}

// NoData writes the explicit empty state for a quarter without statements.
func (r *Renderer) NoData(quarter string, skipped int) {
	fmt.Fprintf(r.w, "No data for quarter %s.\n", quarter)
	if skipped > 0 {
		fmt.Fprintf(r.w, "%d matching file(s) were skipped; run with --verbose for details.\n", skipped)
	} else {
		fmt.Fprintln(r.w, "Check that income statement CSV files for this quarter exist in the data directory.")
	}
}

// Error writes a single user-visible error line.
func (r *Renderer) Error(err error) {
	fmt.Fprintf(r.w, "%s %v\n", r.bad.Sprint("error:"), err)
}

// Heading writes a section title.
func (r *Renderer) Heading(text string) {
	fmt.Fprintf(r.w, "\n%s\n%s\n", r.title.Sprint(text), strings.Repeat("-", len([]rune(text))))
}

// Tiles writes the headline metrics with their deltas against the market.
func (r *Renderer) Tiles(tiles []Tile) {
	tw := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "METRIC\tBANK\tMARKET\tDELTA")
	for _, t := range tiles {
		value, market, delta := r.Amount(t.Value), r.Amount(t.Market), r.signedAmount(t.Delta())
		if t.Percent {
			value, market, delta = percent(t.Value), percent(t.Market), signedPercent(t.Delta())
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.Label, value, market, r.colorDelta(t, delta))
	}
	tw.Flush()
}

func (r *Renderer) colorDelta(t Tile, s string) string {
	d := t.Delta()
	switch {
	case math.IsNaN(d) || d == 0:
		return s
	case t.Favorable():
		return r.good.Sprint(s)
	default:
		return r.bad.Sprint(s)
	}
}

// Breakdown writes a composition table. An empty breakdown says so.
func (r *Renderer) Breakdown(slices []Slice) {
	if len(slices) == 0 {
		fmt.Fprintln(r.w, "No data.")
		return
	}
	shares := Share(slices)
	tw := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
	for i, s := range slices {
		fmt.Fprintf(tw, "%s\t%s\t%.1f%%\n", s.Label, r.Amount(s.Value), shares[i]*100)
	}
	tw.Flush()
}

// Projection writes the what-if result.
func (r *Renderer) Projection(p Projection) {
	tw := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Current net profit\t%s\n", r.Amount(p.CurrentProfit))
	fmt.Fprintf(tw, "Admin cost savings\t%s\n", r.signedAmount(p.AdminSavings))
	fmt.Fprintf(tw, "Fee income growth\t%s\n", r.signedAmount(p.FeeGain))
	fmt.Fprintf(tw, "Interest income growth\t%s\n", r.signedAmount(p.InterestGain))
	fmt.Fprintf(tw, "Projected net profit\t%s\n", r.Amount(p.NewProfit))
	tw.Flush()

	change := p.Change()
	switch {
	case change > 0:
		fmt.Fprintln(r.w, r.good.Sprintf("Net profit improves by %s.", r.Amount(change)))
	case change < 0:
		fmt.Fprintln(r.w, r.bad.Sprintf("Net profit falls by %s.", r.Amount(-change)))
	default:
		fmt.Fprintln(r.w, "Net profit is unchanged.")
	}
}

// Hints writes a bullet list.
func (r *Renderer) Hints(hints []string) {
	for _, h := range hints {
		fmt.Fprintf(r.w, "- %s\n", h)
	}
}

// Table writes the derived metrics of every bank followed by the market row.
func (r *Renderer) Table(table *model.KPITable, avg model.MarketAverages) {
	tw := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BANK\tNET INTEREST\tNET FEES\tOP. INCOME\tOP. EXPENSE\tCIR\tNET PROFIT")
	write := func(name string, ni, nf, oi, oe, cir, np float64) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", name,
			r.Amount(ni), r.Amount(nf), r.Amount(oi), r.Amount(oe), percent(cir), r.Amount(np))
	}
	for _, row := range table.Rows {
		write(row.Bank, row.NetInterest, row.NetFees, row.OperatingIncome,
			row.OperatingExpense, row.CostToIncome, row.NetProfitFinal)
	}
	write("Market average",
		avg.Get(model.FieldNetInterest), avg.Get(model.FieldNetFees),
		avg.Get(model.FieldOperatingIncome), avg.Get(model.FieldOperatingExpense),
		avg.Get(model.FieldCostToIncome), avg.Get(model.FieldNetProfitFinal))
	tw.Flush()
}
