package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bankbench-dev/bankbench/internal/auditlog"
	"github.com/bankbench-dev/bankbench/internal/ingest"
	"github.com/bankbench-dev/bankbench/internal/kpi"
	"github.com/bankbench-dev/bankbench/internal/model"
	"github.com/bankbench-dev/bankbench/internal/pivot"
	"github.com/bankbench-dev/bankbench/internal/report"
)

// errNoBank is returned when a command needs --bank and none was given.
var errNoBank = errors.New("--bank is required")

// selection holds the flags shared by the data commands.
type selection struct {
	quarter string
	bank    string
	exclude bool
}

func (s *selection) register(cmd *cobra.Command, withBank bool) {
	cmd.Flags().StringVarP(&s.quarter, "quarter", "q", "", "quarter token, e.g. 0925 (default from config)")
	if withBank {
		cmd.Flags().StringVarP(&s.bank, "bank", "b", "", "bank code or display name")
		cmd.Flags().BoolVar(&s.exclude, "exclude-self", false, "leave the selected bank out of the market average")
	}
}

// analysis is one quarter run through scan, pivot and KPI calculation.
type analysis struct {
	quarter string
	dataset *ingest.Dataset
	table   *model.KPITable
}

func (a *analysis) empty() bool {
	return a.table.Len() == 0
}

func (e *env) scanner() (*ingest.Scanner, error) {
	opts, err := e.cfg.ScanOptions()
	if err != nil {
		return nil, err
	}
	return ingest.NewScanner(opts, e.banks, e.logger), nil
}

// load scans quarter and derives the KPI table. No data is not an error: the
// returned analysis is empty. A reshape failure is returned as an error.
func (e *env) load(quarter string) (*analysis, error) {
	if quarter == "" {
		quarter = e.cfg.Data.Quarter
	}
	if e.source == nil {
		sc, err := e.scanner()
		if err != nil {
			return nil, err
		}
		e.source = ingest.NewCache(sc)
	}

	ds, err := e.source.Scan(e.cfg.Data.Dir, quarter)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", e.cfg.Data.Dir, err)
	}
	e.audit(ds)

	a := &analysis{quarter: quarter, dataset: ds, table: &model.KPITable{}}
	if ds.Empty() {
		return a, nil
	}

	wide, err := pivot.Pivot(ds.Items)
	if err != nil {
		return nil, err
	}
	a.table = kpi.CalculateTable(wide, e.cfg.Mapping)
	e.logger.Debug("analysis ready",
		slog.String("quarter", quarter),
		slog.Int("banks", a.table.Len()),
		slog.Int("positions", len(a.table.Positions)))
	return a, nil
}

// audit appends the normalization fallbacks of ds to the audit log when it
// is enabled. Failures are logged only.
func (e *env) audit(ds *ingest.Dataset) {
	if !e.cfg.Audit.Enabled || len(ds.Fallbacks) == 0 {
		return
	}
	entries := auditlog.FromFallbacks(auditlog.NewRunID(), time.Now().UTC(), ds)
	if err := auditlog.Append(e.cfg.Audit.Path, entries); err != nil {
		e.logger.Warn("writing audit log", slog.String("path", e.cfg.Audit.Path), slog.String("reason", err.Error()))
		return
	}
	e.logger.Debug("audit log updated", slog.String("path", e.cfg.Audit.Path), slog.Int("entries", len(entries)))
}

// selectBank finds the row for query, which may be a bank code or a display
// name.
func (e *env) selectBank(a *analysis, query string) (model.KPIRow, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return model.KPIRow{}, errNoBank
	}
	if name, ok := e.banks.Lookup(query); ok {
		if row, found := a.table.Find(name); found {
			return row, nil
		}
	}
	for _, row := range a.table.Rows {
		if strings.EqualFold(row.Bank, query) {
			return row, nil
		}
	}
	return model.KPIRow{}, fmt.Errorf("bank %q has no data for quarter %s (available: %s)",
		query, a.quarter, strings.Join(a.table.Banks(), ", "))
}

// market returns the averages for row's comparison.
func (a *analysis) market(row model.KPIRow, excludeSelf bool) model.MarketAverages {
	if excludeSelf {
		return kpi.Averages(a.table, row.Bank)
	}
	return kpi.Averages(a.table, "")
}

// noData renders the empty state and reports whether it did.
func (e *env) noData(r *report.Renderer, a *analysis) bool {
	if !a.empty() {
		return false
	}
	r.NoData(a.quarter, len(a.dataset.Skipped))
	return true
}

// reshapeMessage renders a reshape failure as the single user-visible error.
func reshapeMessage(r *report.Renderer, err error) error {
	var reshapeErr *pivot.ReshapeError
	if errors.As(err, &reshapeErr) {
		r.Error(err)
		return nil
	}
	return err
}
