package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bankbench-dev/bankbench/internal/banks"
	"github.com/bankbench-dev/bankbench/internal/model"
	"github.com/bankbench-dev/bankbench/internal/period"
)

// Kind classifies a statement extract by its file-name suffix.
type Kind string

const (
	KindIncome  Kind = "income"
	KindBalance Kind = "balance"
)

// Registry maps file-name suffixes to statement kinds.
type Registry struct {
	kinds map[string]Kind
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]Kind)}
}

// Register adds a suffix. Panics on duplicate suffix.
func (r *Registry) Register(suffix string, kind Kind) {
	key := strings.ToLower(suffix)
	if _, ok := r.kinds[key]; ok {
		panic("duplicate statement suffix: " + key)
	}
	r.kinds[key] = kind
}

// KindOf returns the kind of a CSV file name, matching its stem against the
// registered suffixes.
func (r *Registry) KindOf(name string) (Kind, bool) {
	lower := strings.ToLower(filepath.Base(name))
	if filepath.Ext(lower) != ".csv" {
		return "", false
	}
	stem := strings.TrimSuffix(lower, ".csv")
	for suffix, kind := range r.kinds {
		if strings.HasSuffix(stem, suffix) {
			return kind, true
		}
	}
	return "", false
}

// DefaultRegistry knows income statements ("_bu", bilans uspjeha) and
// balance sheets ("_bs", bilans stanja).
func DefaultRegistry() *Registry {
	return RegistryFor("_bu", "_bs")
}

// RegistryFor builds a registry from the income and balance-sheet suffixes.
func RegistryFor(incomeSuffix, balanceSuffix string) *Registry {
	r := NewRegistry()
	r.Register(incomeSuffix, KindIncome)
	if balanceSuffix != "" {
		r.Register(balanceSuffix, KindBalance)
	}
	return r
}

// FileInfo describes a matching statement file.
type FileInfo struct {
	Name    string
	Path    string
	Size    int64
	Decoded Decoded
	Bank    string
}

// SkippedFile is a matching file that could not be loaded.
type SkippedFile struct {
	Path   string
	Reason string
}

// Fallback records an amount that did not come straight from a number.
type Fallback struct {
	File     string
	Line     int
	Position string
	Raw      string
	Outcome  Outcome
}

// Dataset is the long-format result of a scan.
type Dataset struct {
	Quarter   string
	Items     []model.LineItem
	Files     []FileInfo
	Skipped   []SkippedFile
	Fallbacks []Fallback
}

// Empty reports whether the scan produced no line items.
func (d *Dataset) Empty() bool {
	return d == nil || len(d.Items) == 0
}

// Options configures a Scanner.
type Options struct {
	IncomeSuffix  string
	BalanceSuffix string
	Columns       Columns
	Charset       string
	Delimiter     rune
	Normalizer    Normalizer
}

// DefaultOptions matches the layout of the published extracts.
func DefaultOptions() Options {
	return Options{
		IncomeSuffix:  "_bu",
		BalanceSuffix: "_bs",
		Columns:       DefaultColumns(),
	}
}

// Scanner discovers and loads income-statement extracts.
type Scanner struct {
	opts     Options
	registry *Registry
	banks    *banks.Directory
	logger   *slog.Logger
}

// NewScanner creates a Scanner. A nil directory uses the default bank table
// and a nil logger discards output.
func NewScanner(opts Options, dir *banks.Directory, logger *slog.Logger) *Scanner {
	if opts.IncomeSuffix == "" {
		opts.IncomeSuffix = "_bu"
	}
	if opts.Columns.Position == "" || opts.Columns.Amount == "" {
		opts.Columns = DefaultColumns()
	}
	if dir == nil {
		dir = banks.Default()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scanner{
		opts:     opts,
		registry: RegistryFor(opts.IncomeSuffix, opts.BalanceSuffix),
		banks:    dir,
		logger:   logger,
	}
}

// Find returns income-statement files under root whose name starts with
// quarter. A missing root yields no files.
func (s *Scanner) Find(root, quarter string) ([]FileInfo, error) {
	if err := period.ValidatePattern(quarter); err != nil {
		return nil, err
	}
	prefix := strings.ToLower(quarter)

	var files []FileInfo
	err := s.walk(root, func(path string, d fs.DirEntry) error {
		name := d.Name()
		if !strings.HasPrefix(strings.ToLower(name), prefix) {
			return nil
		}
		if kind, ok := s.registry.KindOf(name); !ok || kind != KindIncome {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", name, err)
		}
		decoded := DecodeFilename(name, s.opts.IncomeSuffix)
		files = append(files, FileInfo{
			Name:    name,
			Path:    path,
			Size:    info.Size(),
			Decoded: decoded,
			Bank:    s.banks.Name(decoded.Code),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Quarters returns the distinct quarter tags of the income statements under
// root, sorted.
func (s *Scanner) Quarters(root string) ([]string, error) {
	seen := make(map[string]bool)
	err := s.walk(root, func(path string, d fs.DirEntry) error {
		if kind, ok := s.registry.KindOf(d.Name()); !ok || kind != KindIncome {
			return nil
		}
		if q := DecodeFilename(d.Name(), s.opts.IncomeSuffix).Quarter; q != "" {
			seen[q] = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	quarters := make([]string, 0, len(seen))
	for q := range seen {
		quarters = append(quarters, q)
	}
	sort.Strings(quarters)
	return quarters, nil
}

// Scan loads every matching file into one long-format Dataset. Files that
// cannot be read or lack the required columns are skipped and logged.
// No matching files yields an empty Dataset and no error.
func (s *Scanner) Scan(root, quarter string) (*Dataset, error) {
	files, err := s.Find(root, quarter)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{Quarter: quarter}
	if len(files) == 0 {
		s.logger.Info("no statement files found",
			slog.String("root", root),
			slog.String("quarter", quarter))
		return ds, nil
	}

	for _, f := range files {
		items, fallbacks, err := s.loadFile(f)
		if err != nil {
			s.logger.Warn("skipping statement file",
				slog.String("file", f.Path),
				slog.String("reason", err.Error()))
			ds.Skipped = append(ds.Skipped, SkippedFile{Path: f.Path, Reason: err.Error()})
			continue
		}
		s.logger.Debug("loaded statement file",
			slog.String("file", f.Path),
			slog.String("bank", f.Bank),
			slog.Int("rows", len(items)))
		ds.Files = append(ds.Files, f)
		ds.Items = append(ds.Items, items...)
		ds.Fallbacks = append(ds.Fallbacks, fallbacks...)
	}

	if ds.Empty() {
		s.logger.Warn("no statement file could be loaded",
			slog.String("quarter", quarter),
			slog.Int("skipped", len(ds.Skipped)))
	}
	return ds, nil
}

func (s *Scanner) loadFile(f FileInfo) ([]model.LineItem, []Fallback, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer fh.Close()

	rows, err := ReadRows(fh, s.opts.Columns, s.opts.Charset, s.opts.Delimiter)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", f.Name, err)
	}

	items := make([]model.LineItem, 0, len(rows))
	var fallbacks []Fallback
	for _, row := range rows {
		if row.Position == "" {
			s.logger.Debug("dropping row without position label",
				slog.String("file", f.Path),
				slog.Int("line", row.Line))
			continue
		}
		res := s.opts.Normalizer.Normalize(row.Amount)
		if res.Outcome != OutcomeNumeric {
			fallbacks = append(fallbacks, Fallback{
				File:     f.Path,
				Line:     row.Line,
				Position: row.Position,
				Raw:      row.Amount,
				Outcome:  res.Outcome,
			})
		}
		items = append(items, model.LineItem{
			Position: row.Position,
			Amount:   res.Value,
			Bank:     f.Bank,
		})
	}
	return items, fallbacks, nil
}

// walk visits every regular file under root. Unreadable subdirectories are
// logged and skipped; a missing root is not an error.
func (s *Scanner) walk(root string, visit func(path string, d fs.DirEntry) error) error {
	if _, err := os.Stat(root); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading data dir: %w", err)
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("reading data dir: %w", err)
			}
			s.logger.Warn("skipping unreadable path",
				slog.String("path", path),
				slog.String("reason", err.Error()))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		return visit(path, d)
	})
}
