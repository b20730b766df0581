package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/bankbench-dev/bankbench/internal/ingest"
	"github.com/bankbench-dev/bankbench/internal/kpi"
	"github.com/bankbench-dev/bankbench/internal/narrative"
	"github.com/bankbench-dev/bankbench/internal/period"
)

// FileName is the default config file name.
const FileName = "bankbench.yaml"

// DefaultAPIKeyEnv is the environment variable holding the Gemini key.
const DefaultAPIKeyEnv = "GEMINI_API_KEY"

// Config represents the top-level bankbench.yaml configuration.
type Config struct {
	Data      DataConfig      `yaml:"data"`
	Normalize NormalizeConfig `yaml:"normalize"`
	Mapping   kpi.Mapping     `yaml:"mapping"`
	Narrative NarrativeConfig `yaml:"narrative"`
	Audit     AuditConfig     `yaml:"audit"`
}

// DataConfig describes where statement extracts live and how they look.
type DataConfig struct {
	Dir            string `yaml:"dir"`
	Quarter        string `yaml:"quarter"` // default quarter token, e.g. "0925"
	IncomeSuffix   string `yaml:"income_suffix"`
	BalanceSuffix  string `yaml:"balance_suffix"`
	PositionColumn string `yaml:"position_column"`
	AmountColumn   string `yaml:"amount_column"`
	Encoding       string `yaml:"encoding"`
	Delimiter      string `yaml:"delimiter"` // "", ",", ";" or "tab"; empty detects
	BanksFile      string `yaml:"banks_file,omitempty"`
}

// NormalizeConfig controls amount parsing.
type NormalizeConfig struct {
	AccountingNegatives bool `yaml:"accounting_negatives"`
}

// NarrativeConfig controls the AI narrative.
type NarrativeConfig struct {
	Models    []string `yaml:"models"`
	Timeout   string   `yaml:"timeout"` // Go duration, e.g. "60s"
	Language  string   `yaml:"language,omitempty"`
	APIKeyEnv string   `yaml:"api_key_env"`
}

// AuditConfig controls the normalization audit log.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads a bankbench.yaml file from disk. Unset mapping labels take
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Mapping = cfg.Mapping.WithDefaults()
	return cfg, nil
}

// LoadOrDefault reads path, or returns the defaults when it does not exist.
// The boolean reports whether the file was found.
func LoadOrDefault(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Dir:            filepath.Join("data", "bu"),
			Quarter:        "0925",
			IncomeSuffix:   "_bu",
			BalanceSuffix:  "_bs",
			PositionColumn: "POZICIJA",
			AmountColumn:   "IZNOS",
			Encoding:       "utf-8",
		},
		Mapping: kpi.DefaultMapping(),
		Narrative: NarrativeConfig{
			Models:    append([]string(nil), narrative.DefaultModels...),
			Timeout:   "60s",
			APIKeyEnv: DefaultAPIKeyEnv,
		},
		Audit: AuditConfig{
			Enabled: false,
			Path:    filepath.Join("logs", "normalization-audit.csv"),
		},
	}
}

// Validate checks the values that cannot be corrected silently.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Data.Dir) == "" {
		errs = append(errs, errors.New("data.dir is empty"))
	}
	if c.Data.Quarter != "" {
		if err := period.ValidatePattern(c.Data.Quarter); err != nil {
			errs = append(errs, fmt.Errorf("data.quarter: %w", err))
		}
	}
	if strings.TrimSpace(c.Data.IncomeSuffix) == "" {
		errs = append(errs, errors.New("data.income_suffix is empty"))
	}
	if strings.EqualFold(c.Data.IncomeSuffix, c.Data.BalanceSuffix) {
		errs = append(errs, errors.New("data.income_suffix and data.balance_suffix must differ"))
	}
	if _, err := ingest.Decoder(c.Data.Encoding); err != nil {
		errs = append(errs, fmt.Errorf("data.encoding: %w", err))
	}
	if _, err := c.Delimiter(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.NarrativeTimeout(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Mapping.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Audit.Enabled && strings.TrimSpace(c.Audit.Path) == "" {
		errs = append(errs, errors.New("audit.path is empty"))
	}
	return errors.Join(errs...)
}

// Delimiter returns the configured CSV delimiter, 0 for auto-detection.
func (c *Config) Delimiter() (rune, error) {
	switch d := c.Data.Delimiter; strings.ToLower(d) {
	case "", "auto":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	default:
		r := []rune(d)
		if len(r) != 1 {
			return 0, fmt.Errorf("data.delimiter %q: want a single character, \"tab\" or empty", d)
		}
		return r[0], nil
	}
}

// NarrativeTimeout parses narrative.timeout. Empty means no timeout.
func (c *Config) NarrativeTimeout() (time.Duration, error) {
	if c.Narrative.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Narrative.Timeout)
	if err != nil {
		return 0, fmt.Errorf("narrative.timeout: %w", err)
	}
	return d, nil
}

// ScanOptions returns the ingest options described by the config.
func (c *Config) ScanOptions() (ingest.Options, error) {
	delim, err := c.Delimiter()
	if err != nil {
		return ingest.Options{}, err
	}
	return ingest.Options{
		IncomeSuffix:  c.Data.IncomeSuffix,
		BalanceSuffix: c.Data.BalanceSuffix,
		Columns: ingest.Columns{
			Position: c.Data.PositionColumn,
			Amount:   c.Data.AmountColumn,
		},
		Charset:    c.Data.Encoding,
		Delimiter:  delim,
		Normalizer: ingest.Normalizer{AccountingNegatives: c.Normalize.AccountingNegatives},
	}, nil
}

// NarrativeConfig returns the narrator settings.
func (c *Config) NarrativeConfig() (narrative.Config, error) {
	timeout, err := c.NarrativeTimeout()
	if err != nil {
		return narrative.Config{}, err
	}
	return narrative.Config{
		Models:   append([]string(nil), c.Narrative.Models...),
		Timeout:  timeout,
		Language: c.Narrative.Language,
	}, nil
}

// Resolve makes the relative paths of the config absolute against base,
// normally the directory holding the config file.
func (c *Config) Resolve(base string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	c.Data.Dir = abs(c.Data.Dir)
	c.Data.BanksFile = abs(c.Data.BanksFile)
	c.Audit.Path = abs(c.Audit.Path)
}

// LoadEnv loads a .env file from dir into the process environment without
// overriding variables that are already set. A missing file is ignored.
func LoadEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// APIKey returns the narrative API key from the environment.
func (c *Config) APIKey() string {
	name := c.Narrative.APIKeyEnv
	if name == "" {
		name = DefaultAPIKeyEnv
	}
	return strings.TrimSpace(os.Getenv(name))
}
