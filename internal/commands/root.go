package commands

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bankbench-dev/bankbench/internal/banks"
	"github.com/bankbench-dev/bankbench/internal/buildinfo"
	"github.com/bankbench-dev/bankbench/internal/config"
	"github.com/bankbench-dev/bankbench/internal/ingest"
)

type globalOptions struct {
	configPath string
	verbose    bool
	noColor    bool
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "bankbench",
		Short:   "Benchmark banks from quarterly income statement extracts",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.FileName, "path to the project config file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug details to stderr")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable coloured output")

	rootCmd.AddCommand(
		newInitCommand(),
		newBanksCommand(opts),
		newQuartersCommand(opts),
		newAnalyzeCommand(opts),
		newSimulateCommand(opts),
		newNarrateCommand(opts),
		newExportCommand(opts),
	)

	return rootCmd
}

// env is what every data command needs: config, logger and bank directory.
// base is the directory holding the config file.
type env struct {
	cfg      *config.Config
	base     string
	logger   *slog.Logger
	banks    *banks.Directory
	source   *ingest.Cache
	out      io.Writer
	colorize bool
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadEnv reads the config (defaults when absent), the .env next to it and
// the bank directory.
func loadEnv(cmd *cobra.Command, opts *globalOptions) (*env, error) {
	logger := newLogger(cmd.ErrOrStderr(), opts.verbose)

	absConfig, err := filepath.Abs(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	base := filepath.Dir(absConfig)

	cfg, found, err := config.LoadOrDefault(absConfig)
	if err != nil {
		return nil, err
	}
	if !found {
		logger.Debug("config file not found, using defaults", slog.String("path", absConfig))
	}
	cfg.Resolve(base)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", absConfig, err)
	}

	if err := config.LoadEnv(base); err != nil {
		return nil, err
	}

	dir := banks.Default()
	if cfg.Data.BanksFile != "" {
		dir, err = banks.Load(cfg.Data.BanksFile)
		if err != nil {
			return nil, err
		}
	}

	return &env{
		cfg:      cfg,
		base:     base,
		logger:   logger,
		banks:    dir,
		out:      cmd.OutOrStdout(),
		colorize: !opts.noColor && !color.NoColor,
	}, nil
}
