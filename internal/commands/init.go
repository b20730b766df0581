package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bankbench-dev/bankbench/internal/banks"
	"github.com/bankbench-dev/bankbench/internal/config"
	"github.com/bankbench-dev/bankbench/internal/period"
)

func newInitCommand() *cobra.Command {
	var quarter string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new bankbench project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.OutOrStdout(), absDir, quarter)
		},
	}

	cmd.Flags().StringVarP(&quarter, "quarter", "q", "0925", "default quarter token")

	return cmd
}

func runInit(out io.Writer, dir, quarter string) error {
	if _, err := period.ParseToken(quarter); err != nil {
		return err
	}

	configPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists", configPath)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking config: %w", err)
	}

	// Create directory structure.
	dirs := []string{
		filepath.Join("data", "bu"),
		"logs",
		"exports",
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	// Write bankbench.yaml.
	cfg := config.Default()
	cfg.Data.Quarter = quarter
	cfg.Data.BanksFile = "banks.csv"
	if err := config.Save(configPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Write bank directory.
	if err := banks.Default().Save(filepath.Join(dir, "banks.csv")); err != nil {
		return fmt.Errorf("writing bank directory: %w", err)
	}

	// Write .env.example.
	envExample := config.DefaultAPIKeyEnv + "=\n"
	if err := os.WriteFile(filepath.Join(dir, ".env.example"), []byte(envExample), 0o644); err != nil {
		return fmt.Errorf("writing .env.example: %w", err)
	}

	// Write .gitignore.
	gitignore := ".env\nlogs/\nexports/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	// Write data/bu/.gitkeep.
	if err := os.WriteFile(filepath.Join(dir, "data", "bu", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	fmt.Fprintf(out, "Initialized bankbench project at %s\n", dir)
	fmt.Fprintf(out, "Put income statement extracts (e.g. %sckb_bu.csv) in %s\n",
		quarter, filepath.Join(dir, "data", "bu"))
	return nil
}
