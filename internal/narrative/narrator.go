package narrative

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bankbench-dev/bankbench/internal/model"
)

// DefaultModels are tried in order until one answers.
var DefaultModels = []string{
	"gemini-2.5-flash",
	"gemini-2.0-flash",
	"gemini-flash-latest",
	"gemini-2.0-flash-exp",
	"gemini-2.5-pro",
	"gemini-pro-latest",
}

// ErrNoAPIKey is reported when no credential is configured.
var ErrNoAPIKey = errors.New("no Gemini API key configured")

// Config controls narrative generation.
type Config struct {
	Models   []string
	Timeout  time.Duration
	Language string
}

// DefaultConfig returns the model list with a one minute timeout.
func DefaultConfig() Config {
	return Config{
		Models:  append([]string(nil), DefaultModels...),
		Timeout: time.Minute,
	}
}

// Narrator produces a written analysis of a bank against the market. It
// never fails: every problem is returned as a message in place of the text.
type Narrator struct {
	cfg          Config
	newGenerator GeneratorFactory
	logger       *slog.Logger
}

// NewNarrator creates a Narrator. A nil factory uses Gemini and a nil logger
// discards output.
func NewNarrator(cfg Config, factory GeneratorFactory, logger *slog.Logger) *Narrator {
	if len(cfg.Models) == 0 {
		cfg.Models = append([]string(nil), DefaultModels...)
	}
	if factory == nil {
		factory = NewGeminiGenerator
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Narrator{cfg: cfg, newGenerator: factory, logger: logger}
}

// Narrate returns the analysis for bank, or a message describing why none
// could be produced.
func (n *Narrator) Narrate(ctx context.Context, apiKey, bank string, row model.KPIRow, avg model.MarketAverages) string {
	text, err := n.Generate(ctx, apiKey, bank, row, avg)
	if err != nil {
		n.logger.Warn("narrative unavailable", slog.String("bank", bank), slog.String("reason", err.Error()))
		return "Narrative unavailable: " + err.Error()
	}
	return text
}

// Generate is Narrate with the failure kept as an error.
func (n *Narrator) Generate(ctx context.Context, apiKey, bank string, row model.KPIRow, avg model.MarketAverages) (string, error) {
	if strings.TrimSpace(apiKey) == "" {
		return "", ErrNoAPIKey
	}

	prompt, err := BuildPrompt(bank, row, avg, n.cfg.Language)
	if err != nil {
		return "", err
	}

	if n.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.cfg.Timeout)
		defer cancel()
	}

	gen, err := n.newGenerator(ctx, apiKey)
	if err != nil {
		return "", fmt.Errorf("connecting to the AI service: %w", err)
	}

	var errs []error
	for _, name := range n.cfg.Models {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		start := time.Now()
		out, err := gen.Generate(ctx, name, prompt)
		if err != nil {
			n.logger.Debug("model failed",
				slog.String("model", name),
				slog.String("reason", err.Error()))
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		out = CleanMarkdown(out)
		if !HasContent(out) {
			errs = append(errs, fmt.Errorf("%s: empty response", name))
			continue
		}
		n.logger.Info("narrative generated",
			slog.String("bank", bank),
			slog.String("model", name),
			slog.Duration("elapsed", time.Since(start)))
		return out, nil
	}
	return "", fmt.Errorf("AI service error: %w", errors.Join(errs...))
}
