package narrative

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankbench-dev/bankbench/internal/model"
)

type fakeGenerator struct {
	responses map[string]string
	failures  map[string]error
	calls     []string
	prompts   []string
}

func (f *fakeGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	f.calls = append(f.calls, model)
	f.prompts = append(f.prompts, prompt)
	if err, ok := f.failures[model]; ok {
		return "", err
	}
	return f.responses[model], nil
}

func factoryFor(gen Generator) GeneratorFactory {
	return func(ctx context.Context, apiKey string) (Generator, error) {
		return gen, nil
	}
}

func testRow() model.KPIRow {
	return model.KPIRow{
		WideRow:        model.WideRow{Bank: "Hipotekarna Banka", Values: map[string]float64{"1. Prihodi": 8000}},
		CostToIncome:   80,
		NetProfitFinal: 1500,
	}
}

func testAverages() model.MarketAverages {
	return model.MarketAverages{
		model.FieldCostToIncome:   42.25,
		model.FieldNetProfitFinal: 2066.67,
	}
}

func TestNarrate_Success(t *testing.T) {
	gen := &fakeGenerator{responses: map[string]string{
		"gemini-2.5-flash": "```markdown\n## Analysis\n\n- CIR is high.\n```",
	}}
	n := NewNarrator(DefaultConfig(), factoryFor(gen), nil)

	got := n.Narrate(context.Background(), "key", "Hipotekarna Banka", testRow(), testAverages())
	assert.Equal(t, "## Analysis\n\n- CIR is high.", got)
	assert.Equal(t, []string{"gemini-2.5-flash"}, gen.calls)

	prompt := gen.prompts[0]
	assert.Contains(t, prompt, "Analyze the bank: Hipotekarna Banka.")
	assert.Contains(t, prompt, "cost_to_income: 80.00")
	assert.Contains(t, prompt, "cost_to_income: 42.25")
	assert.Contains(t, prompt, "2 concrete recommendations")
}

func TestNarrate_FallsBackThroughModels(t *testing.T) {
	gen := &fakeGenerator{
		failures: map[string]error{
			"first": errors.New("model not found"),
		},
		responses: map[string]string{
			"second": "   ",
			"third":  "Reduce admin costs.",
		},
	}
	cfg := Config{Models: []string{"first", "second", "third", "fourth"}}
	n := NewNarrator(cfg, factoryFor(gen), nil)

	got := n.Narrate(context.Background(), "key", "x", testRow(), testAverages())
	assert.Equal(t, "Reduce admin costs.", got)
	assert.Equal(t, []string{"first", "second", "third"}, gen.calls)
}

func TestNarrate_AllModelsFail(t *testing.T) {
	gen := &fakeGenerator{failures: map[string]error{
		"a": errors.New("quota exceeded"),
		"b": errors.New("unavailable"),
	}}
	n := NewNarrator(Config{Models: []string{"a", "b"}}, factoryFor(gen), nil)

	got := n.Narrate(context.Background(), "key", "x", testRow(), testAverages())
	assert.True(t, strings.HasPrefix(got, "Narrative unavailable:"))
	assert.Contains(t, got, "quota exceeded")
	assert.Contains(t, got, "unavailable")
}

func TestNarrate_NoAPIKey(t *testing.T) {
	called := false
	factory := func(ctx context.Context, apiKey string) (Generator, error) {
		called = true
		return nil, nil
	}
	n := NewNarrator(DefaultConfig(), factory, nil)

	got := n.Narrate(context.Background(), "  ", "x", testRow(), testAverages())
	assert.Contains(t, got, ErrNoAPIKey.Error())
	assert.False(t, called)

	_, err := n.Generate(context.Background(), "", "x", testRow(), testAverages())
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestNarrate_ClientFailure(t *testing.T) {
	factory := func(ctx context.Context, apiKey string) (Generator, error) {
		return nil, errors.New("dial tcp: no route to host")
	}
	n := NewNarrator(DefaultConfig(), factory, nil)

	got := n.Narrate(context.Background(), "key", "x", testRow(), testAverages())
	assert.Contains(t, got, "connecting to the AI service")
	assert.Contains(t, got, "no route to host")
}

func TestNarrate_CancelledContext(t *testing.T) {
	gen := &fakeGenerator{responses: map[string]string{"a": "text"}}
	n := NewNarrator(Config{Models: []string{"a"}, Timeout: time.Second}, factoryFor(gen), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := n.Narrate(ctx, "key", "x", testRow(), testAverages())
	assert.Contains(t, got, context.Canceled.Error())
	assert.Empty(t, gen.calls)
}

func TestNewNarrator_DefaultsModels(t *testing.T) {
	gen := &fakeGenerator{failures: map[string]error{}}
	n := NewNarrator(Config{}, factoryFor(gen), nil)
	_ = n.Narrate(context.Background(), "key", "x", testRow(), testAverages())
	assert.Equal(t, DefaultModels, gen.calls)
}

func TestBuildPrompt_Language(t *testing.T) {
	prompt, err := BuildPrompt("x", testRow(), testAverages(), "Montenegrin")
	require.NoError(t, err)
	assert.Contains(t, prompt, "Respond in Montenegrin.")

	prompt, err = BuildPrompt("x", testRow(), testAverages(), "")
	require.NoError(t, err)
	assert.NotContains(t, prompt, "Respond in")
}

func TestFormatRecord(t *testing.T) {
	got := FormatRecord(map[string]float64{
		"b": 2,
		"a": 1.005,
		"c": math.NaN(),
	})
	assert.Equal(t, "a: 1.00\nb: 2.00\nc: n/a", got)
	assert.Equal(t, "", FormatRecord(nil))
}

func TestCleanMarkdown(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  plain text \n", "plain text"},
		{"```markdown\n# Title\n```", "# Title"},
		{"```\n- item\n```", "- item"},
		{"```md\nline one\nline two\n```", "line one\nline two"},
		{"```", "```"},
		{"text with ``` inside", "text with ``` inside"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanMarkdown(tt.in), "input %q", tt.in)
	}
}

func TestHasContent(t *testing.T) {
	assert.True(t, HasContent("# Title\n\nBody"))
	assert.True(t, HasContent("just a sentence"))
	assert.False(t, HasContent(""))
	assert.False(t, HasContent(" \n\t"))
}
