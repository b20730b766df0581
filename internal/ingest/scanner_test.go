package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankbench-dev/bankbench/internal/model"
)

const statementsDir = "../../testdata/statements"

func newTestScanner() *Scanner {
	return NewScanner(DefaultOptions(), nil, nil)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRegistry_KindOf(t *testing.T) {
	r := DefaultRegistry()

	kind, ok := r.KindOf("0925ckb_bu.csv")
	require.True(t, ok)
	assert.Equal(t, KindIncome, kind)

	kind, ok = r.KindOf("0925CKB_BS.CSV")
	require.True(t, ok)
	assert.Equal(t, KindBalance, kind)

	_, ok = r.KindOf("0925ckb_bu.xlsx")
	assert.False(t, ok)

	_, ok = r.KindOf("0925ckb.csv")
	assert.False(t, ok)
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register("_bu", KindIncome)
	assert.Panics(t, func() { r.Register("_BU", KindBalance) })
}

func TestFind_SelectsIncomeStatements(t *testing.T) {
	files, err := newTestScanner().Find(statementsDir, "0925")
	require.NoError(t, err)
	require.Len(t, files, 3)

	var codes []string
	for _, f := range files {
		codes = append(codes, f.Decoded.Code)
		assert.Equal(t, "0925", f.Decoded.Quarter)
	}
	assert.ElementsMatch(t, []string{"adr", "ckb", "hip"}, codes)
}

func TestFind_Recursive(t *testing.T) {
	files, err := newTestScanner().Find(statementsDir, "0625")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "Crnogorska Komercijalna Banka", files[0].Bank)
}

func TestFind_InvalidPattern(t *testing.T) {
	_, err := newTestScanner().Find(statementsDir, "")
	assert.Error(t, err)

	_, err = newTestScanner().Find(statementsDir, "09*")
	assert.Error(t, err)
}

func TestScan_Quarter(t *testing.T) {
	ds, err := newTestScanner().Scan(statementsDir, "0925")
	require.NoError(t, err)

	assert.Equal(t, "0925", ds.Quarter)
	assert.Len(t, ds.Files, 3)
	assert.Empty(t, ds.Skipped)
	assert.Len(t, ds.Items, 18, "three files of six rows")

	banks := make(map[string]int)
	for _, item := range ds.Items {
		banks[item.Bank]++
	}
	assert.Equal(t, map[string]int{
		"Adriatic Banka":                6,
		"Crnogorska Komercijalna Banka": 6,
		"Hipotekarna Banka":             6,
	}, banks)

	require.Len(t, ds.Fallbacks, 1, "only the quoted thousands value is cleaned")
	assert.Equal(t, "12,000", ds.Fallbacks[0].Raw)
	assert.Equal(t, OutcomeCleaned, ds.Fallbacks[0].Outcome)
	assert.Equal(t, 2, ds.Fallbacks[0].Line)

	assert.Contains(t, ds.Items, model.LineItem{
		Position: "1. Prihodi od kamata i slicni prihodi",
		Amount:   12000,
		Bank:     "Crnogorska Komercijalna Banka",
	})
	assert.Contains(t, ds.Items, model.LineItem{
		Position: "22. NETO PROFIT/GUBITAK (III - 21)",
		Amount:   -300,
		Bank:     "Adriatic Banka",
	})
}

func TestScan_NoMatches(t *testing.T) {
	ds, err := newTestScanner().Scan(statementsDir, "0321")
	require.NoError(t, err)
	require.NotNil(t, ds)
	assert.True(t, ds.Empty())
	assert.Empty(t, ds.Files)
}

func TestScan_MissingRoot(t *testing.T) {
	ds, err := newTestScanner().Scan(filepath.Join(t.TempDir(), "nope"), "0925")
	require.NoError(t, err)
	assert.True(t, ds.Empty())
}

func TestScan_SkipsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "0925ckb_bu.csv", "POZICIJA,IZNOS\nKamate,100\n")
	bad := writeFile(t, dir, "0925hip_bu.csv", "POZICIJA,VRIJEDNOST\nKamate,100\n")

	ds, err := newTestScanner().Scan(dir, "0925")
	require.NoError(t, err)

	require.Len(t, ds.Items, 1)
	assert.Equal(t, "Crnogorska Komercijalna Banka", ds.Items[0].Bank)
	require.Len(t, ds.Skipped, 1)
	assert.Equal(t, bad, ds.Skipped[0].Path)
	assert.Contains(t, ds.Skipped[0].Reason, "missing required columns")
}

func TestScan_AllMalformed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "0925ckb_bu.csv", "NAZIV\nKamate\n")

	ds, err := newTestScanner().Scan(dir, "0925")
	require.NoError(t, err)
	assert.True(t, ds.Empty())
	assert.Len(t, ds.Skipped, 1)
}

func TestScan_DropsBlankPositions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "0925ckb_bu.csv", "POZICIJA,IZNOS\n,100\nKamate,abc\n")

	ds, err := newTestScanner().Scan(dir, "0925")
	require.NoError(t, err)
	require.Len(t, ds.Items, 1)
	assert.Equal(t, 0.0, ds.Items[0].Amount)
	require.Len(t, ds.Fallbacks, 1)
	assert.Equal(t, OutcomeFallback, ds.Fallbacks[0].Outcome)
}

func TestScan_DotGroupedColumn(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "0925ckb_bu.csv", "POZICIJA;IZNOS\nA;1.234.567\nB;2.500\nC;700\n")

	ds, err := newTestScanner().Scan(dir, "0925")
	require.NoError(t, err)
	require.Len(t, ds.Items, 3)
	assert.Equal(t, 1234567.0, ds.Items[0].Amount)
	assert.Equal(t, 2500.0, ds.Items[1].Amount)
	assert.Equal(t, 700.0, ds.Items[2].Amount)

	require.Len(t, ds.Fallbacks, 2)
	assert.Equal(t, "2.500", ds.Fallbacks[1].Raw)
	assert.Equal(t, OutcomeCleaned, ds.Fallbacks[1].Outcome)
}

func TestScan_UnknownBankCode(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "0925xyz_bu.csv", "POZICIJA,IZNOS\nKamate,1\n")

	ds, err := newTestScanner().Scan(dir, "0925")
	require.NoError(t, err)
	require.Len(t, ds.Items, 1)
	assert.Equal(t, "XYZ", ds.Items[0].Bank)
}

func TestScan_AccountingNegatives(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "0925ckb_bu.csv", "POZICIJA,IZNOS\nGubitak,(250)\n")

	opts := DefaultOptions()
	opts.Normalizer = Normalizer{AccountingNegatives: true}
	ds, err := NewScanner(opts, nil, nil).Scan(dir, "0925")
	require.NoError(t, err)
	require.Len(t, ds.Items, 1)
	assert.Equal(t, -250.0, ds.Items[0].Amount)
}

func TestScan_CustomSuffix(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "0925ckb_is.csv", "POZICIJA,IZNOS\nKamate,1\n")
	writeFile(t, dir, "0925ckb_bu.csv", "POZICIJA,IZNOS\nKamate,2\n")

	opts := DefaultOptions()
	opts.IncomeSuffix = "_is"
	ds, err := NewScanner(opts, nil, nil).Scan(dir, "0925")
	require.NoError(t, err)
	require.Len(t, ds.Items, 1)
	assert.Equal(t, 1.0, ds.Items[0].Amount)
	assert.Equal(t, "Crnogorska Komercijalna Banka", ds.Items[0].Bank)
}

func TestQuarters(t *testing.T) {
	quarters, err := newTestScanner().Quarters(statementsDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"0625", "0925"}, quarters)
}

func TestQuarters_MissingRoot(t *testing.T) {
	quarters, err := newTestScanner().Quarters(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, quarters)
}
