package ingest

import (
	"path/filepath"
	"strings"
)

// codeLength is the number of characters kept as the bank code.
const codeLength = 3

// Decoded is what a file name says about its contents.
type Decoded struct {
	Quarter string // leading digit run, e.g. "0925"
	Code    string // lowercase bank code, e.g. "ckb"
}

// DecodeFilename extracts the quarter tag and bank code from a path such as
// "data/bu/0925ckb_bu.csv". The leading digit run is the quarter tag; after
// removing it and every occurrence of suffix, the first three characters are
// the bank code.
//
// Stems shorter than three characters after stripping give a short or empty
// code, which is returned unchanged.
func DecodeFilename(path, suffix string) Decoded {
	stem := strings.ToLower(filepath.Base(path))
	stem = strings.TrimSuffix(stem, filepath.Ext(stem))

	i := 0
	for i < len(stem) && stem[i] >= '0' && stem[i] <= '9' {
		i++
	}
	quarter, rest := stem[:i], stem[i:]

	if suffix != "" {
		rest = strings.ReplaceAll(rest, strings.ToLower(suffix), "")
	}

	runes := []rune(rest)
	if len(runes) > codeLength {
		runes = runes[:codeLength]
	}
	return Decoded{Quarter: quarter, Code: string(runes)}
}
