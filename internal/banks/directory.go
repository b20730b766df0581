package banks

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Directory is an immutable code -> display name lookup.
type Directory struct {
	banks  []Bank
	byCode map[string]string
}

// NewDirectory builds a Directory from banks. Codes are matched
// case-insensitively; a later entry for the same code wins.
func NewDirectory(banks []Bank) *Directory {
	byCode := make(map[string]string, len(banks))
	for _, b := range banks {
		byCode[strings.ToLower(b.Code)] = b.Name
	}
	list := make([]Bank, 0, len(byCode))
	for code, name := range byCode {
		list = append(list, Bank{Code: code, Name: name})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return &Directory{banks: list, byCode: byCode}
}

// Default returns a Directory over DefaultBanks.
func Default() *Directory {
	return NewDirectory(DefaultBanks())
}

// Load reads a banks CSV and merges it over the defaults.
func Load(path string) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening bank directory: %w", err)
	}
	defer f.Close()

	extra, err := ReadBanks(f)
	if err != nil {
		return nil, fmt.Errorf("reading bank directory: %w", err)
	}
	return NewDirectory(append(DefaultBanks(), extra...)), nil
}

// Lookup returns the display name for code and whether the code is known.
// Unknown codes resolve to the uppercased code.
func (d *Directory) Lookup(code string) (string, bool) {
	if name, ok := d.byCode[strings.ToLower(code)]; ok {
		return name, true
	}
	return strings.ToUpper(code), false
}

// Name returns the display name for code, falling back to the uppercased code.
func (d *Directory) Name(code string) string {
	name, _ := d.Lookup(code)
	return name
}

// Code returns the code registered for a display name, or the name itself.
func (d *Directory) Code(name string) string {
	for _, b := range d.banks {
		if b.Name == name {
			return b.Code
		}
	}
	return name
}

// All returns a copy of the directory ordered by code.
func (d *Directory) All() []Bank {
	out := make([]Bank, len(d.banks))
	copy(out, d.banks)
	return out
}

// Save writes the directory to path as CSV.
func (d *Directory) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating bank directory file: %w", err)
	}
	defer f.Close()

	if err := WriteBanks(f, d.banks); err != nil {
		return fmt.Errorf("writing bank directory: %w", err)
	}
	return nil
}
