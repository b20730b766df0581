package banks

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

const (
	numFields = 2
	colCode   = 0
	colName   = 1
)

// ReadBanks reads a banks.csv with a code,name header.
func ReadBanks(r io.Reader) ([]Bank, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading banks CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var banks []Bank
	for i, rec := range records[1:] {
		b, err := UnmarshalBank(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		banks = append(banks, b)
	}
	return banks, nil
}

// WriteBanks writes banks.csv including the header.
func WriteBanks(w io.Writer, banks []Bank) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"code", "name"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, b := range banks {
		if err := cw.Write(MarshalBank(b)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalBank converts a Bank to a CSV row.
func MarshalBank(b Bank) []string {
	row := make([]string, numFields)
	row[colCode] = b.Code
	row[colName] = b.Name
	return row
}

// UnmarshalBank converts a CSV row to a Bank.
func UnmarshalBank(record []string) (Bank, error) {
	if len(record) != numFields {
		return Bank{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	code := strings.ToLower(strings.TrimSpace(record[colCode]))
	if code == "" {
		return Bank{}, fmt.Errorf("empty bank code")
	}
	name := strings.TrimSpace(record[colName])
	if name == "" {
		return Bank{}, fmt.Errorf("empty name for bank code %q", code)
	}
	return Bank{Code: code, Name: name}, nil
}
