package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ErrMissingColumns is returned when a file lacks the position or amount column.
var ErrMissingColumns = errors.New("missing required columns")

// Columns names the header cells that hold the position label and the amount.
// Header cells are compared after trimming and uppercasing.
type Columns struct {
	Position string
	Amount   string
}

// DefaultColumns are the headers used by the central bank's extracts.
func DefaultColumns() Columns {
	return Columns{Position: "POZICIJA", Amount: "IZNOS"}
}

// Row is one data row of a statement file, before amount normalization.
type Row struct {
	Line     int
	Position string
	Amount   string
}

// ReadRows reads statement rows from r. The input is decoded from charset
// (empty or "utf-8" means no transcoding) and a leading BOM is dropped.
// A delimiter of 0 is detected from the header line.
func ReadRows(r io.Reader, cols Columns, charset string, delimiter rune) ([]Row, error) {
	dec, err := Decoder(charset)
	if err != nil {
		return nil, err
	}
	if dec != nil {
		r = transform.NewReader(r, dec.NewDecoder())
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading statement: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	if delimiter == 0 {
		delimiter = detectDelimiter(data)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: file is empty", ErrMissingColumns)
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	posIdx, amtIdx := -1, -1
	for i, h := range header {
		switch strings.ToUpper(strings.TrimSpace(h)) {
		case strings.ToUpper(cols.Position):
			if posIdx < 0 {
				posIdx = i
			}
		case strings.ToUpper(cols.Amount):
			if amtIdx < 0 {
				amtIdx = i
			}
		}
	}

	var missing []string
	if posIdx < 0 {
		missing = append(missing, cols.Position)
	}
	if amtIdx < 0 {
		missing = append(missing, cols.Amount)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, Row{
			Line:     line,
			Position: strings.TrimSpace(field(rec, posIdx)),
			Amount:   field(rec, amtIdx),
		})
	}
	return rows, nil
}

// Decoder returns the text encoding for a charset name, or nil for UTF-8.
func Decoder(charset string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "windows-1250", "cp1250":
		return charmap.Windows1250, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "iso-8859-2", "latin2":
		return charmap.ISO8859_2, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", charset)
	}
}

func field(rec []string, idx int) string {
	if idx < len(rec) {
		return rec[idx]
	}
	return ""
}

// detectDelimiter picks the most frequent of ',', ';' and tab on the first line.
func detectDelimiter(data []byte) rune {
	first := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		first = data[:i]
	}
	best, bestCount := ',', bytes.Count(first, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if c := bytes.Count(first, []byte(string(d))); c > bestCount {
			best, bestCount = d, c
		}
	}
	return best
}
