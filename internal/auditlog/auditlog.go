package auditlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bankbench-dev/bankbench/internal/ingest"
)

// Entry is one row in the normalization audit log: an amount that was not
// read straight from a number.
type Entry struct {
	Timestamp time.Time
	RunID     string
	Quarter   string
	File      string
	Line      int
	Position  string
	Raw       string
	Outcome   string
}

// Header is the CSV header of the audit log.
const Header = "timestamp,run_id,quarter,file,line,position,raw,outcome"

const (
	numFields    = 8
	colTimestamp = 0
	colRunID     = 1
	colQuarter   = 2
	colFile      = 3
	colLine      = 4
	colPosition  = 5
	colRaw       = 6
	colOutcome   = 7
)

// NewRunID returns an identifier grouping the entries of one invocation.
func NewRunID() string {
	return uuid.NewString()
}

// FromFallbacks converts the fallbacks of a scan into log entries.
func FromFallbacks(runID string, at time.Time, ds *ingest.Dataset) []Entry {
	if ds == nil {
		return nil
	}
	entries := make([]Entry, 0, len(ds.Fallbacks))
	for _, fb := range ds.Fallbacks {
		entries = append(entries, Entry{
			Timestamp: at,
			RunID:     runID,
			Quarter:   ds.Quarter,
			File:      fb.File,
			Line:      fb.Line,
			Position:  fb.Position,
			Raw:       fb.Raw,
			Outcome:   fb.Outcome.String(),
		})
	}
	return entries
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colRunID] = e.RunID
	row[colQuarter] = e.Quarter
	row[colFile] = e.File
	row[colLine] = strconv.Itoa(e.Line)
	row[colPosition] = e.Position
	row[colRaw] = e.Raw
	row[colOutcome] = e.Outcome
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	line, err := strconv.Atoi(record[colLine])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing line %q: %w", record[colLine], err)
	}

	return Entry{
		Timestamp: ts,
		RunID:     record[colRunID],
		Quarter:   record[colQuarter],
		File:      record[colFile],
		Line:      line,
		Position:  record[colPosition],
		Raw:       record[colRaw],
		Outcome:   record[colOutcome],
	}, nil
}

// Append writes entries to the CSV file at path, creating the file, its
// directory and the header if needed.
func Append(path string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating audit log dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries of the audit log at path.
// Returns an empty slice if the file does not exist.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading audit log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
