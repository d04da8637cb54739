// Package runlog keeps a local CSV audit trail of publish runs.
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Entry is one row in the run log: a single successful publish.
type Entry struct {
	Timestamp time.Time
	Category  string
	Action    string // "created" or "updated"
	Rules     int
	Accounts  int
	Depth     int
}

// Header is the CSV header for the run log.
const Header = "timestamp,category,action,rules,accounts,depth"

const (
	numFields    = 6
	colTimestamp = 0
	colCategory  = 1
	colAction    = 2
	colRules     = 3
	colAccounts  = 4
	colDepth     = 5
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colCategory] = e.Category
	row[colAction] = e.Action
	row[colRules] = strconv.Itoa(e.Rules)
	row[colAccounts] = strconv.Itoa(e.Accounts)
	row[colDepth] = strconv.Itoa(e.Depth)
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
	rules, err := strconv.Atoi(record[colRules])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing rule count %q: %w", record[colRules], err)
	}
	accounts, err := strconv.Atoi(record[colAccounts])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing account count %q: %w", record[colAccounts], err)
	}
	depth, err := strconv.Atoi(record[colDepth])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing depth %q: %w", record[colDepth], err)
	}

	return Entry{
		Timestamp: ts,
		Category:  record[colCategory],
		Action:    record[colAction],
		Rules:     rules,
		Accounts:  accounts,
		Depth:     depth,
	}, nil
}

// Append writes an entry to the log at path, creating the file and header
// if needed.
func Append(path string, e Entry) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating run log dir: %w", err)
		}
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	if err := cw.Write(MarshalEntry(e)); err != nil {
		return fmt.Errorf("writing entry: %w", err)
	}
	return cw.Error()
}

// Read returns all entries from the log at path. Returns an empty slice if
// the file does not exist.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
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
