package eventlog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// IngestString extracts every line of s into a sequence of event
// records, in the order the lines appear.
func IngestString(s string) []*Record {
	var out []*Record
	for _, line := range strings.Split(s, "\n") {
		if line == "" {
			continue
		}
		if r := ExtractLine(line); r != nil {
			out = append(out, r)
		}
	}
	return out
}

// IngestFile reads path, decoding as UTF-8 and falling back to
// ISO-8859-1 on strict UTF-8 failure (§4.C), and extracts its lines.
func IngestFile(path string) ([]*Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", path, err)
	}

	text := decodeWithFallback(raw)

	var out []*Record
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 256*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if r := ExtractLine(line); r != nil {
			out = append(out, r)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ingest %s: %w", path, err)
	}
	return out, nil
}

func decodeWithFallback(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

// IngestDir walks dir non-recursively, reading every entry whose name
// ends in ".log", sorted lexically for a deterministic read order (the
// engine re-sorts by timestamp with a stable sort, so this order only
// decides the order of events that share a timestamp).
func IngestDir(dir string) ([]*Record, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ingest dir %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".log") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var out []*Record
	for _, name := range names {
		recs, err := IngestFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	return out, nil
}

// StructuredRow is a pre-split livestatus-style row: at least Time and
// Type are populated, and either Message (re-parsed via the line
// rules) or Options (already-split payload) carries the payload.
type StructuredRow struct {
	Time    int64
	Type    string
	Message string
	Options string
}

// ExtractStructured converts one structured row into an event record.
func ExtractStructured(row StructuredRow) *Record {
	if row.Message != "" {
		return ExtractLine(fmt.Sprintf("[%010d] %s: %s", row.Time, row.Type, row.Message))
	}
	return dispatchTyped(row.Time, row.Type, row.Options)
}

// IngestStructured converts a sequence of structured rows into event
// records, dropping rows that fail to extract.
func IngestStructured(rows []StructuredRow) []*Record {
	var out []*Record
	for _, row := range rows {
		if r := ExtractStructured(row); r != nil {
			out = append(out, r)
		}
	}
	return out
}
