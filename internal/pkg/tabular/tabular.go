package tabular

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
)

// Preflight issue codes.
const (
	IssueDuplicateHeaders = "duplicate_headers"
	IssueEmptyHeaders     = "empty_headers"
	IssueZeroRows         = "zero_rows"
	IssueBinaryUnreadable = "binary_unreadable"
)

// ParseError means the bytes are not parseable in the declared format. It is
// terminal for that file.
type ParseError struct {
	Format string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s input: %s", e.Format, e.Reason)
}

// DuplicateHeaderError is raised when two columns normalize to the same name.
type DuplicateHeaderError struct {
	Header string
}

func (e *DuplicateHeaderError) Error() string {
	return fmt.Sprintf("duplicate header %q", e.Header)
}

// Row maps a normalized column name to its raw cell value.
type Row map[string]string

// Stream is the decoded form of one tabular file: a header list plus
// sequential row iteration. Iteration order matches the input file.
type Stream struct {
	Headers []string
	records [][]string
	pos     int

	// Notes collects parser degradations (ragged rows accepted, retried
	// delimiters) that callers record as lineage metadata.
	Notes []string
}

// Len returns the number of data rows.
func (s *Stream) Len() int {
	return len(s.records)
}

// Next returns the next row, or false when the stream is exhausted. Short
// records leave trailing columns empty; long records drop the overflow.
func (s *Stream) Next() (Row, bool) {
	if s.pos >= len(s.records) {
		return nil, false
	}
	rec := s.records[s.pos]
	s.pos++
	row := make(Row, len(s.Headers))
	for i, h := range s.Headers {
		if i < len(rec) {
			row[h] = strings.TrimSpace(rec[i])
		} else {
			row[h] = ""
		}
	}
	return row, true
}

// Reset rewinds iteration to the first row.
func (s *Stream) Reset() {
	s.pos = 0
}

// Rows drains the stream into a slice. Convenience for validators that need
// column vectors; resets afterwards.
func (s *Stream) Rows() []Row {
	s.Reset()
	out := make([]Row, 0, s.Len())
	for {
		row, ok := s.Next()
		if !ok {
			break
		}
		out = append(out, row)
	}
	s.Reset()
	return out
}

// Column returns the value vector for one header across all rows.
func (s *Stream) Column(header string) []string {
	idx := -1
	for i, h := range s.Headers {
		if h == header {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]string, 0, len(s.records))
	for _, rec := range s.records {
		if idx < len(rec) {
			out = append(out, strings.TrimSpace(rec[idx]))
		} else {
			out = append(out, "")
		}
	}
	return out
}

// Preflight summarizes one parsed file for the upload report.
type Preflight struct {
	MIME      string   `json:"mime"`
	Checksum  string   `json:"checksum"`
	Format    string   `json:"format"`
	Encoding  string   `json:"encoding,omitempty"`
	Delimiter string   `json:"delimiter,omitempty"`
	Headers   []string `json:"headers"`
	Issues    []string `json:"issues"`
}

// Result bundles the decoded stream with its preflight report.
type Result struct {
	Stream    *Stream
	Preflight Preflight
}

// Parse decodes CSV/XLSX/XLS/JSON bytes by file extension into a row stream
// and a preflight report.
func Parse(data []byte, filename string) (*Result, error) {
	checksum := sha256.Sum256(data)
	pre := Preflight{
		Checksum: hex.EncodeToString(checksum[:]),
		Issues:   []string{},
	}

	ext := strings.ToLower(filepath.Ext(filename))
	var (
		stream *Stream
		err    error
	)
	switch ext {
	case ".csv", ".tsv", ".txt", "":
		pre.Format = "csv"
		pre.MIME = "text/csv"
		stream, err = parseCSV(data, &pre)
	case ".xlsx":
		pre.Format = "xlsx"
		pre.MIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		stream, err = parseXLSX(data, &pre)
	case ".xls":
		pre.Format = "xls"
		pre.MIME = "application/vnd.ms-excel"
		stream, err = parseXLS(data, &pre)
	case ".json":
		pre.Format = "json"
		pre.MIME = "application/json"
		stream, err = parseJSON(data, &pre)
	default:
		return nil, &ParseError{Format: strings.TrimPrefix(ext, "."), Reason: "unsupported file extension"}
	}
	if err != nil {
		return nil, err
	}

	if dup := firstDuplicateHeader(stream.Headers); dup != "" {
		pre.Issues = append(pre.Issues, IssueDuplicateHeaders)
		return nil, &DuplicateHeaderError{Header: dup}
	}
	if stream.Len() == 0 {
		pre.Issues = append(pre.Issues, IssueZeroRows)
	}
	pre.Headers = stream.Headers

	return &Result{Stream: stream, Preflight: pre}, nil
}

// firstDuplicateHeader reports the first header that appears twice after
// case-insensitive normalization.
func firstDuplicateHeader(headers []string) string {
	seen := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		key := strings.ToLower(strings.TrimSpace(h))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			return h
		}
		seen[key] = struct{}{}
	}
	return ""
}
