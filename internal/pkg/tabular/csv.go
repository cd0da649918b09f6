package tabular

import (
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Delimiters tried in order, both during sampling and on retry.
var candidateDelimiters = []rune{',', ';', '\t', '|'}

func parseCSV(data []byte, pre *Preflight) (*Stream, error) {
	text, encoding := decodeText(data)
	pre.Encoding = encoding

	delim := detectDelimiter(text)
	pre.Delimiter = string(delim)

	stream, err := readCSV(text, delim, false)
	if err == nil {
		return stream, nil
	}

	// Retry with every candidate delimiter before giving up. A fallback only
	// counts when it actually splits the header into columns.
	for _, d := range candidateDelimiters {
		if d == delim {
			continue
		}
		if stream, rerr := readCSV(text, d, false); rerr == nil && len(stream.Headers) > 1 {
			pre.Delimiter = string(d)
			stream.Notes = append(stream.Notes,
				fmt.Sprintf("csv parsed with fallback delimiter %q", string(d)))
			return stream, nil
		}
	}

	// Last resort: accept rows with length mismatches.
	stream, lerr := readCSV(text, delim, true)
	if lerr != nil {
		return nil, &ParseError{Format: "csv", Reason: err.Error()}
	}
	stream.Notes = append(stream.Notes, "csv parsed leniently: row length mismatches accepted")
	return stream, nil
}

func readCSV(text string, delim rune, lenient bool) (*Stream, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.TrimLeadingSpace = true
	if lenient {
		r.FieldsPerRecord = -1
	}

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Stream{Headers: []string{}}, nil
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
	}

	return &Stream{Headers: headers, records: dropEmptyRecords(records[1:])}, nil
}

// detectDelimiter inspects up to five leading lines and picks the candidate
// whose header count repeats across the sampled data lines. Candidates absent
// from the header are never picked.
func detectDelimiter(text string) rune {
	lines := strings.SplitN(text, "\n", 6)
	if len(lines) > 5 {
		lines = lines[:5]
	}
	sample := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			sample = append(sample, line)
		}
	}
	if len(sample) == 0 {
		return ','
	}

	bestDelim := ','
	bestScore := 0
	for _, d := range candidateDelimiters {
		headerCount := strings.Count(sample[0], string(d))
		if headerCount == 0 {
			continue
		}
		score := headerCount
		for _, line := range sample[1:] {
			if strings.Count(line, string(d)) == headerCount {
				score += headerCount
			}
		}
		if score > bestScore {
			bestScore = score
			bestDelim = d
		}
	}
	return bestDelim
}

// decodeText applies byte-frequency heuristics to recover a UTF-8 string.
// UTF-8 (with or without BOM) is the default; UTF-16 is recognized by BOM or
// zero-byte density; anything else falls back to Latin-1.
func decodeText(data []byte) (string, string) {
	// UTF-16 BOM
	if len(data) >= 2 {
		if data[0] == 0xFF && data[1] == 0xFE {
			return decodeUTF16(data[2:], true), "utf-16le"
		}
		if data[0] == 0xFE && data[1] == 0xFF {
			return decodeUTF16(data[2:], false), "utf-16be"
		}
	}
	if utf8.Valid(data) {
		return string(data), "utf-8"
	}
	// High zero-byte density without a BOM still indicates UTF-16.
	if zeroByteRatio(data) > 0.2 {
		return decodeUTF16(data, true), "utf-16le"
	}
	// Latin-1: every byte maps directly to the same code point.
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes), "latin-1"
}

func zeroByteRatio(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	sample := data
	if len(sample) > 4096 {
		sample = sample[:4096]
	}
	zeros := 0
	for _, b := range sample {
		if b == 0 {
			zeros++
		}
	}
	return float64(zeros) / float64(len(sample))
}

func decodeUTF16(data []byte, littleEndian bool) string {
	u16 := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		if littleEndian {
			u16 = append(u16, uint16(data[i])|uint16(data[i+1])<<8)
		} else {
			u16 = append(u16, uint16(data[i])<<8|uint16(data[i+1]))
		}
	}
	return string(utf16.Decode(u16))
}

func dropEmptyRecords(records [][]string) [][]string {
	out := records[:0]
	for _, rec := range records {
		empty := true
		for _, cell := range rec {
			if strings.TrimSpace(cell) != "" {
				empty = false
				break
			}
		}
		if !empty {
			out = append(out, rec)
		}
	}
	return out
}
