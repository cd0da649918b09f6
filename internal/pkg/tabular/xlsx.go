package tabular

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

func parseXLSX(data []byte, pre *Preflight) (*Stream, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		pre.Issues = append(pre.Issues, IssueBinaryUnreadable)
		return nil, &ParseError{Format: "xlsx", Reason: err.Error()}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Format: "xlsx", Reason: "workbook has no sheets"}
	}

	// Only the first sheet participates; row 1 is the header.
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &ParseError{Format: "xlsx", Reason: err.Error()}
	}
	if len(rows) == 0 {
		return &Stream{Headers: []string{}}, nil
	}

	headers := normalizeSheetHeaders(rows[0], pre)
	return &Stream{Headers: headers, records: dropEmptyRecords(rows[1:])}, nil
}

// parseXLS reads legacy BIFF workbooks through a separate decoder but yields
// the same stream shape as the XLSX path.
func parseXLS(data []byte, pre *Preflight) (*Stream, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		pre.Issues = append(pre.Issues, IssueBinaryUnreadable)
		return nil, &ParseError{Format: "xls", Reason: err.Error()}
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, &ParseError{Format: "xls", Reason: "workbook has no sheets"}
	}

	var raw [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			raw = append(raw, []string{})
			continue
		}
		cells := make([]string, 0, row.LastCol()+1)
		for c := 0; c <= row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		raw = append(raw, cells)
	}
	if len(raw) == 0 {
		return &Stream{Headers: []string{}}, nil
	}

	headers := normalizeSheetHeaders(raw[0], pre)
	return &Stream{Headers: headers, records: dropEmptyRecords(raw[1:])}, nil
}

// normalizeSheetHeaders trims header cells. Empty cells keep their positional
// index as column_<n> and are flagged in the preflight report.
func normalizeSheetHeaders(cells []string, pre *Preflight) []string {
	headers := make([]string, len(cells))
	flagged := false
	for i, h := range cells {
		trimmed := strings.TrimSpace(h)
		if trimmed == "" {
			trimmed = fmt.Sprintf("column_%d", i+1)
			if !flagged {
				pre.Issues = append(pre.Issues, IssueEmptyHeaders)
				flagged = true
			}
		}
		headers[i] = trimmed
	}
	return headers
}
