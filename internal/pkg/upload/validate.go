package upload

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
)

var allowedExt = map[string]bool{
	".csv":  true,
	".txt":  true,
	".tsv":  true,
	".xlsx": true,
	".xls":  true,
	".json": true,
}

// MIME prefixes accepted after sniffing. XLSX arrives as a zip container and
// XLS as a compound file, both of which sniff as octet-stream or zip.
var allowedMimePrefix = []string{
	"text/plain",
	"text/csv",
	"application/json",
	"application/zip",
	"application/octet-stream",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats",
}

// ValidateTabularBySniff checks the filename extension and the first bytes of
// an upload against the supported tabular formats. Returns the detected mime.
func ValidateTabularBySniff(filename string, head []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExt[ext] {
		return "", errors.New("only CSV, TSV, TXT, XLSX, XLS and JSON files are supported")
	}

	detected := http.DetectContentType(head)

	// block scriptable content regardless of extension
	if strings.HasPrefix(detected, "text/html") || strings.HasPrefix(detected, "application/xhtml") {
		return "", errors.New("HTML content is not allowed")
	}

	for _, prefix := range allowedMimePrefix {
		if strings.HasPrefix(detected, prefix) {
			return detected, nil
		}
	}
	return "", errors.New("unsupported file type")
}
