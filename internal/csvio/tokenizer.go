// Package csvio provides the tolerant CSV tokenizer, numeric coercion, and
// date normalization shared by the price and investor-flow loaders.
//
// KRX 데이터는 붙여넣기/다운로드 경로에 따라 BOM, 구분자, 따옴표 처리가 제각각이라
// 표준 encoding/csv 대신 관대한 토크나이저를 사용한다.
package csvio

import (
	"regexp"
	"strings"
)

// Row is a single tokenized CSV record, keyed by header cell.
type Row map[string]string

// Report describes how a block of text was tokenized. Parsers return it
// instead of logging so callers decide what to surface.
type Report struct {
	Separator string   `json:"separator"` // ",", "\t" or "ws"
	Headers   []string `json:"headers"`
	Rows      int      `json:"rows"`
}

var wsRun = regexp.MustCompile(`\s+`)

// Tokenize parses raw CSV/TSV text into rows keyed by header.
//
// Behavior:
//   - strips every common BOM variant before any other processing
//   - splits on CRLF or LF, discarding blank lines
//   - fewer than 2 non-blank lines (header only, or nothing) yields no rows
//   - separator is tab when the header line contains one, else comma;
//     if the header has neither but contains whitespace, whitespace runs
//     act as the separator (space-aligned paste)
//   - cells are trimmed; fully quoted cells are unquoted, doubled quotes
//     inside quoted cells collapse to one
//   - short rows pad missing trailing columns with ""; extra columns are
//     dropped
func Tokenize(text string) ([]Row, Report) {
	report := Report{Separator: ","}
	clean := StripBOM(strings.TrimSpace(text))

	var lines []string
	for _, line := range strings.Split(clean, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return nil, report
	}

	head := lines[0]
	sep := byte(',')
	whitespaceMode := false
	switch {
	case strings.ContainsRune(head, '\t'):
		sep = '\t'
		report.Separator = "\t"
	case !strings.ContainsRune(head, ',') && wsRun.MatchString(head):
		whitespaceMode = true
		report.Separator = "ws"
	}

	split := func(line string) []string {
		if whitespaceMode {
			return wsRun.Split(strings.TrimSpace(line), -1)
		}
		return splitLine(line, sep)
	}

	headers := split(head)
	for i, h := range headers {
		headers[i] = StripBOM(strings.TrimSpace(h))
	}
	report.Headers = headers

	rows := make([]Row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		values := split(line)
		row := make(Row, len(headers))
		for i, h := range headers {
			if i < len(values) {
				row[h] = values[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	report.Rows = len(rows)

	return rows, report
}

// splitLine splits one CSV line on sep with minimal quote support:
// a field wholly inside double quotes may contain the separator, and a
// doubled quote collapses to a literal one.
func splitLine(line string, sep byte) []string {
	var result []string
	var current strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				current.WriteByte('"')
				i++ // skip the second quote
			} else {
				inQuotes = !inQuotes
			}
		case ch == sep && !inQuotes:
			result = append(result, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}
	result = append(result, strings.TrimSpace(current.String()))

	return result
}

// StripBOM removes every leading byte-order-mark variant: the decoded
// U+FEFF rune and the mis-decoded UTF-8 BOM byte triplet.
func StripBOM(s string) string {
	for {
		switch {
		case strings.HasPrefix(s, "\uFEFF"):
			s = strings.TrimPrefix(s, "\uFEFF")
		case strings.HasPrefix(s, "ï»¿"): // UTF-8 BOM decoded as Latin-1
			s = strings.TrimPrefix(s, "ï»¿")
		default:
			return s
		}
	}
}
