// Package tabular parses spreadsheet tabs exported as comma-delimited text
// into ordered records keyed by the header row's field names.
package tabular

import "strings"

// Record maps header field names to values for one data row. Rows shorter
// than the header simply lack the trailing keys; consumers must distinguish
// an absent field from an empty one.
type Record map[string]string

// Table is one parsed tab: the header's field names in column order, plus one
// record per data row. A trailing blank row still yields a (garbage) record,
// matching the upstream export format; consumers filter on their id field.
type Table struct {
	Fields  []string
	Records []Record
}

// SplitLine splits one row of delimited text into field values. A double
// quote toggles quoted mode, inside which commas are literal content. Quote
// characters are toggle markers only and never appear in the output; doubled
// quotes inside a quoted field are NOT unescaped to a literal quote. That
// limitation is kept on purpose so parsing matches the sheet export exactly.
func SplitLine(line string) []string {
	fields := make([]string, 0, 8)
	var b strings.Builder
	inQuotes := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, b.String())
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	fields = append(fields, b.String())

	return fields
}

// Parse converts a whole tab of delimited text into a Table. The first row
// supplies the ordered field names; each later row is zipped positionally
// against them. Extra values beyond the header are dropped.
func Parse(text string) Table {
	lines := strings.Split(text, "\n")
	if len(lines) == 0 {
		return Table{}
	}

	fields := SplitLine(trimCR(lines[0]))
	table := Table{
		Fields:  fields,
		Records: make([]Record, 0, len(lines)-1),
	}

	for _, line := range lines[1:] {
		values := SplitLine(trimCR(line))
		record := make(Record, len(fields))
		for i, value := range values {
			if i >= len(fields) {
				break
			}
			record[fields[i]] = value
		}
		table.Records = append(table.Records, record)
	}

	return table
}

// trimCR drops a trailing carriage return left over from CRLF row separators.
func trimCR(line string) string {
	return strings.TrimSuffix(line, "\r")
}
