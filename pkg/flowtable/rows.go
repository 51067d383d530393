package flowtable

import (
	"strconv"
	"strings"
)

// ColumnCount is fixed by the compiler's wire format. Every row carries all
// 26 column positions even when a field is absent.
const ColumnCount = 26

const separator = ','

// Columns lists the positional column names of the wire format, in order.
var Columns = [ColumnCount]string{
	"Node Number",
	"Node Type",
	"Node Name",
	"Intent",
	"Entity Type",
	"Entity",
	"NLU Disabled",
	"Next Nodes",
	"Message",
	"Rich Asset Type",
	"Rich Asset Content",
	"Answer Required",
	"Behaviors",
	"Command",
	"Description",
	"Output",
	"Node Input",
	"Parameter Input",
	"Decision Variable",
	"What Next",
	"Node Tags",
	"Skill Tag",
	"Variable",
	"Platform Flag",
	"Flows",
	"CSS Classname",
}

// Header returns the wire-format header row.
func Header() string {
	return strings.Join(Columns[:], string(separator))
}

// HeaderPrefix is the stable start of the header, used to locate a table
// inside free-form generation output.
const HeaderPrefix = "Node Number,Node Type,Node Name"

// SplitRows splits artifact text into logical rows. A quoted field may
// contain embedded line breaks, so this walks the text tracking quote state
// instead of splitting on newlines. Raw row text is preserved verbatim;
// the repair splice depends on that.
func SplitRows(artifact string) []string {
	var rows []string
	var start int
	inQuotes := false

	for i := 0; i < len(artifact); i++ {
		switch artifact[i] {
		case '"':
			inQuotes = !inQuotes
		case '\n':
			if inQuotes {
				continue
			}
			row := artifact[start:i]
			row = strings.TrimSuffix(row, "\r")
			rows = append(rows, row)
			start = i + 1
		}
	}
	if start < len(artifact) {
		rows = append(rows, strings.TrimSuffix(artifact[start:], "\r"))
	}
	return rows
}

// RowNum extracts the leading Node Number column of a data row.
func RowNum(row string) (int, bool) {
	field := row
	if idx := strings.IndexByte(row, separator); idx >= 0 {
		field = row[:idx]
	}
	field = strings.TrimSpace(strings.Trim(field, `"`))
	num, err := strconv.Atoi(field)
	if err != nil {
		return 0, false
	}
	return num, true
}

// IsDataRow reports whether a logical row starts with a node number.
func IsDataRow(row string) bool {
	_, ok := RowNum(row)
	return ok
}

// Fields splits one logical row into its column values, undoing the
// quote escaping. Used by tests and by callers that inspect single columns;
// the repair engine deliberately never round-trips rows through this.
func Fields(row string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false

	for i := 0; i < len(row); i++ {
		c := row[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(row) && row[i+1] == '"' {
				cur.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case c == separator && !inQuotes:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	fields = append(fields, cur.String())
	return fields
}
