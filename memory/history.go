package memory

import "strings"

// HistoryDelimiter separates records in the SummaryHistory artifact.
const HistoryDelimiter = "\n---\n"

// SplitHistory parses the stored history into records, oldest first.
// Blank records are dropped.
func SplitHistory(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var out []string
	for _, r := range strings.Split(raw, HistoryDelimiter) {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

// JoinHistory is the inverse of SplitHistory. A line inside a record that
// would read back as the delimiter, such as a markdown rule, is written as
// "***" so each record stays one record.
func JoinHistory(records []string) string {
	keep := make([]string, 0, len(records))
	for _, r := range records {
		if r = strings.TrimSpace(r); r != "" {
			keep = append(keep, escapeRecord(r))
		}
	}
	return strings.Join(keep, HistoryDelimiter)
}

var delimiterLine = strings.Trim(HistoryDelimiter, "\n")

func escapeRecord(r string) string {
	if !strings.Contains(r, delimiterLine) {
		return r
	}
	lines := strings.Split(r, "\n")
	for i, l := range lines {
		if l == delimiterLine {
			lines[i] = "***"
		}
	}
	return strings.Join(lines, "\n")
}

// AppendRecord adds record to the end of the stored history.
func AppendRecord(raw, record string) string {
	return JoinHistory(append(SplitHistory(raw), record))
}
