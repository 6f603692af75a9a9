package metrics

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Features holds local text features of a message. No text is retained.
type Features struct {
	Bytes         int
	Runes         int
	Words         int
	Lines         int
	Bullets       int // lines starting with "•"
	NumberedItems int // lines starting with "<digits>. "
}

// CountFeatures derives Features from s.
func CountFeatures(s string) Features {
	f := Features{
		Bytes: len(s),
		Runes: utf8.RuneCountInString(s),
		Words: len(strings.Fields(s)),
	}
	if s == "" {
		return f
	}
	lines := strings.Split(s, "\n")
	f.Lines = len(lines)
	for _, ln := range lines {
		ln = strings.TrimLeftFunc(ln, unicode.IsSpace)
		switch {
		case strings.HasPrefix(ln, "•"):
			f.Bullets++
		case isNumbered(ln):
			f.NumberedItems++
		}
	}
	return f
}

func isNumbered(ln string) bool {
	i := 0
	for i < len(ln) && ln[i] >= '0' && ln[i] <= '9' {
		i++
	}
	return i > 0 && i+1 < len(ln) && ln[i] == '.' && ln[i+1] == ' '
}
