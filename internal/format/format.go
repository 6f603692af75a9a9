// Package format normalizes complete model replies into consistently
// structured prose, headers and lists.
//
// Normalization is an ordered pipeline of pure rewrite rules. Later rules
// assume the output of earlier ones, so order is significant. The pipeline
// is total: any input, including invalid UTF-8, produces some output.
package format

import (
	"regexp"
	"strings"
)

// Rule is one named text rewrite.
type Rule struct {
	Name  string
	Apply func(string) string
}

// Pipeline applies rules in order.
type Pipeline []Rule

// maxPasses bounds the fixed-point loop in Pipeline.Normalize.
const maxPasses = 8

// Normalize runs the pipeline until the text stops changing, then trims it.
func (p Pipeline) Normalize(raw string) string {
	text := raw
	for i := 0; i < maxPasses; i++ {
		next := strings.TrimSpace(p.apply(text))
		if next == text {
			break
		}
		text = next
	}
	return text
}

func (p Pipeline) apply(text string) string {
	for _, r := range p {
		text = r.Apply(text)
	}
	return text
}

// Default returns the reply normalization rules in application order.
func Default() Pipeline {
	return Pipeline{
		{Name: "line_endings", Apply: normalizeLineEndings},
		{Name: "section_headers", Apply: canonicalHeaders},
		{Name: "line_bullets", Apply: replace(lineBulletRe, "• $1")},
		{Name: "inline_bullets", Apply: replace(inlineBulletRe, "$1\n• ")},
		{Name: "clause_after_parenthetical", Apply: replace(clauseAfterParenRe, "$1).\n\nNow,")},
		{Name: "optional_break", Apply: replace(optionalRe, "$1\n\n$2")},
		{Name: "numbered_bold_title", Apply: replace(numberedBoldRe, "\n\n$1 $2")},
		{Name: "numbered_inline", Apply: replace(numberedInlineRe, "$1\n\n$2")},
		{Name: "numbered_lines", Apply: replace(numberedLineRe, "\n\n$1$2")},
		{Name: "strip_bold", Apply: replace(boldRunRe, "")},
		{Name: "trailing_space", Apply: replace(trailingSpaceRe, "")},
		{Name: "collapse_blank_lines", Apply: replace(blankRunRe, "\n\n")},
		{Name: "bullet_indent", Apply: replace(bulletIndentRe, "\n•")},
	}
}

var defaultPipeline = Default()

// Normalize formats a complete reply with the default rules.
func Normalize(raw string) string {
	return defaultPipeline.Normalize(raw)
}

var (
	boldHeaderRe = regexp.MustCompile(`(?i)(?:#{1,6}[ \t]*)?\*{2,3}[ \t]*(ingredients|instructions)[ \t]*:?[ \t]*\*{2,3}:?`)
	hashHeaderRe = regexp.MustCompile(`(?i)#{1,6}[ \t]*(ingredients|instructions)\b:?`)

	lineBulletRe   = regexp.MustCompile(`(?m)^[ \t]*(?:[*\-][ \t]+|[•‒–—][ \t]*)(\S.*)$`)
	inlineBulletRe = regexp.MustCompile(`(\S)[ \t]*•[ \t]*`)

	clauseAfterParenRe = regexp.MustCompile(`([A-Za-z0-9])\)[ \t]*Now,`)
	optionalRe         = regexp.MustCompile(`(\((?i:optional)\))[ \t]+([A-Z])`)

	numberedBoldRe   = regexp.MustCompile(`\n*[ \t]*([0-9]+\.)[ \t]*\n?[ \t]*(\*\*[^*\n]+\*\*)`)
	numberedInlineRe = regexp.MustCompile(`([.!?:])[ \t]+([0-9]+\.[ \t])`)
	numberedLineRe   = regexp.MustCompile(`\n+[ \t]*([0-9]+\.)([ \t])`)

	boldRunRe       = regexp.MustCompile(`\*{2,}`)
	trailingSpaceRe = regexp.MustCompile(`(?m)[ \t]+$`)
	blankRunRe      = regexp.MustCompile(`\n{3,}`)
	bulletIndentRe  = regexp.MustCompile(`\n[ \t]+•`)
)

func replace(re *regexp.Regexp, repl string) func(string) string {
	return func(s string) string { return re.ReplaceAllString(s, repl) }
}

func normalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// canonicalHeaders rewrites Ingredients/Instructions markers, bold or hashed,
// to "### Ingredients" / "### Instructions".
func canonicalHeaders(s string) string {
	canon := func(re *regexp.Regexp) func(string) string {
		return func(m string) string {
			sub := re.FindStringSubmatch(m)
			if len(sub) < 2 {
				return m
			}
			word := strings.ToLower(sub[1])
			return "### " + strings.ToUpper(word[:1]) + word[1:]
		}
	}
	s = boldHeaderRe.ReplaceAllStringFunc(s, canon(boldHeaderRe))
	return hashHeaderRe.ReplaceAllStringFunc(s, canon(hashHeaderRe))
}
