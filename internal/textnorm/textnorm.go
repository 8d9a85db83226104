// Package textnorm turns extracted document text into the lowercase,
// purely alphabetic token stream the scorer works on.
package textnorm

import (
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var tokenizerOpts = []prose.DocOpt{
	prose.WithSegmentation(false),
	prose.WithTagging(false),
	prose.WithExtraction(false),
}

// clitics are dropped whether prose split them off ("'s", "n't") or left
// them attached ("I've", "we'd").
var clitics = []string{"'ve", "'d", "n't", "'s", "'re", "'ll", "'m"}

// abbreviations keep their period and so never count as words.
var abbreviations = map[string]bool{
	"dr.": true, "mr.": true, "mrs.": true, "ms.": true, "prof.": true,
	"sr.": true, "jr.": true, "st.": true, "mt.": true,
	"inc.": true, "ltd.": true, "co.": true, "corp.": true,
	"etc.": true, "vs.": true, "approx.": true, "dept.": true,
	"jan.": true, "feb.": true, "mar.": true, "apr.": true, "jun.": true,
	"jul.": true, "aug.": true, "sep.": true, "sept.": true, "oct.": true,
	"nov.": true, "dec.": true,
}

// Tokens splits text into words, lowercases them and keeps only tokens made
// entirely of letters. Order and duplicates are preserved.
func Tokens(text string) []string {
	text = norm.NFC.String(text)
	if strings.TrimSpace(text) == "" {
		return nil
	}
	// Without tagging or extraction no pipeline stage can fail.
	doc, err := prose.NewDocument(text, tokenizerOpts...)
	if err != nil {
		return nil
	}
	lower := cases.Lower(language.Und)

	raw := doc.Tokens()
	var out []string
	for i, tok := range raw {
		word := tok.Text
		if looksLikeAddress(word) {
			continue
		}
		// prose splits the period off "etc." but not off "Dr.".
		if i+1 < len(raw) && raw[i+1].Text == "." && isAbbreviation(word+".") {
			continue
		}
		word, ok := trimPeriod(word)
		if !ok {
			continue
		}
		for _, piece := range splitInfixes(word) {
			for _, w := range splitSentenceJoins(stripClitic(piece)) {
				if isAlpha(w) {
					out = append(out, lower.String(w))
				}
			}
		}
	}
	return out
}

// Normalize returns the tokens of text joined by single spaces.
func Normalize(text string) string {
	return strings.Join(Tokens(text), " ")
}

// looksLikeAddress reports URLs, bare host paths and email addresses, which
// are single non-word tokens.
func looksLikeAddress(word string) bool {
	if strings.Contains(word, "://") || strings.Contains(word, "@") {
		return true
	}
	if strings.HasPrefix(strings.ToLower(word), "www.") {
		return true
	}
	host, _, found := strings.Cut(word, "/")
	return found && strings.Contains(strings.Trim(host, "."), ".")
}

func isAbbreviation(word string) bool {
	return abbreviations[strings.ToLower(word)]
}

// trimPeriod drops a trailing period unless word is a known abbreviation,
// in which case the whole token is rejected.
func trimPeriod(word string) (string, bool) {
	if len(word) < 2 || !strings.HasSuffix(word, ".") {
		return word, true
	}
	if isAbbreviation(word) {
		return "", false
	}
	return strings.TrimSuffix(word, "."), true
}

// splitInfixes breaks a token on dashes, slashes, commas, colons and
// comparison or plus signs that sit between two letters or digits
// ("full-stack", "CI/CD"). Affixes like the pluses in "C++" stay attached.
func splitInfixes(word string) []string {
	runes := []rune(word)
	var parts []string
	start := 0
	for i := 1; i+1 < len(runes); i++ {
		if isInfix(runes[i]) && isAlnum(runes[i-1]) && isAlnum(runes[i+1]) {
			parts = append(parts, string(runes[start:i]))
			start = i + 1
		}
	}
	return append(parts, string(runes[start:]))
}

func stripClitic(piece string) string {
	for _, c := range clitics {
		if strings.EqualFold(piece, c) {
			return ""
		}
		if len(piece) > len(c) && strings.EqualFold(piece[len(piece)-len(c):], c) {
			piece = piece[:len(piece)-len(c)]
			break
		}
	}
	return strings.Trim(piece, "'")
}

// splitSentenceJoins separates words glued by a period with no following
// space, as in "experience.Skills", which is common in PDF text.
func splitSentenceJoins(piece string) []string {
	if piece == "" {
		return nil
	}
	runes := []rune(piece)
	var parts []string
	start := 0
	for i := 1; i+1 < len(runes); i++ {
		if runes[i] == '.' && unicode.IsLower(runes[i-1]) && unicode.IsUpper(runes[i+1]) {
			parts = append(parts, string(runes[start:i]))
			start = i + 1
		}
	}
	return append(parts, string(runes[start:]))
}

func isInfix(r rune) bool {
	switch r {
	case '/', ',', ':', '=', '<', '>', '+':
		return true
	}
	return unicode.Is(unicode.Pd, r)
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isAlpha(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
