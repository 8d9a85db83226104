package scoring

import "strings"

// MissingKeywords returns the words of jd that never occur in resume, in the
// order they first appear in jd. Both inputs are normalized text, so words
// are separated by whitespace. The result is never nil.
func MissingKeywords(resume, jd string) []string {
	have := make(map[string]struct{})
	for _, w := range strings.Fields(resume) {
		have[w] = struct{}{}
	}

	missing := []string{}
	for _, w := range strings.Fields(jd) {
		if _, ok := have[w]; ok {
			continue
		}
		have[w] = struct{}{}
		missing = append(missing, w)
	}
	return missing
}
