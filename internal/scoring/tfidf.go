package scoring

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrEmptyVocabulary is returned when none of the fitted documents contains
// a term the vectorizer can use.
var ErrEmptyVocabulary = errors.New("empty vocabulary")

// termPattern matches runs of word characters. Runs shorter than two runes
// are discarded in terms, so single letters never become features.
var termPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Vector is a dense, L2-normalized TF-IDF row indexed by vocabulary position.
type Vector []float64

// Vectorizer computes smoothed TF-IDF weights over a sorted vocabulary:
// idf(t) = ln((1+n)/(1+df(t))) + 1, weight = count(t) * idf(t).
type Vectorizer struct {
	terms []string
	index map[string]int
	idf   []float64
}

func NewVectorizer() *Vectorizer {
	return &Vectorizer{}
}

// terms extracts the lowercased features of doc, so "Go" and "go" are one
// vocabulary entry.
func terms(doc string) []string {
	lower := cases.Lower(language.Und)
	var out []string
	for _, m := range termPattern.FindAllString(doc, -1) {
		if utf8.RuneCountInString(m) >= 2 {
			out = append(out, lower.String(m))
		}
	}
	return out
}

// Fit learns the vocabulary and document frequencies of docs.
func (v *Vectorizer) Fit(docs ...string) error {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, t := range terms(doc) {
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}
	if len(df) == 0 {
		return ErrEmptyVocabulary
	}

	v.terms = make([]string, 0, len(df))
	for t := range df {
		v.terms = append(v.terms, t)
	}
	sort.Strings(v.terms)

	n := float64(len(docs))
	v.index = make(map[string]int, len(v.terms))
	v.idf = make([]float64, len(v.terms))
	for i, t := range v.terms {
		v.index[t] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}
	return nil
}

// Transform weights doc against the fitted vocabulary. Terms unknown to the
// vocabulary are ignored. Transform on an unfitted Vectorizer returns nil.
func (v *Vectorizer) Transform(doc string) Vector {
	if v.idf == nil {
		return nil
	}
	vec := make(Vector, len(v.terms))
	for _, t := range terms(doc) {
		if i, ok := v.index[t]; ok {
			vec[i]++
		}
	}
	var sum float64
	for i := range vec {
		vec[i] *= v.idf[i]
		sum += vec[i] * vec[i]
	}
	if sum == 0 {
		return vec
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

// FitTransform fits docs and returns one vector per document, in order.
func (v *Vectorizer) FitTransform(docs ...string) ([]Vector, error) {
	if err := v.Fit(docs...); err != nil {
		return nil, err
	}
	out := make([]Vector, len(docs))
	for i, doc := range docs {
		out[i] = v.Transform(doc)
	}
	return out, nil
}

// Vocabulary returns the fitted terms in index order.
func (v *Vectorizer) Vocabulary() []string {
	return append([]string(nil), v.terms...)
}

// Cosine returns the cosine similarity of two vectors produced by the same
// Vectorizer. A zero vector has similarity 0 with everything.
func Cosine(a, b Vector) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
