// Package scoring compares a resume with a job description: a TF-IDF cosine
// similarity for the match percentage and a vocabulary difference for the
// keywords the resume lacks.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/muhammadolammi/joblens/internal/textnorm"
)

type Result struct {
	MatchPercentage float64  `json:"match_percentage"`
	MissingKeywords []string `json:"missing_keywords"`

	ResumeTokens   int `json:"-"`
	JobTokens      int `json:"-"`
	VocabularySize int `json:"-"`
}

// Similarity fits a vectorizer on both normalized texts and returns the
// cosine similarity of their TF-IDF vectors.
func Similarity(resume, jd string) (float64, error) {
	sim, _, err := similarity(resume, jd)
	return sim, err
}

func similarity(resume, jd string) (float64, int, error) {
	v := NewVectorizer()
	vecs, err := v.FitTransform(resume, jd)
	if err != nil {
		return 0, 0, err
	}
	return Cosine(vecs[0], vecs[1]), len(v.terms), nil
}

// Percentage converts a similarity in [0, 1] to a percentage rounded to two
// decimals.
func Percentage(sim float64) float64 {
	p := math.Round(sim*100*100) / 100
	return math.Min(math.Max(p, 0), 100)
}

// Analyze normalizes the raw texts and scores them.
func Analyze(resumeText, jdText string) (Result, error) {
	resume := textnorm.Normalize(resumeText)
	jd := textnorm.Normalize(jdText)

	sim, vocab, err := similarity(resume, jd)
	if err != nil {
		return Result{}, fmt.Errorf("vectorize documents: %w", err)
	}

	return Result{
		MatchPercentage: Percentage(sim),
		MissingKeywords: MissingKeywords(resume, jd),
		ResumeTokens:    len(strings.Fields(resume)),
		JobTokens:       len(strings.Fields(jd)),
		VocabularySize:  vocab,
	}, nil
}
