package janitor

import (
	"math"
	"strings"
	"unicode"
)

// vectorizer holds a tf-idf vocabulary fitted over one column's values
type vectorizer struct {
	idf map[string]float64
}

// fitVectorizer builds the vocabulary and inverse document frequencies from
// the whole column at clean time; there is no held-out vocabulary
func fitVectorizer(docs []string) *vectorizer {
	df := make(map[string]int)
	for _, doc := range docs {
		for token := range uniqueTokens(doc) {
			df[token]++
		}
	}

	n := float64(len(docs))
	idf := make(map[string]float64, len(df))
	for token, count := range df {
		idf[token] = math.Log((1+n)/(1+float64(count))) + 1
	}
	return &vectorizer{idf: idf}
}

// score reduces a document's tf-idf vector to a single representative
// scalar: the vector's Euclidean norm. Empty documents score zero.
func (v *vectorizer) score(doc string) float64 {
	tf := make(map[string]int)
	for _, token := range tokenize(doc) {
		tf[token]++
	}

	var sum float64
	for token, count := range tf {
		idf, ok := v.idf[token]
		if !ok {
			continue
		}
		w := float64(count) * idf
		sum += w * w
	}
	return math.Sqrt(sum)
}

// tokenize lowercases and splits on non-alphanumeric runs, keeping tokens
// of at least two characters
func tokenize(doc string) []string {
	fields := strings.FieldsFunc(strings.ToLower(doc), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func uniqueTokens(doc string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range tokenize(doc) {
		set[token] = struct{}{}
	}
	return set
}
