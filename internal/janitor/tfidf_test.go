package janitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"fix", "db", "sync", "bug"}, tokenize("Fix: DB-sync bug!"))
	// Single-character tokens are dropped
	assert.Equal(t, []string{"bug"}, tokenize("a bug"))
	assert.Empty(t, tokenize(""))
	assert.Empty(t, tokenize("!!! ---"))
}

func TestVectorizer_Score(t *testing.T) {
	v := fitVectorizer([]string{"red green", "red blue"})

	// A token in every document has idf ln((1+n)/(1+df))+1 = ln(3/3)+1 = 1
	assert.InDelta(t, 1.0, v.score("red"), 1e-9)

	// Unknown tokens contribute nothing
	assert.Equal(t, 0.0, v.score("purple"))
	assert.Equal(t, 0.0, v.score(""))

	// Rarer tokens weigh more than ubiquitous ones
	assert.Greater(t, v.score("green"), v.score("red"))

	// Scoring is deterministic
	assert.Equal(t, v.score("red green"), v.score("red green"))
}

func TestVectorizer_EmptyCorpus(t *testing.T) {
	v := fitVectorizer(nil)
	assert.Equal(t, 0.0, v.score("anything"))
}
