// Package tfidf implements the per-tenant sparse lexical model: a
// term-frequency/inverse-document-frequency vector space over unigrams and
// bigrams with L2-normalized rows, so cosine similarity reduces to a dot
// product.
package tfidf

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// tokenPattern matches word tokens of at least two letters/digits,
// case folding happens before matching.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Vector is a sparse term-weight vector indexed by vocabulary position.
type Vector map[int]float64

// Model is a fitted TF-IDF vector space. The vocabulary and weights are
// built exclusively from the corpus passed to Fit; a Model never mixes
// terms from different tenants.
type Model struct {
	vocabulary map[string]int
	idf        []float64
	rows       []Vector
}

// Fit builds the vocabulary, IDF weights and the normalized document-term
// matrix from the corpus. It returns nil for an empty corpus.
func Fit(corpus []string) *Model {
	if len(corpus) == 0 {
		return nil
	}

	df := make(map[string]int)
	tokenized := make([][]string, len(corpus))
	for i, text := range corpus {
		terms := ngrams(text)
		tokenized[i] = terms
		seen := make(map[string]struct{}, len(terms))
		for _, term := range terms {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	// Stable vocabulary ordering keeps rebuilds deterministic.
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	m := &Model{
		vocabulary: make(map[string]int, len(terms)),
		idf:        make([]float64, len(terms)),
	}
	n := float64(len(corpus))
	for i, term := range terms {
		m.vocabulary[term] = i
		// Smoothed IDF, as if one extra document contained every term.
		m.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	m.rows = make([]Vector, len(corpus))
	for i, terms := range tokenized {
		m.rows[i] = m.weigh(terms)
	}
	return m
}

// Rows returns the number of documents in the fitted matrix.
func (m *Model) Rows() int { return len(m.rows) }

// VocabularySize returns the number of distinct terms.
func (m *Model) VocabularySize() int { return len(m.vocabulary) }

// Transform maps free text into the fitted vector space. Terms outside the
// vocabulary are ignored; the result is L2-normalized.
func (m *Model) Transform(text string) Vector {
	return m.weigh(ngrams(text))
}

// Scores computes the dot product of the query vector against every row.
// Rows and query are both L2-normalized, so each score is the cosine
// similarity, bounded to [0, 1].
func (m *Model) Scores(query Vector) []float64 {
	scores := make([]float64, len(m.rows))
	if len(query) == 0 {
		return scores
	}
	for i, row := range m.rows {
		scores[i] = Dot(row, query)
	}
	return scores
}

// Dot computes the sparse dot product of two vectors.
func Dot(a, b Vector) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for idx, v := range a {
		sum += v * b[idx]
	}
	return sum
}

// weigh builds the L2-normalized tf-idf vector for a token sequence.
func (m *Model) weigh(terms []string) Vector {
	tf := make(map[int]float64)
	for _, term := range terms {
		if idx, ok := m.vocabulary[term]; ok {
			tf[idx]++
		}
	}
	if len(tf) == 0 {
		return Vector{}
	}

	var norm float64
	for idx, count := range tf {
		w := count * m.idf[idx]
		tf[idx] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for idx := range tf {
			tf[idx] /= norm
		}
	}
	return tf
}

// ngrams tokenizes text case-insensitively and appends bigrams of
// adjacent tokens to the unigram sequence.
func ngrams(text string) []string {
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return nil
	}
	terms := make([]string, 0, 2*len(tokens)-1)
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}
