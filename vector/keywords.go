package vector

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// MaxKeywords caps the number of terms kept per text.
const MaxKeywords = 20

// termPattern matches the terms the featurizer understands: maximal runs of
// CJK ideographs or of Latin letters. Everything else is a separator.
var termPattern = regexp.MustCompile(`[\p{Han}]+|[A-Za-z]+`)

// Keyword is one extracted term with its frequency weight.
type Keyword struct {
	Term   string
	Weight float64
}

// ExtractKeywords tokenizes text into term frequencies and returns the top
// MaxKeywords terms sorted by descending weight (term ascending on ties, so
// the result is deterministic). Latin terms are lowercased before counting.
// Single-rune terms are discarded. A text with no valid terms yields nil.
func ExtractKeywords(text string) []Keyword {
	if text == "" {
		return nil
	}

	counts := make(map[string]float64)
	for _, term := range termPattern.FindAllString(text, -1) {
		if utf8.RuneCountInString(term) < 2 {
			continue
		}
		counts[strings.ToLower(term)]++
	}
	if len(counts) == 0 {
		return nil
	}

	keywords := make([]Keyword, 0, len(counts))
	for term, weight := range counts {
		keywords = append(keywords, Keyword{Term: term, Weight: weight})
	}
	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Weight != keywords[j].Weight {
			return keywords[i].Weight > keywords[j].Weight
		}
		return keywords[i].Term < keywords[j].Term
	})

	if len(keywords) > MaxKeywords {
		keywords = keywords[:MaxKeywords]
	}
	return keywords
}

// FromText builds a sparse vector directly from ExtractKeywords. The result
// has zero keys only when the input contains zero valid terms.
func FromText(text string) Vector {
	keywords := ExtractKeywords(text)
	terms := make(map[string]float64, len(keywords))
	for _, kw := range keywords {
		terms[kw.Term] = kw.Weight
	}
	return Sparse(terms)
}
