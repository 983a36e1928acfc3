package analyzer

import (
	"strings"
	"unicode"
)

// Tokenizer splits food labels and search text into normalized terms.
type Tokenizer struct {
	stemmer   *FoodStemmer
	stopwords map[string]struct{}
	useStem   bool
}

// NewTokenizer creates a new Tokenizer.
func NewTokenizer(useStemming bool) *Tokenizer {
	var stemmer *FoodStemmer
	if useStemming {
		stemmer = NewFoodStemmer()
	}
	return &Tokenizer{
		stemmer:   stemmer,
		stopwords: defaultStopwords(),
		useStem:   useStemming,
	}
}

// Tokenize splits text into lowercase terms, dropping stopwords and
// single letters. Digits are kept so "2%" milk and "7-up" stay distinct.
func (t *Tokenizer) Tokenize(text string) []string {
	words := splitWords(text)
	tokens := make([]string, 0, len(words))

	for _, word := range words {
		word = strings.ToLower(word)
		if len([]rune(word)) < 2 {
			continue
		}
		if _, isStop := t.stopwords[word]; isStop {
			continue
		}
		if t.useStem && t.stemmer != nil {
			word = t.stemmer.Stem(word)
		}
		tokens = append(tokens, word)
	}

	return tokens
}

// Trigrams returns the character trigrams of each word padded with spaces,
// which lets misspelled queries ("potatoe") still share features with
// catalog labels.
func Trigrams(text string) []string {
	var grams []string
	for _, word := range splitWords(strings.ToLower(text)) {
		r := []rune(" " + word + " ")
		for i := 0; i+3 <= len(r); i++ {
			grams = append(grams, string(r[i:i+3]))
		}
	}
	return grams
}

// Normalize lowercases text and collapses whitespace and punctuation.
func Normalize(text string) string {
	return strings.Join(splitWords(strings.ToLower(text)), " ")
}

// splitWords splits text on anything that is not a letter or digit.
// Labels like "fat, total" or "vitamin B-6" come apart at the punctuation.
func splitWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// defaultStopwords returns English filler words seen in food labels and queries.
func defaultStopwords() map[string]struct{} {
	stops := []string{
		"a", "an", "and", "as", "at", "by", "for", "from", "in",
		"is", "of", "on", "or", "the", "to", "with", "without",
		"me", "my", "i", "some", "something", "like", "want",
		"nfs", "ns", "type", "kind", "etc",
	}
	m := make(map[string]struct{}, len(stops))
	for _, s := range stops {
		m[s] = struct{}{}
	}
	return m
}
