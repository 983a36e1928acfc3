package analyzer

import "strings"

// FoodStemmer folds plural and cooking-method inflections so that
// "potatoes" matches "potato" and "boiled" matches "boil". It is a light
// suffix stripper, not a full Porter implementation: food labels are short
// noun phrases and over-stemming ("beans" to "bean" is fine, "peas" to "pe"
// is not) hurts more than it helps.
type FoodStemmer struct {
	exceptions map[string]string
}

func NewFoodStemmer() *FoodStemmer {
	return &FoodStemmer{
		exceptions: map[string]string{
			"peas":      "pea",
			"cheeses":   "cheese",
			"leaves":    "leaf",
			"loaves":    "loaf",
			"halves":    "half",
			"knives":    "knife",
			"molasses":  "molasses",
			"hummus":    "hummus",
			"couscous":  "couscous",
			"asparagus": "asparagus",
			"citrus":    "citrus",
			"swiss":     "swiss",
			"grass":     "grass",
			"glass":     "glass",
			"fried":     "fry",
			"dried":     "dry",
		},
	}
}

// Stem returns the folded form of a lowercase word.
func (s *FoodStemmer) Stem(word string) string {
	if len(word) < 4 {
		return word
	}
	if w, ok := s.exceptions[word]; ok {
		return w
	}

	switch {
	case strings.HasSuffix(word, "ies") && len(word) > 4:
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(word, "oes"):
		return word[:len(word)-2]
	case strings.HasSuffix(word, "ches"), strings.HasSuffix(word, "shes"),
		strings.HasSuffix(word, "sses"), strings.HasSuffix(word, "xes"):
		return word[:len(word)-2]
	case strings.HasSuffix(word, "ss"), strings.HasSuffix(word, "us"), strings.HasSuffix(word, "is"):
		return word
	case strings.HasSuffix(word, "s"):
		word = word[:len(word)-1]
	}

	switch {
	case strings.HasSuffix(word, "ed") && len(word) > 5:
		return undouble(word[:len(word)-2])
	case strings.HasSuffix(word, "ing") && len(word) > 6:
		return undouble(word[:len(word)-3])
	}
	return word
}

// undouble drops a doubled final consonant: "chopp" -> "chop".
func undouble(stem string) string {
	n := len(stem)
	if n < 3 || stem[n-1] != stem[n-2] {
		return stem
	}
	switch stem[n-1] {
	case 'l', 's', 'z', 'a', 'e', 'i', 'o', 'u':
		return stem
	}
	return stem[:n-1]
}
