package recommender

import (
	"regexp"
	"strings"
)

// MinSimilarity is the threshold a pair must exceed to enter the index
const MinSimilarity = 0.2

// Feature weights. Category overlap dominates: sharing a category matters
// more than wording or price proximity. The weights sum to 1.0, so the
// combined score stays in [0,1].
const (
	weightName        = 0.20
	weightDescription = 0.15
	weightCategory    = 0.40
	weightPrice       = 0.25
)

var nonWord = regexp.MustCompile(`\W+`)

// Tokenize lower-cases the text, splits it on non-word characters and
// discards tokens of length <= 2
func Tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, token := range nonWord.Split(strings.ToLower(text), -1) {
		if len(token) > 2 {
			tokens[token] = struct{}{}
		}
	}
	return tokens
}

// Score combines the four feature similarities into one weighted score.
// Symmetric: Score(a, b) == Score(b, a).
func Score(a, b *ProductFeatures) float64 {
	return weightName*jaccard(a.nameTokens, b.nameTokens) +
		weightDescription*jaccard(a.descTokens, b.descTokens) +
		weightCategory*jaccardInt64(a.categoryIDs, b.categoryIDs) +
		weightPrice*priceSimilarity(a.Price, b.Price)
}

// priceSimilarity squares the price ratio so prices far apart score much
// lower than the linear ratio would. Non-positive prices mean "unknown".
func priceSimilarity(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	ratio := a / b
	if b < a {
		ratio = b / a
	}
	return ratio * ratio
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0
	for token := range a {
		if _, ok := b[token]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}

func jaccardInt64(a, b map[int64]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0
	for id := range a {
		if _, ok := b[id]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}
