package matcher

import (
	"aquanqa/aquanqa/sources/psql/models"
	"strings"
)

// Keyword similarity is a weaker signal than matching the full stored
// question, so it is discounted.
const keywordDiscount = 0.8

// Ratio is a difflib-style similarity: 2*LCS / (len(a)+len(b)) over
// runes, in [0,1].
func Ratio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	lcs := prev[len(rb)]
	return 2 * float64(lcs) / float64(len(ra)+len(rb))
}

// FuzzyScore compares the question against the entry question and each
// keyword, taking the best observed similarity.
func FuzzyScore(question string, entry *models.KnowledgeEntry) float64 {
	q := strings.ToLower(strings.TrimSpace(question))

	best := Ratio(q, strings.ToLower(entry.Question))
	for _, keyword := range strings.Split(entry.Keywords, ",") {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword == "" {
			continue
		}
		if s := Ratio(q, keyword) * keywordDiscount; s > best {
			best = s
		}
	}
	return best
}

// BestFuzzy returns the active entry with the highest fuzzy score.
func BestFuzzy(question string, entries []models.KnowledgeEntry) (*models.KnowledgeEntry, float64) {
	var best *models.KnowledgeEntry
	bestScore := 0.0
	for i := range entries {
		if !entries[i].IsActive {
			continue
		}
		if score := FuzzyScore(question, &entries[i]); score > bestScore {
			bestScore = score
			best = &entries[i]
		}
	}
	return best, bestScore
}
