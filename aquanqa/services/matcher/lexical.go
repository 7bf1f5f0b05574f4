// Package matcher holds the fallback scorers of the resolution cascade:
// lexical keyword overlap and fuzzy string similarity. Both are pure
// functions over (question, entry); thresholds live with the pipeline.
package matcher

import (
	"aquanqa/aquanqa/sources/psql/models"
	"aquanqa/aquanqa/utils/textutil"
	"strings"
)

// Spanish filler words ignored during lexical matching.
var stopwords = map[string]struct{}{
	"que": {}, "como": {}, "donde": {}, "cuando": {}, "por": {}, "para": {},
	"con": {}, "sin": {}, "del": {}, "las": {}, "los": {}, "una": {}, "uno": {},
	"esta": {}, "este": {}, "son": {}, "hay": {}, "muy": {}, "mas": {}, "pero": {},
}

// Relative weights of where a query term matched. Keywords are curated,
// so they outweigh the question text; answer text is the weakest signal.
const (
	questionWeight = 0.4
	keywordWeight  = 0.5
	answerWeight   = 0.1
)

// queryTerms normalizes and filters the user question down to the terms
// worth matching.
func queryTerms(question string) []string {
	tokens := textutil.Tokenize(textutil.Normalize(question))
	terms := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if len([]rune(t)) <= 2 {
			continue
		}
		if _, skip := stopwords[textutil.Fold(t)]; skip {
			continue
		}
		terms = append(terms, t)
	}
	return terms
}

func tokenSet(s string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, t := range textutil.Tokenize(textutil.Normalize(s)) {
		set[t] = struct{}{}
	}
	return set
}

// LexicalScore computes the weighted term overlap between the question
// and an entry, normalized by the number of query terms so long queries
// don't automatically win.
func LexicalScore(question string, entry *models.KnowledgeEntry) float64 {
	terms := queryTerms(question)
	if len(terms) == 0 {
		return 0
	}

	questionSet := tokenSet(entry.Question)
	keywordSet := tokenSet(strings.ReplaceAll(entry.Keywords, ",", " "))
	answerSet := tokenSet(entry.Answer)

	score := 0.0
	for _, term := range terms {
		if _, ok := questionSet[term]; ok {
			score += questionWeight
		}
		if _, ok := keywordSet[term]; ok {
			score += keywordWeight
		}
		if _, ok := answerSet[term]; ok {
			score += answerWeight
		}
	}
	return score / float64(len(terms))
}

// BestLexical returns the active entry with the highest lexical score.
func BestLexical(question string, entries []models.KnowledgeEntry) (*models.KnowledgeEntry, float64) {
	var best *models.KnowledgeEntry
	bestScore := 0.0
	for i := range entries {
		if !entries[i].IsActive {
			continue
		}
		if score := LexicalScore(question, &entries[i]); score > bestScore {
			bestScore = score
			best = &entries[i]
		}
	}
	return best, bestScore
}
