package matcher

import (
	"aquanqa/aquanqa/sources/psql/models"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	assert.Equal(t, 1.0, Ratio("hola", "hola"))
	assert.Equal(t, 0.0, Ratio("abc", "xyz"))
	assert.Equal(t, 1.0, Ratio("", ""))
	assert.Equal(t, 0.0, Ratio("abc", ""))

	// One typo keeps the ratio high.
	assert.Greater(t, Ratio("vacasiones", "vacaciones"), 0.8)
}

func TestRatioSymmetric(t *testing.T) {
	a, b := "horario de atencion", "horario atencion"
	assert.InDelta(t, Ratio(a, b), Ratio(b, a), 1e-9)
}

func TestFuzzyScoreTypoTolerance(t *testing.T) {
	e := entry("¿cuál es el horario de atención?", "Lunes a viernes", "")
	score := FuzzyScore("¿cual es el horario de atencion?", &e)
	assert.Greater(t, score, 0.9)
}

func TestFuzzyScoreDiscountsKeywords(t *testing.T) {
	full := entry("vacaciones", "", "")
	keywordOnly := entry("pregunta completamente distinta sobre otro tema", "", "vacaciones")

	direct := FuzzyScore("vacaciones", &full)
	viaKeyword := FuzzyScore("vacaciones", &keywordOnly)

	assert.Equal(t, 1.0, direct)
	assert.InDelta(t, 0.8, viaKeyword, 1e-9, "keyword similarity should be discounted")
}

func TestBestFuzzyPicksClosest(t *testing.T) {
	near := entry("como pedir vacaciones", "", "")
	far := entry("politica de seguridad informatica", "", "")

	best, score := BestFuzzy("como pedir vacasiones", []models.KnowledgeEntry{far, near})
	assert.NotNil(t, best)
	assert.Equal(t, near.Question, best.Question)
	assert.Greater(t, score, 0.8)
}
