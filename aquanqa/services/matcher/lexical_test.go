package matcher

import (
	"aquanqa/aquanqa/sources/psql/models"
	"testing"

	"github.com/stretchr/testify/assert"
)

func entry(question, answer, keywords string) models.KnowledgeEntry {
	return models.KnowledgeEntry{Question: question, Answer: answer, Keywords: keywords, IsActive: true}
}

func TestLexicalScoreWeighsKeywordsOverAnswer(t *testing.T) {
	keywordHit := entry("pregunta irrelevante", "respuesta irrelevante", "vacaciones")
	answerHit := entry("pregunta irrelevante", "pedir vacaciones aqui", "")

	kw := LexicalScore("solicitar vacaciones", &keywordHit)
	ans := LexicalScore("solicitar vacaciones", &answerHit)
	assert.Greater(t, kw, ans, "keyword match should outweigh answer match")
}

func TestLexicalScoreNormalizedByQueryLength(t *testing.T) {
	e := entry("horario de atención", "Lunes a viernes", "horario")

	short := LexicalScore("horario", &e)
	long := LexicalScore("horario sucursal principal telefono correo", &e)
	assert.Greater(t, short, long, "extra unmatched terms must dilute the score")
}

func TestLexicalScoreIgnoresStopwordsAndShortTokens(t *testing.T) {
	e := entry("horario de atención", "Lunes a viernes", "")
	// Only stop words and short tokens: nothing left to match.
	assert.Zero(t, LexicalScore("que como por es", &e))
}

func TestBestLexicalSkipsInactive(t *testing.T) {
	active := entry("horario de atención", "", "horario")
	inactive := entry("horario de atención completo", "", "horario")
	inactive.IsActive = false

	best, score := BestLexical("horario atención", []models.KnowledgeEntry{inactive, active})
	assert.NotNil(t, best)
	assert.Equal(t, active.Question, best.Question)
	assert.Positive(t, score)
}

func TestBestLexicalNoMatch(t *testing.T) {
	e := entry("horario de atención", "Lunes a viernes", "")
	best, score := BestLexical("asunto totalmente distinto", []models.KnowledgeEntry{e})
	assert.Nil(t, best)
	assert.Zero(t, score)
}
