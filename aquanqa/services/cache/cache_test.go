package cache

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryKeyNormalizesVariants(t *testing.T) {
	base := QueryKey("¿Cómo pago?")

	for _, variant := range []string{
		"como pago",
		"COMO PAGO",
		"  cómo   pago  ",
		"¡como pago!",
	} {
		assert.Equal(t, base, QueryKey(variant), "variant %q should share the cache key", variant)
	}
}

func TestQueryKeyDistinguishesQuestions(t *testing.T) {
	assert.NotEqual(t, QueryKey("como pago"), QueryKey("donde pago"))
}

func TestQueryKeyNamespace(t *testing.T) {
	key := QueryKey("cualquier pregunta")
	assert.True(t, strings.HasPrefix(key, "chatbot:query:"), "key %q should live under the query namespace", key)
}

func TestNilCacheIsSafe(t *testing.T) {
	// Degraded mode: a cache without a redis connection behaves like a
	// permanent miss and swallows writes.
	c := New(nil, 0)

	result, ok := c.GetResult(context.Background(), "pregunta")
	assert.False(t, ok)
	assert.Nil(t, result)

	assert.NotPanics(t, func() {
		c.SetResult(context.Background(), "pregunta", nil)
		c.Delete(context.Background(), "k")
		assert.NoError(t, c.InvalidateQueries(context.Background()))
	})
}
