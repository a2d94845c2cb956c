package generator

import (
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/typist/internal/model"
)

func TestTextPlain(t *testing.T) {
	g := NewWithSeed(1)
	cfg := model.Config{Words: 12}

	text := g.Text([]string{"alpha", "beta", "gamma"}, cfg, nil)
	words := strings.Fields(text)
	require.Len(t, words, 12)
	for _, w := range words {
		assert.Contains(t, []string{"alpha", "beta", "gamma"}, w)
	}
}

func TestTextIsDeterministicForSeed(t *testing.T) {
	cfg := model.Config{Words: 20, CapsPct: 0.5, PunctPct: 0.5, PunctSet: ".,"}
	words := []string{"one", "two", "three", "four"}

	a := NewWithSeed(42).Text(words, cfg, nil)
	b := NewWithSeed(42).Text(words, cfg, nil)
	assert.Equal(t, a, b)
}

func TestTextAlwaysDecorates(t *testing.T) {
	g := NewWithSeed(7)
	cfg := model.Config{Words: 10, CapsPct: 1, PunctPct: 1, PunctSet: "!"}

	for _, w := range strings.Fields(g.Text([]string{"word"}, cfg, nil)) {
		assert.Equal(t, "Word!", w)
		assert.True(t, unicode.IsUpper([]rune(w)[0]))
	}
}

func TestTextFavoursWeakWords(t *testing.T) {
	g := NewWithSeed(3)
	cfg := model.Config{Words: 500, FocusWeak: true, WeakFactor: 20}
	weak := map[rune]struct{}{'z': {}}

	words := strings.Fields(g.Text([]string{"zzz", "abc"}, cfg, weak))
	require.Len(t, words, 500)
	count := 0
	for _, w := range words {
		if w == "zzz" {
			count++
		}
	}
	assert.Greater(t, count, 400)
}

func TestTextEmpty(t *testing.T) {
	g := New()
	assert.Empty(t, g.Text(nil, model.Config{Words: 5}, nil))
	assert.Empty(t, g.Text([]string{"a"}, model.Config{}, nil))
}
