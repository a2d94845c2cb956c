// Package generator builds practice target texts.
package generator

import (
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/verte-zerg/typist/internal/model"
)

// Generator produces randomized typing text. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a deterministic Generator.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Text builds a space-separated prompt from words using the practice
// settings in cfg. When weakSet is non-empty and cfg.FocusWeak is set, words
// containing weak characters are favoured by cfg.WeakFactor per occurrence.
func (g *Generator) Text(words []string, cfg model.Config, weakSet map[rune]struct{}) string {
	if len(words) == 0 || cfg.Words <= 0 {
		return ""
	}
	punct := []rune(cfg.PunctSet)
	if cfg.FocusWeak && len(weakSet) > 0 {
		return strings.Join(g.GenerateWeighted(words, cfg.Words, cfg.CapsPct, cfg.PunctPct, punct, weakSet, cfg.WeakFactor), " ")
	}
	return strings.Join(g.Generate(words, cfg.Words, cfg.CapsPct, cfg.PunctPct, punct), " ")
}

// Generate selects words uniformly and applies caps/punctuation rules.
func (g *Generator) Generate(words []string, count int, capsPct, punctPct float64, punctSet []rune) []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	result := make([]string, 0, count)
	for i := 0; i < count; i++ {
		word := words[g.rnd.Intn(len(words))]
		result = append(result, g.decorate(word, capsPct, punctPct, punctSet))
	}
	return result
}

// GenerateWeighted selects words with a bias toward weak characters.
func (g *Generator) GenerateWeighted(words []string, count int, capsPct, punctPct float64, punctSet []rune, weakSet map[rune]struct{}, factor float64) []string {
	cumulative := make([]float64, len(words))
	total := 0.0
	for i, word := range words {
		weak := 0
		for _, r := range strings.ToLower(word) {
			if _, ok := weakSet[r]; ok {
				weak++
			}
		}
		total += 1.0 + float64(weak)*factor
		cumulative[i] = total
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	result := make([]string, 0, count)
	for i := 0; i < count; i++ {
		target := g.rnd.Float64() * total
		idx := len(words) - 1
		for j, edge := range cumulative {
			if target < edge {
				idx = j
				break
			}
		}
		result = append(result, g.decorate(words[idx], capsPct, punctPct, punctSet))
	}
	return result
}

func (g *Generator) decorate(word string, capsPct, punctPct float64, punctSet []rune) string {
	if capsPct > 0 && g.rnd.Float64() < capsPct {
		runes := []rune(word)
		if len(runes) > 0 {
			runes[0] = unicode.ToUpper(runes[0])
			word = string(runes)
		}
	}
	if punctPct > 0 && len(punctSet) > 0 && g.rnd.Float64() < punctPct {
		word += string(punctSet[g.rnd.Intn(len(punctSet))])
	}
	return word
}
