package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/verte-zerg/typist/internal/model"
)

func TestMostTypedChars(t *testing.T) {
	aggs := []model.CharAggregate{
		{Char: "a", Correct: 5, Incorrect: 1},
		{Char: " ", Correct: 50},
		{Char: "c", Correct: 6},
		{Char: "b", Correct: 2},
		{Char: "z"},
	}
	assert.Equal(t, []string{"a", "c"}, MostTypedChars(aggs, 2))
	assert.Equal(t, []string{"a", "c", "b"}, MostTypedChars(aggs, 10))
	assert.Nil(t, MostTypedChars(aggs, 0))
}

func TestSelectWeakChars(t *testing.T) {
	aggs := []model.CharAggregate{
		{Char: "a", Correct: 9, Incorrect: 1, DwellSumMs: 100, DwellCount: 1},
		{Char: "b", Correct: 9, Incorrect: 1, DwellSumMs: 300, DwellCount: 1},
		{Char: "c", Correct: 10},
		{Char: " ", Incorrect: 10},
		{Char: "d"},
	}
	weak := SelectWeakChars(aggs, 1)
	assert.Equal(t, map[rune]struct{}{'b': {}}, weak, "slower char wins an error-rate tie")

	all := SelectWeakChars(aggs, 0)
	assert.Len(t, all, 3)
	assert.NotContains(t, all, ' ')
}

func TestCharDifficulty(t *testing.T) {
	clean := model.CharAggregate{Char: "a", Correct: 4, DwellSumMs: 400, DwellCount: 4}
	assert.InDelta(t, 100, charDifficulty(clean), 1e-9)

	sloppy := model.CharAggregate{Char: "a", Correct: 2, Incorrect: 2, DwellSumMs: 400, DwellCount: 4}
	assert.InDelta(t, 150, charDifficulty(sloppy), 1e-9)
}
