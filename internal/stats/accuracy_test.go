package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/typist/internal/model"
)

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name   string
		target string
		actual string
		want   float64
	}{
		{name: "exact", target: "hello", actual: "hello", want: 100},
		{name: "one substitution", target: "cat", actual: "cot", want: 66.67},
		{name: "shifted by deletion", target: "hello", actual: "helo", want: 60},
		{name: "longer input", target: "abc", actual: "abcdef", want: 100},
		{name: "empty input", target: "abc", actual: "", want: 0},
		{name: "empty target", target: "", actual: "xyz", want: 100},
		{name: "runes", target: "héllo", actual: "héllo", want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Accuracy(tt.target, tt.actual))
		})
	}
}

func TestClassifySubstitution(t *testing.T) {
	res := Classify("cat", "cot")

	assert.Equal(t, 1, res.TotalErrors)
	assert.Equal(t, []model.ErrorDetail{{Position: 1, Expected: "a", Actual: "o"}}, res.Substitutions)
	assert.Empty(t, res.Insertions)
	assert.Empty(t, res.Deletions)
	assert.Equal(t, []int{1}, res.ErrorPositions)
	assert.Equal(t, map[string]int{"a": 1}, res.ProblematicCharacters)
	assert.Equal(t, []int{1, 0, 1}, res.AccuracyByPosition)
	assert.Equal(t, 33.33, res.ErrorRate)
}

func TestClassifyDeletion(t *testing.T) {
	res := Classify("hello", "helo")

	assert.Equal(t, 1, res.TotalErrors)
	assert.Equal(t, []model.ErrorDetail{{Position: 3, Expected: "l", Actual: ""}}, res.Deletions)
	assert.Empty(t, res.Substitutions)
	assert.Empty(t, res.Insertions)
	assert.Equal(t, 20.0, res.ErrorRate)
	assert.Equal(t, []int{1, 1, 1, 0, 0}, res.AccuracyByPosition)
}

func TestClassifyInsertion(t *testing.T) {
	res := Classify("abc", "abcd")

	assert.Equal(t, []model.ErrorDetail{{Position: 3, Expected: "", Actual: "d"}}, res.Insertions)
	assert.Equal(t, []int{3}, res.ErrorPositions)
	assert.Empty(t, res.ProblematicCharacters)
}

func TestClassifyUnevenReplace(t *testing.T) {
	res := Classify("abcd", "axd")

	assert.Equal(t, []model.ErrorDetail{{Position: 1, Expected: "b", Actual: "x"}}, res.Substitutions)
	assert.Equal(t, []model.ErrorDetail{{Position: 2, Expected: "c", Actual: ""}}, res.Deletions)
	assert.Equal(t, 2, res.TotalErrors)
	assert.Equal(t, 50.0, res.ErrorRate)
	assert.Equal(t, []int{1, 2}, res.ErrorPositions)
}

func TestClassifyEmptyCases(t *testing.T) {
	res := Classify("", "xyz")
	assert.Zero(t, res.TotalErrors)
	assert.Zero(t, res.ErrorRate)
	assert.Empty(t, res.AccuracyByPosition)

	res = Classify("abc", "")
	assert.Equal(t, 3, res.TotalErrors)
	assert.Len(t, res.Deletions, 3)
	assert.Equal(t, 100.0, res.ErrorRate)
	assert.Equal(t, []int{0, 1, 2}, res.ErrorPositions)
}

func TestClassifyTotalsAreConsistent(t *testing.T) {
	pairs := [][2]string{
		{"the quick brown fox", "teh quikc brwn foxx"},
		{"typing", "tpying"},
		{"abc", "xyz"},
		{"aaaa", "aa"},
		{"a b c", "abc"},
	}
	for _, p := range pairs {
		res := Classify(p[0], p[1])
		require.Equal(t, len(res.Substitutions)+len(res.Insertions)+len(res.Deletions), res.TotalErrors, "pair %q", p)
		require.Len(t, res.AccuracyByPosition, len([]rune(p[0])))
		for i := 1; i < len(res.ErrorPositions); i++ {
			require.Less(t, res.ErrorPositions[i-1], res.ErrorPositions[i])
		}
		assert.Equal(t, res, Classify(p[0], p[1]))
	}
}
