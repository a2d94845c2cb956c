package stats

import (
	"sort"
	"unicode/utf8"

	"github.com/verte-zerg/typist/internal/model"
)

// MostTypedChars returns the n characters typed most often. Spaces are left
// out.
func MostTypedChars(aggs []model.CharAggregate, n int) []string {
	if n <= 0 {
		return nil
	}
	chars := typedChars(aggs)
	sort.SliceStable(chars, func(i, j int) bool {
		ti, tj := occurrences(chars[i]), occurrences(chars[j])
		if ti != tj {
			return ti > tj
		}
		return chars[i].Char < chars[j].Char
	})
	return charNames(chars, n)
}

// SelectWeakChars picks the characters generated prompts should favour: the
// highest error rate first, then the highest difficulty score. top <= 0 keeps
// every typed character.
func SelectWeakChars(aggs []model.CharAggregate, top int) map[rune]struct{} {
	chars := typedChars(aggs)
	sort.SliceStable(chars, func(i, j int) bool {
		ai, aj := accuracy(chars[i]), accuracy(chars[j])
		if ai != aj {
			return ai < aj
		}
		di, dj := charDifficulty(chars[i]), charDifficulty(chars[j])
		if di != dj {
			return di > dj
		}
		return chars[i].Char < chars[j].Char
	})
	if top <= 0 {
		top = len(chars)
	}
	weak := make(map[rune]struct{}, top)
	for _, ch := range charNames(chars, top) {
		r, _ := utf8.DecodeRuneInString(ch)
		weak[r] = struct{}{}
	}
	return weak
}

// typedChars drops spaces and characters never seen in a target.
func typedChars(aggs []model.CharAggregate) []model.CharAggregate {
	out := make([]model.CharAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Char == " " || occurrences(agg) == 0 {
			continue
		}
		out = append(out, agg)
	}
	return out
}

func charNames(chars []model.CharAggregate, n int) []string {
	n = min(n, len(chars))
	out := make([]string, 0, n)
	for _, c := range chars[:n] {
		out = append(out, c.Char)
	}
	return out
}

func occurrences(agg model.CharAggregate) int {
	return agg.Correct + agg.Incorrect
}

func accuracy(agg model.CharAggregate) float64 {
	total := occurrences(agg)
	if total == 0 {
		return 1
	}
	return float64(agg.Correct) / float64(total)
}

func avgDwell(agg model.CharAggregate) float64 {
	if agg.DwellCount == 0 {
		return 0
	}
	return agg.DwellSumMs / float64(agg.DwellCount)
}

// charDifficulty scales average dwell by the error rate.
func charDifficulty(agg model.CharAggregate) float64 {
	return avgDwell(agg) * (2 - accuracy(agg))
}
