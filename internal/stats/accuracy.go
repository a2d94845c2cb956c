package stats

import (
	"sort"

	"github.com/verte-zerg/typist/internal/align"
	"github.com/verte-zerg/typist/internal/model"
)

// Accuracy returns the share of target positions typed correctly, in percent.
// Comparison is positional; an empty target is 100% accurate.
func Accuracy(target, actual string) float64 {
	t := []rune(target)
	if len(t) == 0 {
		return 100.0
	}
	a := []rune(actual)
	matches := 0
	for i := 0; i < len(t) && i < len(a); i++ {
		if t[i] == a[i] {
			matches++
		}
	}
	return round2(clampPercent(float64(matches) / float64(len(t)) * 100))
}

// AccuracyByPosition returns 1 for every target rune matched at the same
// input index and 0 otherwise, including positions past the end of input.
func AccuracyByPosition(target, actual string) []int {
	t := []rune(target)
	a := []rune(actual)
	out := make([]int, len(t))
	for i := range t {
		if i < len(a) && a[i] == t[i] {
			out[i] = 1
		}
	}
	return out
}

// Classify builds the structured error report from the alignment of target
// against actual.
func Classify(target, actual string) model.ErrorAnalysis {
	t := []rune(target)
	a := []rune(actual)
	res := model.ErrorAnalysis{
		Substitutions:         []model.ErrorDetail{},
		Insertions:            []model.ErrorDetail{},
		Deletions:             []model.ErrorDetail{},
		ErrorPositions:        []int{},
		ProblematicCharacters: map[string]int{},
		AccuracyByPosition:    AccuracyByPosition(target, actual),
	}
	if len(t) == 0 {
		return res
	}

	positions := map[int]struct{}{}
	substitute := func(i, j int) {
		expected := string(t[i])
		res.Substitutions = append(res.Substitutions, model.ErrorDetail{Position: i, Expected: expected, Actual: string(a[j])})
		res.ProblematicCharacters[expected]++
		positions[i] = struct{}{}
	}
	remove := func(i int) {
		expected := string(t[i])
		res.Deletions = append(res.Deletions, model.ErrorDetail{Position: i, Expected: expected, Actual: ""})
		res.ProblematicCharacters[expected]++
		positions[i] = struct{}{}
	}
	insert := func(anchor, j int) {
		res.Insertions = append(res.Insertions, model.ErrorDetail{Position: anchor, Expected: "", Actual: string(a[j])})
		positions[anchor] = struct{}{}
	}

	for _, op := range align.OpcodesRunes(t, a) {
		switch op.Tag {
		case align.Replace:
			paired := min(op.I2-op.I1, op.J2-op.J1)
			for k := 0; k < paired; k++ {
				substitute(op.I1+k, op.J1+k)
			}
			for i := op.I1 + paired; i < op.I2; i++ {
				remove(i)
			}
			for j := op.J1 + paired; j < op.J2; j++ {
				insert(op.I2, j)
			}
		case align.Delete:
			for i := op.I1; i < op.I2; i++ {
				remove(i)
			}
		case align.Insert:
			for j := op.J1; j < op.J2; j++ {
				insert(op.I1, j)
			}
		}
	}

	res.TotalErrors = len(res.Substitutions) + len(res.Insertions) + len(res.Deletions)
	res.ErrorRate = round2(float64(res.TotalErrors) / float64(len(t)) * 100)
	for p := range positions {
		res.ErrorPositions = append(res.ErrorPositions, p)
	}
	sort.Ints(res.ErrorPositions)
	return res
}

func clampPercent(v float64) float64 {
	if v > 100 {
		return 100
	}
	return v
}
