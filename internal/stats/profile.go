package stats

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/verte-zerg/typist/internal/model"
)

// Error kinds recorded per session.
const (
	ErrorKindSubstitution  = "substitution"
	ErrorKindInsertion     = "insertion"
	ErrorKindDeletion      = "deletion"
	ErrorKindTransposition = "transposition"
)

// Trend labels reported by BuildProgress.
const (
	TrendImproving        = "improving"
	TrendDeclining        = "declining"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"
)

const trendThreshold = 0.05

// SessionCharStats derives per-character stats for one session. Error counts
// come from the classifier; dwell times come from single-character key events.
func SessionCharStats(target string, events []model.KeystrokeEvent, analysis model.ErrorAnalysis) []model.CharStats {
	byChar := map[string]*model.CharStats{}
	entry := func(ch string) *model.CharStats {
		cs, ok := byChar[ch]
		if !ok {
			cs = &model.CharStats{Char: ch}
			byChar[ch] = cs
		}
		return cs
	}

	occurrences := map[string]int{}
	for _, r := range target {
		occurrences[string(r)]++
	}
	for ch, total := range occurrences {
		cs := entry(ch)
		cs.Incorrect = min(analysis.ProblematicCharacters[ch], total)
		cs.Correct = total - cs.Incorrect
	}

	for _, e := range SortEvents(events) {
		if !isCharKey(e) {
			continue
		}
		cs := entry(e.Key)
		cs.DwellSumMs += (e.UpTS - e.DownTS) * 1000
		cs.DwellCount++
	}

	out := make([]model.CharStats, 0, len(byChar))
	for _, cs := range byChar {
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Char < out[j].Char })
	return out
}

// SessionBigramStats derives flight timing between consecutive character keys.
// A correction breaks the chain.
func SessionBigramStats(events []model.KeystrokeEvent) []model.BigramStats {
	byBigram := map[string]*model.BigramStats{}
	var prev *model.KeystrokeEvent
	sorted := SortEvents(events)
	for i := range sorted {
		e := sorted[i]
		if !isCharKey(e) {
			prev = nil
			continue
		}
		if prev != nil {
			key := prev.Key + e.Key
			bs, ok := byBigram[key]
			if !ok {
				bs = &model.BigramStats{Bigram: key}
				byBigram[key] = bs
			}
			bs.FlightSumMs += (e.DownTS - prev.UpTS) * 1000
			bs.Count++
		}
		prev = &sorted[i]
	}

	out := make([]model.BigramStats, 0, len(byBigram))
	for _, bs := range byBigram {
		out = append(out, *bs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Bigram < out[j].Bigram })
	return out
}

// SessionErrorCounts counts errors per kind. Transpositions can only be
// detected client-side and are taken from event flags.
func SessionErrorCounts(analysis model.ErrorAnalysis, events []model.KeystrokeEvent) []model.ErrorKindCount {
	counts := []model.ErrorKindCount{
		{Kind: ErrorKindSubstitution, Count: len(analysis.Substitutions)},
		{Kind: ErrorKindInsertion, Count: len(analysis.Insertions)},
		{Kind: ErrorKindDeletion, Count: len(analysis.Deletions)},
	}
	transpositions := 0
	for _, e := range events {
		if e.IsError != nil && *e.IsError == ErrorKindTransposition {
			transpositions++
		}
	}
	counts = append(counts, model.ErrorKindCount{Kind: ErrorKindTransposition, Count: transpositions})

	out := counts[:0]
	for _, c := range counts {
		if c.Count > 0 {
			out = append(out, c)
		}
	}
	return out
}

// SlowCharacters ranks characters by average dwell time, slowest first.
func SlowCharacters(aggs []model.CharAggregate, top int) []model.CharacterAnalysis {
	out := make([]model.CharacterAnalysis, 0, len(aggs))
	for _, agg := range aggs {
		if agg.DwellCount == 0 {
			continue
		}
		out = append(out, model.CharacterAnalysis{
			Char:            agg.Char,
			AvgDwellTime:    round2(avgDwell(agg)),
			DwellCount:      agg.DwellCount,
			ErrorCount:      agg.Incorrect,
			DifficultyScore: round2(charDifficulty(agg)),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgDwellTime == out[j].AvgDwellTime {
			return out[i].Char < out[j].Char
		}
		return out[i].AvgDwellTime > out[j].AvgDwellTime
	})
	return truncate(out, top)
}

// DifficultBigrams ranks bigrams by average flight time, slowest first.
// The difficulty score discounts bigrams seen only a few times.
func DifficultBigrams(bigrams []model.BigramStats, top int) []model.BigramAnalysis {
	out := make([]model.BigramAnalysis, 0, len(bigrams))
	for _, bs := range bigrams {
		if bs.Count == 0 {
			continue
		}
		avg := bs.FlightSumMs / float64(bs.Count)
		confidence := float64(bs.Count) / float64(bs.Count+1)
		out = append(out, model.BigramAnalysis{
			Bigram:          bs.Bigram,
			AvgFlightTime:   round2(avg),
			Count:           bs.Count,
			DifficultyScore: round2(avg * confidence),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgFlightTime == out[j].AvgFlightTime {
			return out[i].Bigram < out[j].Bigram
		}
		return out[i].AvgFlightTime > out[j].AvgFlightTime
	})
	return truncate(out, top)
}

// CommonErrors ranks error kinds by frequency.
func CommonErrors(counts []model.ErrorKindCount) []model.ErrorKindCount {
	out := make([]model.ErrorKindCount, 0, len(counts))
	for _, c := range counts {
		if c.Count > 0 {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Count > out[j].Count
	})
	return out
}

// BuildProfile rolls per-session statistics into a typing profile.
func BuildProfile(sessions []model.SessionAggregate, chars []model.CharAggregate, bigrams []model.BigramStats, errs []model.ErrorKindCount, top int) model.Profile {
	p := model.Profile{
		SlowCharacters:   SlowCharacters(chars, top),
		DifficultBigrams: DifficultBigrams(bigrams, top),
		CommonErrors:     CommonErrors(errs),
	}
	p.SessionsAnalyzed, p.AvgWPM, p.AvgAccuracy = averages(sessions)
	return p
}

// CharacterProblems lists characters with errors, most errors first.
func CharacterProblems(aggs []model.CharAggregate, limit int) []model.CharacterProblem {
	out := make([]model.CharacterProblem, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Incorrect == 0 {
			continue
		}
		total := agg.Correct + agg.Incorrect
		out = append(out, model.CharacterProblem{
			Character:  agg.Char,
			ErrorCount: agg.Incorrect,
			TotalTyped: total,
			ErrorRate:  round2(float64(agg.Incorrect) / float64(total) * 100),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ErrorCount != out[j].ErrorCount {
			return out[i].ErrorCount > out[j].ErrorCount
		}
		if out[i].ErrorRate != out[j].ErrorRate {
			return out[i].ErrorRate > out[j].ErrorRate
		}
		return out[i].Character < out[j].Character
	})
	return truncate(out, limit)
}

// BuildProgress summarizes sessions ordered oldest first. The trend compares
// the average WPM of the older half with the newer half.
func BuildProgress(sessions []model.SessionAggregate, recent int) model.Progress {
	p := model.Progress{
		ImprovementTrend: TrendInsufficientData,
		RecentSessions:   []model.SessionAggregate{},
	}
	p.SessionsAnalyzed, p.AvgWPM, p.AvgAccuracy = averages(sessions)

	var wpms []float64
	for _, s := range sessions {
		p.TotalPracticeTime += s.DurationSecs
		if s.Computed {
			wpms = append(wpms, s.WordsPerMinute)
		}
	}
	p.TotalPracticeTime = round2(p.TotalPracticeTime)
	p.ImprovementTrend = trend(wpms)

	if recent <= 0 || recent > len(sessions) {
		recent = len(sessions)
	}
	for i := len(sessions) - 1; i >= len(sessions)-recent; i-- {
		p.RecentSessions = append(p.RecentSessions, sessions[i])
	}
	return p
}

// BuildDetailedAnalysis breaks down one session from its derived statistics.
func BuildDetailedAnalysis(sessionID int64, summary model.Summary, timing model.Timing, chars []model.CharStats, bigrams []model.BigramStats, errs []model.ErrorKindCount, top int) model.DetailedAnalysis {
	aggs := make([]model.CharAggregate, len(chars))
	for i, cs := range chars {
		aggs[i] = model.CharAggregate(cs)
	}
	common := map[string]int{}
	for _, c := range errs {
		common[c.Kind] = c.Count
	}
	d := model.DetailedAnalysis{
		SessionID:        sessionID,
		SlowCharacters:   SlowCharacters(aggs, top),
		DifficultBigrams: DifficultBigrams(bigrams, top),
		CommonErrors:     common,
		TypingRhythm:     Rhythm(timing),
	}
	d.ImprovementAreas = improvementAreas(summary, d)
	return d
}

// Rhythm describes timing consistency. Consistency is one minus the
// coefficient of variation of flight times, clamped to [0, 1].
func Rhythm(timing model.Timing) map[string]float64 {
	flightMean := mean(timing.FlightMs)
	flightSD := stdDev(timing.FlightMs)
	consistency := 0.0
	if len(timing.FlightMs) > 0 {
		consistency = 1.0
		if flightMean > 0 {
			consistency = 1 - flightSD/flightMean
		}
		consistency = min(max(consistency, 0), 1)
	}
	return map[string]float64{
		"mean_dwell_ms":     round2(mean(timing.DwellMs)),
		"dwell_std_dev_ms":  round2(stdDev(timing.DwellMs)),
		"mean_flight_ms":    round2(flightMean),
		"flight_std_dev_ms": round2(flightSD),
		"consistency":       round2(consistency),
	}
}

func improvementAreas(summary model.Summary, d model.DetailedAnalysis) []string {
	areas := []string{}
	if summary.AccuracyPercentage < 95 {
		areas = append(areas, fmt.Sprintf("accuracy is %.1f%%; slow down until it stays above 95%%", summary.AccuracyPercentage))
	}
	if summary.KeystrokeCount > 0 && summary.CorrectionCount*10 > summary.KeystrokeCount {
		areas = append(areas, fmt.Sprintf("%d corrections in %d keystrokes; aim to type without backtracking", summary.CorrectionCount, summary.KeystrokeCount))
	}
	if len(d.SlowCharacters) > 0 {
		n := min(3, len(d.SlowCharacters))
		chars := make([]string, 0, n)
		for _, c := range d.SlowCharacters[:n] {
			chars = append(chars, displayChar(c.Char))
		}
		areas = append(areas, "practice slow characters: "+strings.Join(chars, " "))
	}
	if len(d.DifficultBigrams) > 0 {
		areas = append(areas, fmt.Sprintf("drill the %q transition", d.DifficultBigrams[0].Bigram))
	}
	if c, ok := d.TypingRhythm["consistency"]; ok && c < 0.5 && summary.KeystrokeCount > 2 {
		areas = append(areas, "keep an even rhythm between keys")
	}
	return areas
}

func averages(sessions []model.SessionAggregate) (count int, avgWPM, avgAcc float64) {
	var wpm, acc float64
	for _, s := range sessions {
		if !s.Computed {
			continue
		}
		count++
		wpm += s.WordsPerMinute
		acc += s.AccuracyPercentage
	}
	if count == 0 {
		return 0, 0, 0
	}
	return count, round2(wpm / float64(count)), round2(acc / float64(count))
}

func trend(wpms []float64) string {
	if len(wpms) < 2 {
		return TrendInsufficientData
	}
	half := len(wpms) / 2
	older := mean(wpms[:half])
	newer := mean(wpms[len(wpms)-half:])
	if older == 0 {
		if newer > 0 {
			return TrendImproving
		}
		return TrendStable
	}
	change := (newer - older) / older
	switch {
	case change > trendThreshold:
		return TrendImproving
	case change < -trendThreshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func isCharKey(e model.KeystrokeEvent) bool {
	return !IsCorrection(e) && utf8.RuneCountInString(e.Key) == 1
}

func displayChar(ch string) string {
	if ch == " " {
		return "<space>"
	}
	return ch
}

func truncate[T any](items []T, n int) []T {
	if n > 0 && n < len(items) {
		return items[:n]
	}
	return items
}
