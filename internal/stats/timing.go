package stats

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/verte-zerg/typist/internal/model"
)

// ErrNegativeDuration is returned when the last key release precedes the first key press.
var ErrNegativeDuration = fmt.Errorf("%w: last key release precedes first key press", model.ErrInvalidState)

// SortEvents returns a copy of events ordered by key-down time. Ties keep
// their upload order.
func SortEvents(events []model.KeystrokeEvent) []model.KeystrokeEvent {
	sorted := make([]model.KeystrokeEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DownTS < sorted[j].DownTS
	})
	return sorted
}

// Correction flags accepted on uploaded events.
const (
	CorrectionBackspace = "backspace"
	CorrectionDelete    = "delete"
)

// IsCorrection reports whether the event erased previously typed text.
func IsCorrection(e model.KeystrokeEvent) bool {
	if e.IsCorrection != nil {
		switch *e.IsCorrection {
		case CorrectionBackspace, CorrectionDelete:
			return true
		}
	}
	switch e.Key {
	case "Backspace", "Delete":
		return true
	}
	return false
}

// AnalyzeTiming computes dwell, flight, speed, and correction metrics.
// input is the final submitted text; nil means nothing was submitted.
func AnalyzeTiming(events []model.KeystrokeEvent, input *string, basis model.WPMBasis) (model.Timing, error) {
	sorted := SortEvents(events)
	n := len(sorted)
	res := model.Timing{
		KeystrokeCount: n,
		DwellMs:        make([]float64, 0, n),
		FlightMs:       make([]float64, 0, max(n-1, 0)),
	}
	if n == 0 {
		return res, nil
	}

	if n >= 2 {
		res.DurationSecs = sorted[n-1].UpTS - sorted[0].DownTS
		if res.DurationSecs < 0 {
			return model.Timing{}, ErrNegativeDuration
		}
	}

	for i, e := range sorted {
		res.DwellMs = append(res.DwellMs, (e.UpTS-e.DownTS)*1000)
		if i > 0 {
			res.FlightMs = append(res.FlightMs, (e.DownTS-sorted[i-1].UpTS)*1000)
		}
		if IsCorrection(e) {
			res.CorrectionCount++
		}
	}
	res.AvgDwellMs = mean(res.DwellMs)
	res.AvgFlightMs = mean(res.FlightMs)

	chars := n
	if basis != model.WPMBasisKeystrokes && input != nil {
		chars = utf8.RuneCountInString(*input)
	}
	res.WPM, res.CharactersPerMinute = SpeedMetrics(chars, res.DurationSecs)
	return res, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
