// Package stats contains typing metrics calculations and reporting.
package stats

import (
	"math"
	"strings"
)

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// SpeedMetrics computes WPM and CPM for chars typed over durationSecs.
// A non-positive duration yields zeros.
func SpeedMetrics(chars int, durationSecs float64) (wpm, cpm float64) {
	if durationSecs <= 0 {
		return 0, 0
	}
	cpm = float64(chars) / (durationSecs / 60)
	return cpm / 5, cpm
}

// MovingAverage smooths values with a trailing window. Leading points average
// over what is available so far.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	window = max(window, 1)
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline draws one block per value, scaled between the smallest and largest
// value. A flat series sits on the middle level.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	top := len(sparkLevels) - 1
	var b strings.Builder
	for _, v := range values {
		level := top / 2
		if hi-lo > 1e-9 {
			level = int(math.Round((v - lo) / (hi - lo) * float64(top)))
		}
		b.WriteRune(sparkLevels[level])
	}
	return b.String()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// stdDev is the population standard deviation.
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sq float64
	for _, v := range values {
		d := v - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}
