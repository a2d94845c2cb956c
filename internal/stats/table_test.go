package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTableUsesDisplayWidth(t *testing.T) {
	lines := formatTable([]string{"Key", "Count"}, [][]string{
		{"日", "3"},
		{"<space>", "12"},
	}, 1)

	assert.Equal(t, []string{
		"Key     Count",
		"日          3",
		"<space>    12",
	}, lines)
}

func TestFormatTableEmpty(t *testing.T) {
	assert.Nil(t, formatTable(nil, nil))
}

func TestMovingAverage(t *testing.T) {
	assert.Equal(t, []float64{1, 1.5, 2.5, 3.5}, MovingAverage([]float64{1, 2, 3, 4}, 2))
	assert.Equal(t, []float64{1, 2}, MovingAverage([]float64{1, 2}, 0))
	assert.Empty(t, MovingAverage(nil, 3))
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "▁█", Sparkline([]float64{0, 9}))
	assert.Equal(t, "▄▄", Sparkline([]float64{3, 3}))
	assert.Equal(t, "", Sparkline(nil))
}

func TestSpeedMetrics(t *testing.T) {
	wpm, cpm := SpeedMetrics(50, 60)
	assert.InDelta(t, 10, wpm, 1e-9)
	assert.InDelta(t, 50, cpm, 1e-9)

	wpm, cpm = SpeedMetrics(50, 0)
	assert.Zero(t, wpm)
	assert.Zero(t, cpm)
}
