package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpcodesReplayReconstructsActual(t *testing.T) {
	pairs := []struct{ target, actual string }{
		{"", ""},
		{"", "abc"},
		{"abc", ""},
		{"cat", "cot"},
		{"hello", "helo"},
		{"hello", "helllo"},
		{"the quick brown fox", "teh quikc brwn fox jumps"},
		{"résumé", "resume"},
		{"aaaa", "aa"},
		{"abcdef", "fedcba"},
		{"kitten", "sitting"},
	}
	for _, p := range pairs {
		ops := Opcodes(p.target, p.actual)
		got, err := Apply(p.target, p.actual, ops)
		require.NoError(t, err, "target=%q actual=%q", p.target, p.actual)
		assert.Equal(t, p.actual, got, "target=%q actual=%q", p.target, p.actual)
	}
}

func TestOpcodesCoverBothSequences(t *testing.T) {
	ops := Opcodes("the quick brown fox", "a quick brown cat")
	require.NotEmpty(t, ops)
	assert.Equal(t, 0, ops[0].I1)
	assert.Equal(t, 0, ops[0].J1)
	for i := 1; i < len(ops); i++ {
		assert.Equal(t, ops[i-1].I2, ops[i].I1)
		assert.Equal(t, ops[i-1].J2, ops[i].J1)
	}
	last := ops[len(ops)-1]
	assert.Equal(t, len([]rune("the quick brown fox")), last.I2)
	assert.Equal(t, len([]rune("a quick brown cat")), last.J2)
}

func TestOpcodesEdgeCases(t *testing.T) {
	assert.Empty(t, Opcodes("", ""))

	ops := Opcodes("abc", "")
	require.Len(t, ops, 1)
	assert.Equal(t, Opcode{Tag: Delete, I1: 0, I2: 3, J1: 0, J2: 0}, ops[0])

	ops = Opcodes("", "xy")
	require.Len(t, ops, 1)
	assert.Equal(t, Opcode{Tag: Insert, I1: 0, I2: 0, J1: 0, J2: 2}, ops[0])
}

func TestOpcodesSubstitution(t *testing.T) {
	ops := Opcodes("cat", "cot")
	assert.Equal(t, []Opcode{
		{Tag: Equal, I1: 0, I2: 1, J1: 0, J2: 1},
		{Tag: Replace, I1: 1, I2: 2, J1: 1, J2: 2},
		{Tag: Equal, I1: 2, I2: 3, J1: 2, J2: 3},
	}, ops)
}

func TestOpcodesDeterministic(t *testing.T) {
	a := Opcodes("mississippi", "misisipi")
	b := Opcodes("mississippi", "misisipi")
	assert.Equal(t, a, b)
}

func TestApplyRejectsGaps(t *testing.T) {
	_, err := Apply("abc", "abc", []Opcode{{Tag: Equal, I1: 0, I2: 1, J1: 0, J2: 1}})
	assert.Error(t, err)

	_, err = Apply("abc", "abc", []Opcode{
		{Tag: Equal, I1: 0, I2: 1, J1: 0, J2: 1},
		{Tag: Equal, I1: 2, I2: 3, J1: 2, J2: 3},
	})
	assert.Error(t, err)
}
