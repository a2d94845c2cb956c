// Package align computes edit scripts between a target text and typed input.
package align

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Tag identifies the kind of an edit operation.
type Tag string

const (
	Equal   Tag = "equal"
	Replace Tag = "replace"
	Insert  Tag = "insert"
	Delete  Tag = "delete"
)

// Opcode turns target[I1:I2] into actual[J1:J2]. Indices count runes.
type Opcode struct {
	Tag Tag
	I1  int
	I2  int
	J1  int
	J2  int
}

// Opcodes returns the edit script that transforms target into actual.
// Operations are ordered and cover both sequences without gaps or overlaps.
func Opcodes(target, actual string) []Opcode {
	return OpcodesRunes([]rune(target), []rune(actual))
}

// OpcodesRunes is Opcodes over rune slices.
func OpcodesRunes(target, actual []rune) []Opcode {
	if len(target) == 0 && len(actual) == 0 {
		return nil
	}
	// Autojunk is off: popular characters in long texts must still align.
	m := difflib.NewMatcherWithJunk(runeStrings(target), runeStrings(actual), false, nil)
	codes := m.GetOpCodes()
	out := make([]Opcode, 0, len(codes))
	for _, c := range codes {
		out = append(out, Opcode{
			Tag: tagFor(c.Tag),
			I1:  c.I1,
			I2:  c.I2,
			J1:  c.J1,
			J2:  c.J2,
		})
	}
	return out
}

// Apply replays ops against target and returns the reconstructed input.
// actual supplies the inserted and replacement runes.
func Apply(target, actual string, ops []Opcode) (string, error) {
	t := []rune(target)
	a := []rune(actual)
	var b strings.Builder
	nextI, nextJ := 0, 0
	for idx, op := range ops {
		if op.I1 != nextI || op.J1 != nextJ {
			return "", fmt.Errorf("opcode %d: gap or overlap at target %d actual %d", idx, op.I1, op.J1)
		}
		if op.I2 < op.I1 || op.J2 < op.J1 || op.I2 > len(t) || op.J2 > len(a) {
			return "", fmt.Errorf("opcode %d: range out of bounds", idx)
		}
		switch op.Tag {
		case Equal:
			if string(t[op.I1:op.I2]) != string(a[op.J1:op.J2]) {
				return "", fmt.Errorf("opcode %d: equal span differs", idx)
			}
			b.WriteString(string(t[op.I1:op.I2]))
		case Replace, Insert:
			b.WriteString(string(a[op.J1:op.J2]))
		case Delete:
		default:
			return "", fmt.Errorf("opcode %d: unknown tag %q", idx, op.Tag)
		}
		nextI, nextJ = op.I2, op.J2
	}
	if nextI != len(t) || nextJ != len(a) {
		return "", fmt.Errorf("opcodes stop at target %d actual %d", nextI, nextJ)
	}
	return b.String(), nil
}

func tagFor(t byte) Tag {
	switch t {
	case 'r':
		return Replace
	case 'i':
		return Insert
	case 'd':
		return Delete
	default:
		return Equal
	}
}

func runeStrings(runes []rune) []string {
	out := make([]string, len(runes))
	for i, r := range runes {
		out[i] = string(r)
	}
	return out
}
