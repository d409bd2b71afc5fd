package checkers

import (
	"strconv"
	"strings"
)

// SquareNumber maps a dark square to its PDN number (1-32), counting from DARK's back row.
// Light squares and off-board cells return 0.
func SquareNumber(row, col int) int {
	if !InBounds(row, col) || !IsDarkSquare(row, col) {
		return 0
	}
	return row*4 + col/2 + 1
}

// Notation renders a single move as "from-to" or "fromxto".
func Notation(m Move) string {
	sep := "-"
	if m.Capture {
		sep = "x"
	}
	return strconv.Itoa(SquareNumber(m.FromRow, m.FromCol)) + sep + strconv.Itoa(SquareNumber(m.ToRow, m.ToCol))
}

// NotationList groups a move history into PDN tokens. A jump that starts where the
// previous jump ended continues it ("9x18x27").
func NotationList(history []Move) []string {
	var out []string
	for i, m := range history {
		if m.Capture && i > 0 && len(out) > 0 {
			prev := history[i-1]
			if prev.Capture && prev.ToRow == m.FromRow && prev.ToCol == m.FromCol {
				out[len(out)-1] += "x" + strconv.Itoa(SquareNumber(m.ToRow, m.ToCol))
				continue
			}
		}
		out = append(out, Notation(m))
	}
	return out
}

// FormatPDN numbers the tokens in pairs, LIGHT first.
func FormatPDN(tokens []string) string {
	var b strings.Builder
	for i := 0; i < len(tokens); i += 2 {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(strconv.Itoa(i/2+1) + ". " + tokens[i])
		if i+1 < len(tokens) {
			b.WriteString(" " + tokens[i+1])
		}
	}
	return b.String()
}
