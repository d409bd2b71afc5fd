package checkers

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// directions returns the row deltas p may travel along.
func directions(p Piece) []int {
	if p.IsKing() {
		return []int{-1, 1}
	}
	return []int{p.Color.forward()}
}

// IsValidMove is the predicate phase of move validation. It never mutates m.
// A move spanning two rows is treated as a capture attempt.
func IsValidMove(b *Board, p Piece, m Move) bool {
	if b == nil || p.Color == NoColor {
		return false
	}
	if m.FromRow != p.Row || m.FromCol != p.Col {
		return false
	}
	if !InBounds(m.FromRow, m.FromCol) || !InBounds(m.ToRow, m.ToCol) {
		return false
	}
	if b.Occupied(m.ToRow, m.ToCol) {
		return false
	}
	dRow := m.ToRow - m.FromRow
	dCol := m.ToCol - m.FromCol
	if abs(dRow) != abs(dCol) {
		return false
	}
	// mandatory capture applies across all pieces of the color
	if abs(dRow) != 2 && len(AvailableCaptures(b, p.Color)) > 0 {
		return false
	}
	switch abs(dRow) {
	case 1:
		return p.IsKing() || dRow == p.Color.forward()
	case 2:
		return isValidCapture(b, p, m)
	default:
		return false
	}
}

func isValidCapture(b *Board, p Piece, m Move) bool {
	dRow := m.ToRow - m.FromRow
	if !p.IsKing() && dRow != 2*p.Color.forward() {
		return false
	}
	mid, ok := b.At((m.FromRow+m.ToRow)/2, (m.FromCol+m.ToCol)/2)
	if !ok || mid.Color != p.Color.Opponent() {
		return false
	}
	return !b.Occupied(m.ToRow, m.ToCol)
}

// ValidateMove is the enrichment phase: it returns a copy of m with Capture and
// Captured filled in from the board geometry. The caller's move is left untouched.
func ValidateMove(b *Board, p Piece, m Move) (Move, bool) {
	if !IsValidMove(b, p, m) {
		return Move{}, false
	}
	out := Move{FromRow: m.FromRow, FromCol: m.FromCol, ToRow: m.ToRow, ToCol: m.ToCol}
	if abs(m.ToRow-m.FromRow) == 2 {
		out.Capture = true
		out.Captured = &Position{Row: (m.FromRow + m.ToRow) / 2, Col: (m.FromCol + m.ToCol) / 2}
	}
	return out, true
}

// CapturesForPiece lists the jumps available to p: four diagonals for a king, two forward ones otherwise.
func CapturesForPiece(b *Board, p Piece) []Move {
	var out []Move
	for _, dr := range directions(p) {
		for _, dc := range []int{-1, 1} {
			toRow, toCol := p.Row+2*dr, p.Col+2*dc
			if !InBounds(toRow, toCol) || b.Occupied(toRow, toCol) {
				continue
			}
			midRow, midCol := p.Row+dr, p.Col+dc
			mid, ok := b.At(midRow, midCol)
			if !ok || mid.Color != p.Color.Opponent() {
				continue
			}
			out = append(out, Move{
				FromRow:  p.Row,
				FromCol:  p.Col,
				ToRow:    toRow,
				ToCol:    toCol,
				Capture:  true,
				Captured: &Position{Row: midRow, Col: midCol},
			})
		}
	}
	return out
}

// AvailableCaptures lists every jump open to any piece of color c.
func AvailableCaptures(b *Board, c Color) []Move {
	if b == nil {
		return nil
	}
	var out []Move
	for _, p := range b.Pieces(c) {
		out = append(out, CapturesForPiece(b, p)...)
	}
	return out
}

// ValidMovesForPiece returns p's captures if it has any, otherwise its legal simple steps.
// Steps are filtered through IsValidMove, so a piece has none while another piece of its
// color must capture.
func ValidMovesForPiece(b *Board, p Piece) []Move {
	if caps := CapturesForPiece(b, p); len(caps) > 0 {
		return caps
	}
	var out []Move
	for _, dr := range directions(p) {
		for _, dc := range []int{-1, 1} {
			m := Step(p.Row, p.Col, p.Row+dr, p.Col+dc)
			if IsValidMove(b, p, m) {
				out = append(out, m)
			}
		}
	}
	return out
}

// HasAnyValidMove reports whether color c can move at all.
func HasAnyValidMove(b *Board, c Color) bool {
	for _, p := range b.Pieces(c) {
		if len(ValidMovesForPiece(b, p)) > 0 {
			return true
		}
	}
	return false
}

func shouldPromote(p Piece) bool {
	return !p.IsKing() && p.Row == p.Color.promotionRow()
}
