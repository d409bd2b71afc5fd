package checkers

// Board is the 8x8 grid. Cells are addressed by (row, col) with row 0 at DARK's back rank.
type Board struct {
	cells [BoardSize][BoardSize]*Piece
}

// InBounds reports whether (row, col) lies on the board.
func InBounds(row, col int) bool {
	return row >= 0 && row < BoardSize && col >= 0 && col < BoardSize
}

// IsDarkSquare reports whether (row, col) is a playable square.
func IsDarkSquare(row, col int) bool { return (row+col)%2 == 1 }

// NewBoard returns the starting position: DARK on rows 0-2, LIGHT on rows 5-7.
func NewBoard() *Board {
	b := &Board{}
	for row := 0; row < BoardSize; row++ {
		var c Color
		switch {
		case row <= 2:
			c = Dark
		case row >= 5:
			c = Light
		default:
			continue
		}
		for col := 0; col < BoardSize; col++ {
			if IsDarkSquare(row, col) {
				b.Place(Piece{Color: c}, row, col)
			}
		}
	}
	return b
}

// EmptyBoard returns a board with no pieces.
func EmptyBoard() *Board { return &Board{} }

// At returns a copy of the piece on (row, col).
func (b *Board) At(row, col int) (Piece, bool) {
	if !InBounds(row, col) {
		return Piece{}, false
	}
	p := b.cells[row][col]
	if p == nil {
		return Piece{}, false
	}
	return *p, true
}

// Occupied reports whether a piece stands on (row, col). Out-of-bounds cells are not occupied.
func (b *Board) Occupied(row, col int) bool {
	_, ok := b.At(row, col)
	return ok
}

// Place puts p on (row, col), overwriting the cell, and stamps the coordinates onto the piece.
func (b *Board) Place(p Piece, row, col int) {
	if !InBounds(row, col) || p.Color == NoColor {
		return
	}
	p.Row, p.Col = row, col
	b.cells[row][col] = &p
}

// Remove clears (row, col).
func (b *Board) Remove(row, col int) {
	if InBounds(row, col) {
		b.cells[row][col] = nil
	}
}

func (b *Board) relocate(fromRow, fromCol, toRow, toCol int) {
	p := b.cells[fromRow][fromCol]
	if p == nil {
		return
	}
	b.cells[fromRow][fromCol] = nil
	p.Row, p.Col = toRow, toCol
	b.cells[toRow][toCol] = p
}

func (b *Board) crown(row, col int) {
	if p := b.cells[row][col]; p != nil {
		p.Kind = King
	}
}

// Pieces returns copies of every piece of color c in row-major order.
func (b *Board) Pieces(c Color) []Piece {
	var out []Piece
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			if p := b.cells[row][col]; p != nil && p.Color == c {
				out = append(out, *p)
			}
		}
	}
	return out
}

// Count returns the number of pieces of color c.
func (b *Board) Count(c Color) int {
	n := 0
	for row := range b.cells {
		for _, p := range b.cells[row] {
			if p != nil && p.Color == c {
				n++
			}
		}
	}
	return n
}

// Clone returns a deep copy.
func (b *Board) Clone() *Board {
	out := &Board{}
	for row := range b.cells {
		for col, p := range b.cells[row] {
			if p != nil {
				cp := *p
				out.cells[row][col] = &cp
			}
		}
	}
	return out
}
