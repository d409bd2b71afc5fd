package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"math"
	"strconv"
	"strings"

	"github.com/park285/checkers-arena/internal/checkers"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Options decorates a rendered board.
type Options struct {
	LastMove *checkers.Move
	Header   string
	Turn     string
	Numbers  bool // draw PDN square numbers on playable squares
}

// BoardRenderer turns a board into a PNG.
type BoardRenderer interface {
	RenderPNG(ctx context.Context, board *checkers.Board, opts Options) ([]byte, error)
}

type svgBoardRenderer struct{}

func NewBoardRenderer() BoardRenderer { return &svgBoardRenderer{} }

const (
	squareSize   = 64
	boardSize    = squareSize * checkers.BoardSize
	sideMargin   = 24
	topMargin    = 92
	bottomMargin = 24
	panelHeight  = 28
	panelGap     = 10
	gapToBoard   = 14
	panelRadius  = 10
	panelPadding = 18
	shadowOffset = 4
)

var (
	lightSquare      = color.RGBA{238, 225, 196, 255}
	darkSquare       = color.RGBA{121, 82, 58, 255}
	backgroundColor  = color.RGBA{22, 24, 34, 255}
	moveFromFill     = color.NRGBA{R: 255, G: 228, B: 120, A: 110}
	moveArrowColor   = color.NRGBA{R: 148, G: 207, B: 255, A: 170}
	hudPanelColor    = color.NRGBA{R: 38, G: 42, B: 60, A: 250}
	hudTurnColor     = color.NRGBA{R: 46, G: 52, B: 74, A: 245}
	hudShadowColor   = color.NRGBA{0, 0, 0, 60}
	hudTextPrimary   = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	hudTextSecondary = color.NRGBA{R: 204, G: 210, B: 236, A: 255}
	numberTextColor  = color.NRGBA{R: 238, G: 225, B: 196, A: 200}
)

func (r *svgBoardRenderer) RenderPNG(ctx context.Context, board *checkers.Board, opts Options) ([]byte, error) {
	if board == nil {
		return nil, fmt.Errorf("board is nil")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	totalWidth := boardSize + sideMargin*2
	totalHeight := boardSize + topMargin + bottomMargin
	origin := image.Point{X: sideMargin, Y: topMargin}
	boardRect := image.Rect(origin.X, origin.Y, origin.X+boardSize, origin.Y+boardSize)

	img := image.NewRGBA(image.Rect(0, 0, totalWidth, totalHeight))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	drawer := &font.Drawer{Dst: img, Face: basicfont.Face7x13}
	drawHUD(img, drawer, opts, boardRect)
	drawSquares(img, origin)
	if opts.LastMove != nil {
		drawSquareOverlay(img, opts.LastMove.FromRow, opts.LastMove.FromCol, origin, moveFromFill)
	}
	if opts.Numbers {
		drawSquareNumbers(drawer, origin)
	}
	if err := drawPieces(ctx, img, board, origin); err != nil {
		return nil, err
	}
	if m := opts.LastMove; m != nil {
		drawArrow(img, m.FromRow, m.FromCol, m.ToRow, m.ToCol, origin, moveArrowColor)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawSquares(dst imagedraw.Image, origin image.Point) {
	for row := 0; row < checkers.BoardSize; row++ {
		for col := 0; col < checkers.BoardSize; col++ {
			clr := lightSquare
			if checkers.IsDarkSquare(row, col) {
				clr = darkSquare
			}
			imagedraw.Draw(dst, squareRect(row, col, origin), image.NewUniform(clr), image.Point{}, imagedraw.Src)
		}
	}
}

func drawPieces(ctx context.Context, dst imagedraw.Image, board *checkers.Board, origin image.Point) error {
	for _, c := range []checkers.Color{checkers.Dark, checkers.Light} {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, p := range board.Pieces(c) {
			img, err := renderPieceImage(p, squareSize)
			if err != nil {
				return err
			}
			imagedraw.Draw(dst, squareRect(p.Row, p.Col, origin), img, image.Point{}, imagedraw.Over)
		}
	}
	return nil
}

func drawSquareNumbers(drawer *font.Drawer, origin image.Point) {
	drawer.Src = image.NewUniform(numberTextColor)
	ascent := drawer.Face.Metrics().Ascent.Ceil()
	for row := 0; row < checkers.BoardSize; row++ {
		for col := 0; col < checkers.BoardSize; col++ {
			n := checkers.SquareNumber(row, col)
			if n == 0 {
				continue
			}
			rect := squareRect(row, col, origin)
			drawer.Dot = fixed.P(rect.Min.X+3, rect.Min.Y+ascent+1)
			drawer.DrawString(strconv.Itoa(n))
		}
	}
}

func drawHUD(img *image.RGBA, drawer *font.Drawer, opts Options, boardRect image.Rectangle) {
	title := strings.TrimSpace(opts.Header)
	if title == "" {
		title = "Checkers"
	}
	turn := strings.TrimSpace(opts.Turn)

	turnBottom := boardRect.Min.Y - gapToBoard
	turnTop := turnBottom - panelHeight
	titleBottom := turnTop - panelGap
	titleTop := titleBottom - panelHeight

	titleRect := image.Rect(boardRect.Min.X, titleTop, boardRect.Max.X, titleBottom)
	title = truncateWithEllipsis(drawer.Face, title, titleRect.Dx()-panelPadding*2)
	drawRoundedPanel(img, titleRect.Add(image.Pt(0, shadowOffset)), panelRadius, hudShadowColor)
	drawRoundedPanel(img, titleRect, panelRadius, hudPanelColor)
	drawCenteredString(drawer, titleRect, title, hudTextPrimary)

	if turn == "" {
		return
	}
	turnWidth := drawer.MeasureString(turn).Round() + panelPadding*2
	if turnWidth > boardRect.Dx() {
		turnWidth = boardRect.Dx()
	}
	left := boardRect.Min.X + (boardRect.Dx()-turnWidth)/2
	turnRect := image.Rect(left, turnTop, left+turnWidth, turnBottom)
	turn = truncateWithEllipsis(drawer.Face, turn, turnRect.Dx()-panelPadding*2)
	drawRoundedPanel(img, turnRect.Add(image.Pt(0, shadowOffset)), panelRadius, hudShadowColor)
	drawRoundedPanel(img, turnRect, panelRadius, hudTurnColor)
	drawCenteredString(drawer, turnRect, turn, hudTextSecondary)
}

func drawSquareOverlay(img *image.RGBA, row, col int, origin image.Point, clr color.Color) {
	if img == nil || !checkers.InBounds(row, col) {
		return
	}
	imagedraw.Draw(img, squareRect(row, col, origin), image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

func drawArrow(img *image.RGBA, fromRow, fromCol, toRow, toCol int, origin image.Point, clr color.Color) {
	if img == nil || !checkers.InBounds(fromRow, fromCol) || !checkers.InBounds(toRow, toCol) {
		return
	}
	startRect := squareRect(fromRow, fromCol, origin)
	endRect := squareRect(toRow, toCol, origin)
	sx := float64(startRect.Min.X + squareSize/2)
	sy := float64(startRect.Min.Y + squareSize/2)
	ex := float64(endRect.Min.X + squareSize/2)
	ey := float64(endRect.Min.Y + squareSize/2)

	dx, dy := ex-sx, ey-sy
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	dirX, dirY := dx/length, dy/length
	perpX, perpY := -dirY, dirX

	baseLength := length - float64(squareSize)*0.45
	if baseLength < float64(squareSize)*0.35 {
		baseLength = length * 0.6
	}
	halfWidth := float64(squareSize) * 0.1
	headWidth := float64(squareSize) * 0.36
	bx := sx + dirX*baseLength
	by := sy + dirY*baseLength

	fillQuad(img,
		pointF{sx - perpX*halfWidth, sy - perpY*halfWidth},
		pointF{sx + perpX*halfWidth, sy + perpY*halfWidth},
		pointF{bx + perpX*halfWidth, by + perpY*halfWidth},
		pointF{bx - perpX*halfWidth, by - perpY*halfWidth},
		clr)
	fillTriangleF(img,
		pointF{ex, ey},
		pointF{bx - perpX*headWidth/2, by - perpY*headWidth/2},
		pointF{bx + perpX*headWidth/2, by + perpY*headWidth/2},
		clr)
}

func squareRect(row, col int, origin image.Point) image.Rectangle {
	x := origin.X + col*squareSize
	y := origin.Y + row*squareSize
	return image.Rect(x, y, x+squareSize, y+squareSize)
}
