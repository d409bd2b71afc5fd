package render

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/park285/checkers-arena/internal/checkers"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

func TestRenderPNGDecodes(t *testing.T) {
	b := checkers.NewBoard()
	b.Place(checkers.Piece{Color: checkers.Light, Kind: checkers.King}, 3, 2)
	m := checkers.Step(5, 0, 4, 1)

	out, err := NewBoardRenderer().RenderPNG(context.Background(), b, Options{
		LastMove: &m,
		Header:   "ABC234 alice vs bob",
		Turn:     "Turn of dark",
		Numbers:  true,
	})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := boardSize + sideMargin*2
	if img.Bounds().Dx() != want || img.Bounds().Dy() != boardSize+topMargin+bottomMargin {
		t.Fatalf("bounds = %v", img.Bounds())
	}
}

func TestRenderPNGHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewBoardRenderer().RenderPNG(ctx, checkers.NewBoard(), Options{}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestAllPieceAssetsParse(t *testing.T) {
	for _, c := range []checkers.Color{checkers.Light, checkers.Dark} {
		for _, k := range []checkers.Kind{checkers.Man, checkers.King} {
			if _, err := renderPieceImage(checkers.Piece{Color: c, Kind: k}, 32); err != nil {
				t.Fatalf("%s %s: %v", c, k, err)
			}
		}
	}
}

func TestTruncateWithEllipsis(t *testing.T) {
	// basicfont glyphs are 7px wide
	var face font.Face = basicfont.Face7x13
	if got := truncateWithEllipsis(face, "abcdefghij", 49); got != "abcd..." {
		t.Fatalf("got %q", got)
	}
	if got := truncateWithEllipsis(face, "abc", 49); got != "abc" {
		t.Fatalf("got %q", got)
	}
}
