// Package board renders the current position of a game as a PNG snapshot
// for the read-only query surface.
package board

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	nchess "github.com/corentings/chess/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	squareSize   = 72
	boardSquares = 8
	boardSize    = squareSize * boardSquares
	margin       = 24
)

var (
	lightSquare = color.RGBA{R: 0xf0, G: 0xd9, B: 0xb5, A: 0xff}
	darkSquare  = color.RGBA{R: 0xb5, G: 0x88, B: 0x63, A: 0xff}
	background  = color.RGBA{R: 0x2e, G: 0x2a, B: 0x24, A: 0xff}
	labelColor  = color.RGBA{R: 0xd8, G: 0xd2, B: 0xc8, A: 0xff}
)

// Renderer draws a position, white at the bottom.
type Renderer struct{}

func NewRenderer() Renderer { return Renderer{} }

// RenderPNG renders the position encoded in fen.
func (Renderer) RenderPNG(ctx context.Context, fen string) ([]byte, error) {
	option, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen %q: %w", fen, err)
	}
	game := nchess.NewGame(option)
	b := game.Position().Board()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	total := boardSize + margin*2
	img := image.NewRGBA(image.Rect(0, 0, total, total))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	origin := image.Point{X: margin, Y: margin}
	drawSquares(img, origin)
	if err := drawPieces(img, b, origin); err != nil {
		return nil, err
	}
	drawCoordinates(img, origin)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawSquares(img *image.RGBA, origin image.Point) {
	for file := 0; file < boardSquares; file++ {
		for rank := 0; rank < boardSquares; rank++ {
			fill := lightSquare
			if (file+rank)%2 == 1 {
				fill = darkSquare
			}
			x := origin.X + file*squareSize
			y := origin.Y + rank*squareSize
			rect := image.Rect(x, y, x+squareSize, y+squareSize)
			draw.Draw(img, rect, image.NewUniform(fill), image.Point{}, draw.Src)
		}
	}
}

func drawPieces(img *image.RGBA, b *nchess.Board, origin image.Point) error {
	for file := 0; file < boardSquares; file++ {
		for rank := 0; rank < boardSquares; rank++ {
			sq := nchess.NewSquare(nchess.File(file), nchess.Rank(rank))
			piece := b.Piece(sq)
			if piece == nchess.NoPiece {
				continue
			}
			pieceImg, err := renderPieceImage(piece, squareSize)
			if err != nil {
				return err
			}
			// rank 0 sits at the bottom row of the image
			x := origin.X + file*squareSize
			y := origin.Y + (boardSquares-1-rank)*squareSize
			rect := image.Rect(x, y, x+squareSize, y+squareSize)
			draw.Draw(img, rect, pieceImg, image.Point{}, draw.Over)
		}
	}
	return nil
}

func drawCoordinates(img *image.RGBA, origin image.Point) {
	face := basicfont.Face7x13
	for file := 0; file < boardSquares; file++ {
		label := string(rune('a' + file))
		x := origin.X + file*squareSize + squareSize/2 - 3
		y := origin.Y + boardSize + 16
		drawLabel(img, face, label, x, y)
	}
	for rank := 0; rank < boardSquares; rank++ {
		label := string(rune('1' + rank))
		x := origin.X - 16
		y := origin.Y + (boardSquares-1-rank)*squareSize + squareSize/2 + 4
		drawLabel(img, face, label, x, y)
	}
}

func drawLabel(img *image.RGBA, face font.Face, text string, x, y int) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(labelColor),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
