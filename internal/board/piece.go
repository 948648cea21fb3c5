package board

import "fmt"

// Color of a side, White = 0.
type Color uint8

const (
	White Color = iota
	Black
)

// Other returns the opposing color.
func (c Color) Other() Color { return c ^ 1 }

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// PieceType is a colorless piece kind.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType
)

// Piece combines a PieceType and Color and indexes the position's twelve
// piece bitboards (white pieces 0-5, black 6-11).
type Piece uint8

const (
	WhitePawn Piece = iota
	WhiteKnight
	WhiteBishop
	WhiteRook
	WhiteQueen
	WhiteKing
	BlackPawn
	BlackKnight
	BlackBishop
	BlackRook
	BlackQueen
	BlackKing
	NoPiece
)

// NewPiece builds a Piece from color and type.
func NewPiece(c Color, t PieceType) Piece {
	return Piece(uint8(c)*6 + uint8(t))
}

// Color returns the piece's color. Undefined for NoPiece.
func (p Piece) Color() Color { return Color(p / 6) }

// Type returns the piece's colorless kind, or NoPieceType for NoPiece.
func (p Piece) Type() PieceType {
	if p == NoPiece {
		return NoPieceType
	}
	return PieceType(p % 6)
}

var pieceChars = [12]byte{'P', 'N', 'B', 'R', 'Q', 'K', 'p', 'n', 'b', 'r', 'q', 'k'}

// FENChar returns the piece's FEN letter (uppercase white, lowercase black).
func (p Piece) FENChar() byte {
	return pieceChars[p]
}

func (p Piece) String() string {
	if p == NoPiece {
		return "-"
	}
	return string(pieceChars[p])
}

// ParsePieceFEN maps a FEN letter to a Piece.
func ParsePieceFEN(c byte) (Piece, error) {
	for i, pc := range pieceChars {
		if pc == c {
			return Piece(i), nil
		}
	}
	return NoPiece, fmt.Errorf("invalid piece character %q", c)
}

// promotionChars maps a promotion PieceType to its UCI letter.
var promotionChars = map[PieceType]byte{Knight: 'n', Bishop: 'b', Rook: 'r', Queen: 'q'}
