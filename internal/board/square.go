package board

import "fmt"

// Square identifies a board cell, 0-63, rank-major with a1 = 0 (see package
// doc). NoSquare is the sentinel for "no square" (cleared en-passant target).
type Square uint8

// NoSquare is the out-of-band Square value.
const NoSquare Square = 64

// Squares in rank-major order.
const (
	SquareA1 Square = iota
	SquareB1
	SquareC1
	SquareD1
	SquareE1
	SquareF1
	SquareG1
	SquareH1
	SquareA2
	SquareB2
	SquareC2
	SquareD2
	SquareE2
	SquareF2
	SquareG2
	SquareH2
	SquareA3
	SquareB3
	SquareC3
	SquareD3
	SquareE3
	SquareF3
	SquareG3
	SquareH3
	SquareA4
	SquareB4
	SquareC4
	SquareD4
	SquareE4
	SquareF4
	SquareG4
	SquareH4
	SquareA5
	SquareB5
	SquareC5
	SquareD5
	SquareE5
	SquareF5
	SquareG5
	SquareH5
	SquareA6
	SquareB6
	SquareC6
	SquareD6
	SquareE6
	SquareF6
	SquareG6
	SquareH6
	SquareA7
	SquareB7
	SquareC7
	SquareD7
	SquareE7
	SquareF7
	SquareG7
	SquareH7
	SquareA8
	SquareB8
	SquareC8
	SquareD8
	SquareE8
	SquareF8
	SquareG8
	SquareH8
)

// NewSquare builds a Square from file (0=a) and rank (0=1).
func NewSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

// File returns the square's file, 0-7 (0 = a-file).
func (s Square) File() int { return int(s) & 7 }

// Rank returns the square's rank, 0-7 (0 = first rank).
func (s Square) Rank() int { return int(s) >> 3 }

// Bitboard returns the single-bit board for the square.
func (s Square) Bitboard() Bitboard { return 1 << s }

// Flip mirrors the square vertically (a1 <-> a8). Used for piece-square
// table indexing.
func (s Square) Flip() Square { return s ^ 56 }

// String returns the square in algebraic form ("e4"), or "-" for NoSquare.
func (s Square) String() string {
	if s == NoSquare {
		return "-"
	}
	return string([]byte{byte('a' + s.File()), byte('1' + s.Rank())})
}

// ParseSquare parses an algebraic square name ("e4").
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoSquare, fmt.Errorf("invalid square %q", s)
	}
	return NewSquare(int(s[0]-'a'), int(s[1]-'1')), nil
}
