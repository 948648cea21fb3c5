package board

import (
	"math/bits"
	"strings"
)

// Bitboard is a 64-bit set of squares, bit i <-> square i.
type Bitboard uint64

// File and rank masks.
const (
	FileA Bitboard = 0x0101010101010101 << iota
	FileB
	FileC
	FileD
	FileE
	FileF
	FileG
	FileH
)

const (
	Rank1 Bitboard = 0xFF << (8 * iota)
	Rank2
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
)

// Count returns the number of set squares.
func (b Bitboard) Count() int { return bits.OnesCount64(uint64(b)) }

// First returns the lowest set square. Undefined on an empty board; callers
// must check emptiness first.
func (b Bitboard) First() Square { return Square(bits.TrailingZeros64(uint64(b))) }

// PopFirst removes and returns the lowest set square. Consuming iteration:
//
//	for bb != 0 {
//		sq := bb.PopFirst()
//	}
func (b *Bitboard) PopFirst() Square {
	sq := b.First()
	*b &= *b - 1
	return sq
}

// Has reports whether the square is a member.
func (b Bitboard) Has(s Square) bool { return b&s.Bitboard() != 0 }

// Directional shifts with off-board file masking. North is toward rank 8.

func (b Bitboard) North() Bitboard { return b << 8 }
func (b Bitboard) South() Bitboard { return b >> 8 }
func (b Bitboard) East() Bitboard  { return (b &^ FileH) << 1 }
func (b Bitboard) West() Bitboard  { return (b &^ FileA) >> 1 }

func (b Bitboard) NorthEast() Bitboard { return (b &^ FileH) << 9 }
func (b Bitboard) NorthWest() Bitboard { return (b &^ FileA) << 7 }
func (b Bitboard) SouthEast() Bitboard { return (b &^ FileH) >> 7 }
func (b Bitboard) SouthWest() Bitboard { return (b &^ FileA) >> 9 }

// String renders the board rank 8 first, 'x' for set squares. Debug aid.
func (b Bitboard) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		for file := 0; file < 8; file++ {
			if b.Has(NewSquare(file, rank)) {
				sb.WriteByte('x')
			} else {
				sb.WriteByte('.')
			}
			if file < 7 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
