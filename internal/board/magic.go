package board

import (
	"math"

	"lukechampine.com/frand"
)

// Fancy magic bitboards for slider attacks. Multipliers are found at init
// by random trials: a sparse candidate is accepted once every relevant
// occupancy subset maps to a consistent attack set. Table sizes are the
// standard totals for edge-excluded relevance masks.

const (
	rookTableSize   = 0x19000 // 102400
	bishopTableSize = 0x1480  // 5248
)

type magicEntry struct {
	mask   Bitboard
	mul    uint64
	shift  uint8
	offset uint32
}

func (m *magicEntry) index(occ Bitboard) uint32 {
	return m.offset + uint32(uint64(occ&m.mask)*m.mul>>m.shift)
}

var (
	rookMagics        [64]magicEntry
	bishopMagics      [64]magicEntry
	rookAttackTable   [rookTableSize]Bitboard
	bishopAttackTable [bishopTableSize]Bitboard
)

func initMagics() {
	fillMagics(rookMagics[:], rookAttackTable[:], rookDeltas)
	fillMagics(bishopMagics[:], bishopAttackTable[:], bishopDeltas)
}

func fillMagics(magics []magicEntry, table []Bitboard, deltas [4][2]int) {
	offset := uint32(0)
	for sq := Square(0); sq < 64; sq++ {
		mask := relevanceMask(sq, deltas)
		bitCount := mask.Count()

		// Enumerate every occupancy subset of the mask (Carry-Rippler)
		// together with its ray-walked attack set.
		size := 1 << bitCount
		subsets := make([]Bitboard, 0, size)
		attacks := make([]Bitboard, 0, size)
		for sub := Bitboard(0); ; {
			subsets = append(subsets, sub)
			attacks = append(attacks, slidingAttacks(sq, sub, deltas))
			sub = (sub - mask) & mask
			if sub == 0 {
				break
			}
		}

		m := magicEntry{
			mask:   mask,
			mul:    findMagic(subsets, attacks, bitCount, table[offset:offset+uint32(size)]),
			shift:  uint8(64 - bitCount),
			offset: offset,
		}
		magics[sq] = m
		offset += uint32(size)
	}
}

// findMagic searches for a multiplier that maps every subset to a slot whose
// attack set is consistent, then fills the final table segment.
func findMagic(subsets, attacks []Bitboard, bitCount int, segment []Bitboard) uint64 {
	shift := uint(64 - bitCount)
	used := make([]Bitboard, len(segment))
	epochs := make([]uint32, len(segment))
	epoch := uint32(0)

	for {
		// Sparse candidates converge far faster than uniform ones.
		mul := frand.Uint64n(math.MaxUint64) & frand.Uint64n(math.MaxUint64) & frand.Uint64n(math.MaxUint64)
		epoch++
		ok := true
		for i, sub := range subsets {
			idx := uint64(sub) * mul >> shift
			if epochs[idx] != epoch {
				epochs[idx] = epoch
				used[idx] = attacks[i]
			} else if used[idx] != attacks[i] {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		for i, sub := range subsets {
			segment[uint64(sub)*mul>>shift] = attacks[i]
		}
		return mul
	}
}

// relevanceMask is the slider's attack set on an empty board minus ray
// terminal squares; occupancy on a ray's last square never changes the
// attack set, so excluding it keeps the tables small.
func relevanceMask(sq Square, deltas [4][2]int) Bitboard {
	return slidingAttacks(sq, 0, deltas) &^ edgeMask(sq)
}

// edgeMask returns the board-edge squares to exclude from relevance masks.
// The edge ranks/files containing sq itself stay relevant: rays running
// along them still have interior blockers there.
func edgeMask(sq Square) Bitboard {
	var edges Bitboard
	if sq.Rank() != 0 {
		edges |= Rank1
	}
	if sq.Rank() != 7 {
		edges |= Rank8
	}
	if sq.File() != 0 {
		edges |= FileA
	}
	if sq.File() != 7 {
		edges |= FileH
	}
	return edges
}
