package board

// Precomputed leaper attacks and line geometry. All built once at package
// init, after which lookups are branch-free.

var (
	knightAttackTable [64]Bitboard
	kingAttackTable   [64]Bitboard
	pawnAttackTable   [2][64]Bitboard

	// betweenTable[a][b] holds the squares strictly between a and b when
	// they share a rank, file, or diagonal, else 0.
	betweenTable [64][64]Bitboard
	// lineTable[a][b] holds the full line through a and b (both included)
	// when aligned, else 0.
	lineTable [64][64]Bitboard
)

var (
	rookDeltas   = [4][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	bishopDeltas = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

func init() {
	initLeaperTables()
	initLineTables()
	initMagics()
}

// KnightAttacks returns the squares a knight on sq attacks.
func KnightAttacks(sq Square) Bitboard { return knightAttackTable[sq] }

// KingAttacks returns the squares a king on sq attacks.
func KingAttacks(sq Square) Bitboard { return kingAttackTable[sq] }

// PawnAttacks returns the squares a pawn of color c on sq attacks.
func PawnAttacks(c Color, sq Square) Bitboard { return pawnAttackTable[c][sq] }

// Between returns the squares strictly between a and b when aligned, else 0.
func Between(a, b Square) Bitboard { return betweenTable[a][b] }

// Line returns the full line through a and b (inclusive) when aligned,
// else 0.
func Line(a, b Square) Bitboard { return lineTable[a][b] }

// RookAttacks returns rook attacks from sq given the occupancy.
func RookAttacks(sq Square, occ Bitboard) Bitboard {
	m := &rookMagics[sq]
	return rookAttackTable[m.index(occ)]
}

// BishopAttacks returns bishop attacks from sq given the occupancy.
func BishopAttacks(sq Square, occ Bitboard) Bitboard {
	m := &bishopMagics[sq]
	return bishopAttackTable[m.index(occ)]
}

// QueenAttacks returns queen attacks from sq given the occupancy.
func QueenAttacks(sq Square, occ Bitboard) Bitboard {
	return RookAttacks(sq, occ) | BishopAttacks(sq, occ)
}

func initLeaperTables() {
	knightSteps := [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps := [8][2]int{{0, 1}, {1, 1}, {1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1}}

	for sq := Square(0); sq < 64; sq++ {
		file, rank := sq.File(), sq.Rank()
		for _, d := range knightSteps {
			if f, r := file+d[0], rank+d[1]; f >= 0 && f < 8 && r >= 0 && r < 8 {
				knightAttackTable[sq] |= NewSquare(f, r).Bitboard()
			}
		}
		for _, d := range kingSteps {
			if f, r := file+d[0], rank+d[1]; f >= 0 && f < 8 && r >= 0 && r < 8 {
				kingAttackTable[sq] |= NewSquare(f, r).Bitboard()
			}
		}
		bb := sq.Bitboard()
		pawnAttackTable[White][sq] = bb.NorthEast() | bb.NorthWest()
		pawnAttackTable[Black][sq] = bb.SouthEast() | bb.SouthWest()
	}
}

func initLineTables() {
	allDeltas := append(rookDeltas[:], bishopDeltas[:]...)
	for a := Square(0); a < 64; a++ {
		for _, d := range allDeltas {
			ray := walkRay(a, d, 0)
			for to := ray; to != 0; {
				b := to.PopFirst()
				betweenTable[a][b] = walkRay(a, d, b.Bitboard()) &^ b.Bitboard()
				lineTable[a][b] = ray | walkRay(a, [2]int{-d[0], -d[1]}, 0) | a.Bitboard()
			}
		}
	}
}

// walkRay accumulates squares stepping from sq by delta until the edge,
// including the first blocker and stopping there.
func walkRay(sq Square, delta [2]int, blockers Bitboard) Bitboard {
	var out Bitboard
	file, rank := sq.File(), sq.Rank()
	for {
		file += delta[0]
		rank += delta[1]
		if file < 0 || file > 7 || rank < 0 || rank > 7 {
			return out
		}
		s := NewSquare(file, rank)
		out |= s.Bitboard()
		if blockers.Has(s) {
			return out
		}
	}
}

// slidingAttacks computes slider attacks by ray walking. Used to build and
// verify the magic tables; lookups use RookAttacks/BishopAttacks instead.
func slidingAttacks(sq Square, occ Bitboard, deltas [4][2]int) Bitboard {
	var out Bitboard
	for _, d := range deltas {
		out |= walkRay(sq, d, occ)
	}
	return out
}
