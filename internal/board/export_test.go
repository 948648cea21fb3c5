// Export internal functions for testing
package board

// SlidingAttacksSlow exports slidingAttacks for verifying the magic tables
// against plain ray walks.
func SlidingAttacksSlow(sq Square, occ Bitboard, rook bool) Bitboard {
	if rook {
		return slidingAttacks(sq, occ, rookDeltas)
	}
	return slidingAttacks(sq, occ, bishopDeltas)
}

// PinnedPiecesForTest exports pinnedPieces.
func PinnedPiecesForTest(p *Position, c Color) Bitboard {
	return p.pinnedPieces(c, p.KingSquare(c))
}
