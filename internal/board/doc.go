// Package board implements the chess position model: bitboards, squares,
// moves, attack tables, make/unmake, zobrist hashing, FEN, and a strictly
// legal move generator.
//
// Square ordering is rank-major with a1 = 0, b1 = 1, ..., h1 = 7, a2 = 8,
// up to h8 = 63 (file = sq&7, rank = sq>>3). Bit i of a Bitboard is set iff
// square i is a member. Every attack table and shift in this package depends
// on this ordering; it is fixed.
//
// Position is mutated in place: MakeMove pushes an undo record and
// UnmakeMove pops it, composing to identity bit-for-bit including the
// zobrist key. Moves applied to a Position must come from its own legal
// move list; applying anything else is undefined.
//
// Attack tables:
//   - Knight/king: precomputed 64-entry lookups
//   - Pawns: per-color 64-entry capture lookups, shift-generated pushes
//   - Sliders: fancy magic bitboards, multipliers found at init by random
//     trials (rook table 102400 entries, bishop table 5248)
//   - Between/Line tables for pin and check-block computation
package board
