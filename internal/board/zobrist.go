package board

// Zobrist key tables, generated once from a fixed-seed xorshift64* stream so
// keys are stable across runs (opening book files are keyed by them).

var (
	pieceKeys  [12][64]uint64
	castleKeys [16]uint64
	epFileKeys [8]uint64
	sideKey    uint64
)

const zobristSeed = 0xF1DC43494EA476CE

// xorshift64* with the multiplier from Vigna's reference implementation.
type zobristRNG struct {
	state uint64
}

func (r *zobristRNG) next() uint64 {
	r.state ^= r.state >> 12
	r.state ^= r.state << 25
	r.state ^= r.state >> 27
	return r.state * 0x2545F4914F6CDD1D
}

func init() {
	rng := zobristRNG{state: zobristSeed}
	for p := range pieceKeys {
		for sq := range pieceKeys[p] {
			pieceKeys[p][sq] = rng.next()
		}
	}
	for i := range castleKeys {
		castleKeys[i] = rng.next()
	}
	for i := range epFileKeys {
		epFileKeys[i] = rng.next()
	}
	sideKey = rng.next()
}

// RecomputeKey builds the position's zobrist key from scratch. The
// incrementally maintained key must always equal it; make/unmake and the
// tests rely on that equivalence.
func (p *Position) RecomputeKey() uint64 {
	var key uint64
	for pc := WhitePawn; pc <= BlackKing; pc++ {
		for bb := p.byPiece[pc]; bb != 0; {
			key ^= pieceKeys[pc][bb.PopFirst()]
		}
	}
	key ^= castleKeys[p.castling]
	if f := p.capturableEPFile(); f >= 0 {
		key ^= epFileKeys[f]
	}
	if p.side == Black {
		key ^= sideKey
	}
	return key
}

// capturableEPFile returns the en-passant file to fold into the key, or -1.
// The file is hashed only when a side-to-move pawn could actually perform
// the capture; positions that differ only in a dead en-passant right share
// a key.
func (p *Position) capturableEPFile() int8 {
	if p.epSquare == NoSquare {
		return -1
	}
	if PawnAttacks(p.side.Other(), p.epSquare)&p.byPiece[NewPiece(p.side, Pawn)] == 0 {
		return -1
	}
	return int8(p.epSquare.File())
}
