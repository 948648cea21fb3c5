package eval

import "github.com/itotallyrock/thermite/internal/board"

// Classical is a tapered material and piece-square evaluator. Midgame and
// endgame scores are blended by remaining piece material, so king safety
// dominates early and king activity late.
type Classical struct{}

const phaseTotal = 24

// phaseWeight maps piece types to their share of the game phase. The
// starting position sums to exactly phaseTotal; promotions are clamped.
var phaseWeight = [6]int{0, 1, 1, 2, 4, 0}

var (
	pieceValueMG = [6]int{100, 320, 330, 500, 900, 0}
	pieceValueEG = [6]int{120, 300, 320, 550, 950, 0}
)

const (
	bishopPairMG = 30
	bishopPairEG = 40
)

// Piece-square tables from white's point of view, written with rank 8 on
// the first row so they read like a board. White pieces index with the
// square flipped, black pieces directly.
var pstMG = [6][64]int{
	board.Pawn: {
		0, 0, 0, 0, 0, 0, 0, 0,
		50, 50, 50, 50, 50, 50, 50, 50,
		10, 10, 20, 30, 30, 20, 10, 10,
		5, 5, 10, 25, 25, 10, 5, 5,
		0, 0, 0, 20, 20, 0, 0, 0,
		5, -5, -10, 0, 0, -10, -5, 5,
		5, 10, 10, -20, -20, 10, 10, 5,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	board.Knight: {
		-50, -40, -30, -30, -30, -30, -40, -50,
		-40, -20, 0, 0, 0, 0, -20, -40,
		-30, 0, 10, 15, 15, 10, 0, -30,
		-30, 5, 15, 20, 20, 15, 5, -30,
		-30, 0, 15, 20, 20, 15, 0, -30,
		-30, 5, 10, 15, 15, 10, 5, -30,
		-40, -20, 0, 5, 5, 0, -20, -40,
		-50, -40, -30, -30, -30, -30, -40, -50,
	},
	board.Bishop: {
		-20, -10, -10, -10, -10, -10, -10, -20,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-10, 0, 5, 10, 10, 5, 0, -10,
		-10, 5, 5, 10, 10, 5, 5, -10,
		-10, 0, 10, 10, 10, 10, 0, -10,
		-10, 10, 10, 10, 10, 10, 10, -10,
		-10, 5, 0, 0, 0, 0, 5, -10,
		-20, -10, -10, -10, -10, -10, -10, -20,
	},
	board.Rook: {
		0, 0, 0, 0, 0, 0, 0, 0,
		5, 10, 10, 10, 10, 10, 10, 5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		0, 0, 0, 5, 5, 0, 0, 0,
	},
	board.Queen: {
		-20, -10, -10, -5, -5, -10, -10, -20,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-10, 0, 5, 5, 5, 5, 0, -10,
		-5, 0, 5, 5, 5, 5, 0, -5,
		0, 0, 5, 5, 5, 5, 0, -5,
		-10, 5, 5, 5, 5, 5, 0, -10,
		-10, 0, 5, 0, 0, 0, 0, -10,
		-20, -10, -10, -5, -5, -10, -10, -20,
	},
	board.King: {
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-20, -30, -30, -40, -40, -30, -30, -20,
		-10, -20, -20, -20, -20, -20, -20, -10,
		20, 20, 0, 0, 0, 0, 20, 20,
		20, 30, 10, 0, 0, 10, 30, 20,
	},
}

var pstEG = [6][64]int{
	board.Pawn: {
		0, 0, 0, 0, 0, 0, 0, 0,
		80, 80, 80, 80, 80, 80, 80, 80,
		50, 50, 50, 50, 50, 50, 50, 50,
		30, 30, 30, 30, 30, 30, 30, 30,
		15, 15, 15, 15, 15, 15, 15, 15,
		5, 5, 5, 5, 5, 5, 5, 5,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	board.King: {
		-50, -40, -30, -20, -20, -30, -40, -50,
		-30, -20, -10, 0, 0, -10, -20, -30,
		-30, -10, 20, 30, 30, 20, -10, -30,
		-30, -10, 30, 40, 40, 30, -10, -30,
		-30, -10, 30, 40, 40, 30, -10, -30,
		-30, -10, 20, 30, 30, 20, -10, -30,
		-30, -30, 0, 0, 0, 0, -30, -30,
		-50, -30, -30, -30, -30, -30, -30, -50,
	},
}

// The minor and major piece shapes hold up across phases; only pawns and
// kings get their own endgame tables.
func init() {
	pstEG[board.Knight] = pstMG[board.Knight]
	pstEG[board.Bishop] = pstMG[board.Bishop]
	pstEG[board.Rook] = pstMG[board.Rook]
	pstEG[board.Queen] = pstMG[board.Queen]
}

// Evaluate scores p for the side to move.
func (Classical) Evaluate(p *board.Position) int32 {
	var mg, eg, phase int
	for pc := board.WhitePawn; pc <= board.BlackKing; pc++ {
		t := pc.Type()
		sign := 1
		if pc.Color() == board.Black {
			sign = -1
		}
		for bb := p.Pieces(pc); bb != 0; {
			sq := bb.PopFirst()
			idx := sq
			if pc.Color() == board.White {
				idx = sq.Flip()
			}
			phase += phaseWeight[t]
			mg += sign * (pieceValueMG[t] + pstMG[t][idx])
			eg += sign * (pieceValueEG[t] + pstEG[t][idx])
		}
	}

	if p.Pieces(board.WhiteBishop).Count() >= 2 {
		mg += bishopPairMG
		eg += bishopPairEG
	}
	if p.Pieces(board.BlackBishop).Count() >= 2 {
		mg -= bishopPairMG
		eg -= bishopPairEG
	}

	phase = clamp(phase, 0, phaseTotal)
	score := int32(lerp(mg, eg, phase, phaseTotal))
	if p.SideToMove() == board.Black {
		score = -score
	}
	return score
}
