package search

const (
	// MaxPly bounds the depth of the search stack and the length of any
	// principal variation.
	MaxPly = 128

	// MaxQuiescencePly caps how far quiescence runs past the nominal
	// horizon when not in check.
	MaxQuiescencePly = 8

	// Infinite bounds every reachable score; window endpoints start here.
	Infinite int32 = 32000

	// Mate is the score for delivering mate this ply. A mate at ply n
	// scores Mate-n, so shorter mates order first.
	Mate int32 = 31000

	// mateThreshold separates mate scores from positional ones.
	mateThreshold = Mate - MaxPly

	drawScore int32 = 0

	// nodeCheckInterval is how many nodes pass between deadline, node
	// limit, stop flag, and context checks. Power of two.
	nodeCheckInterval = 2048

	aspirationMinDepth = 4
	aspirationWindow   = int32(50)

	nullMoveMinDepth  = 3
	nullMoveReduction = 2

	lmrMinDepth      = 3
	lmrMoveThreshold = 4

	historyCap = 1 << 14
)

// IsMateScore reports whether s encodes a forced mate rather than a
// positional evaluation.
func IsMateScore(s int32) bool {
	return s > mateThreshold || s < -mateThreshold
}

// MateIn converts a mate score into signed full moves: positive when the
// side to move mates, negative when it is being mated.
func MateIn(s int32) int {
	if s > 0 {
		return (int(Mate-s) + 1) / 2
	}
	return -(int(Mate+s) + 1) / 2
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
