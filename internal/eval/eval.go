// Package eval scores chess positions in centipawns from the side to
// move's perspective: positive favors the player whose turn it is. The
// search treats evaluators as plain plug-in values, so alternative scoring
// schemes drop in without touching the tree walk.
package eval

import "github.com/itotallyrock/thermite/internal/board"

// An Evaluator assigns a centipawn score to a position, relative to the
// side to move. Implementations must be deterministic and side-symmetric:
// mirroring the board and swapping colors yields the same score.
type Evaluator interface {
	Evaluate(p *board.Position) int32
}
