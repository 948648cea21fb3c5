package search

import (
	"time"

	"github.com/itotallyrock/thermite/internal/board"
)

// Limits bounds a search. Zero values mean unlimited; Infinite overrides
// the clock fields so the search only ends on Stop or context cancel.
type Limits struct {
	Depth     int
	Nodes     uint64
	MoveTime  time.Duration
	WhiteTime time.Duration
	BlackTime time.Duration
	WhiteInc  time.Duration
	BlackInc  time.Duration
	MovesToGo int
	Infinite  bool
}

const (
	defaultMovesToGo = 30

	// moveOverhead covers transport latency so the engine flags a little
	// early rather than a little late.
	moveOverhead = 15 * time.Millisecond
)

// budget derives the time allowance for one move. The second return is
// false for untimed searches.
func (l Limits) budget(side board.Color) (time.Duration, bool) {
	if l.Infinite {
		return 0, false
	}
	if l.MoveTime > 0 {
		alloc := l.MoveTime - moveOverhead
		if alloc < time.Millisecond {
			alloc = time.Millisecond
		}
		return alloc, true
	}

	remaining, inc := l.WhiteTime, l.WhiteInc
	if side == board.Black {
		remaining, inc = l.BlackTime, l.BlackInc
	}
	if remaining <= 0 {
		return 0, false
	}

	mtg := l.MovesToGo
	if mtg <= 0 {
		mtg = defaultMovesToGo
	}
	alloc := remaining/time.Duration(mtg) + inc/2 - moveOverhead
	if cap := remaining / 2; alloc > cap {
		alloc = cap
	}
	if alloc < time.Millisecond {
		alloc = time.Millisecond
	}
	return alloc, true
}
