// Package search implements iterative-deepening negamax with a lock-free
// transposition table, quiescence, and cooperative time control.
package search

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/itotallyrock/thermite/internal/board"
	"github.com/itotallyrock/thermite/internal/eval"
)

// Result is the outcome of a search: the move to play, its score from the
// mover's perspective, the deepest fully completed iteration, total nodes,
// and the principal variation. BestMove is NoMove only when the root
// position has no legal moves.
type Result struct {
	BestMove board.Move
	Score    int32
	Depth    int
	Nodes    uint64
	PV       []board.Move
}

// Iteration is a progress snapshot emitted after each completed depth.
type Iteration struct {
	Depth int
	Score int32
	Nodes uint64
	Time  time.Duration
	PV    []board.Move
}

// Progress receives iteration snapshots during a search. Callbacks run on
// the searching goroutine and should return quickly.
type Progress func(Iteration)

// Searcher runs searches against a shared transposition table. One search
// at a time per Searcher; Stop may be called from any goroutine.
type Searcher struct {
	tt   *Table
	eval eval.Evaluator

	stop atomic.Bool

	pos        *board.Position
	ctx        context.Context
	nodes      uint64
	nodeCap    uint64
	deadline   time.Time
	timed      bool
	halted     bool
	haveResult bool

	killers [MaxPly + 1][2]board.Move
	history [2][64][64]int32
	pv      pvTable
}

// pvTable collects the principal variation triangularly: each ply's line is
// its best move followed by the line of the ply below.
type pvTable struct {
	line [MaxPly + 1][MaxPly + 1]board.Move
	size [MaxPly + 1]int
}

func (t *pvTable) clear(ply int) { t.size[ply] = 0 }

func (t *pvTable) extend(ply int, m board.Move) {
	t.line[ply][0] = m
	copy(t.line[ply][1:], t.line[ply+1][:t.size[ply+1]])
	t.size[ply] = t.size[ply+1] + 1
}

// NewSearcher builds a searcher. A nil table disables caching; a nil
// evaluator selects the classical one.
func NewSearcher(tt *Table, ev eval.Evaluator) *Searcher {
	if ev == nil {
		ev = eval.Classical{}
	}
	return &Searcher{tt: tt, eval: ev}
}

// Stop asks the running search to halt at its next node-count check. The
// search still returns its last completed iteration.
func (s *Searcher) Stop() { s.stop.Store(true) }

// Search runs iterative deepening on p within limits. The position is
// mutated during the search and restored before returning. The first
// iteration always completes, so a playable move comes back even under a
// hopeless deadline; afterwards the search halts cooperatively on the
// deadline, node cap, Stop, or context cancellation, discarding any
// half-finished iteration.
func (s *Searcher) Search(ctx context.Context, p *board.Position, limits Limits, progress Progress) Result {
	s.pos = p
	s.ctx = ctx
	s.nodes = 0
	s.nodeCap = limits.Nodes
	s.halted = false
	s.haveResult = false
	s.stop.Store(false)
	s.killers = [MaxPly + 1][2]board.Move{}
	s.history = [2][64][64]int32{}

	start := time.Now()
	if d, ok := limits.budget(p.SideToMove()); ok {
		s.deadline = start.Add(d)
		s.timed = true
	} else {
		s.timed = false
	}
	s.tt.NewGeneration()

	var rootMoves board.MoveList
	p.LegalMoves(&rootMoves)
	if rootMoves.Len == 0 {
		score := drawScore
		if p.InCheck(p.SideToMove()) {
			score = -Mate
		}
		return Result{Score: score}
	}

	maxDepth := limits.Depth
	if maxDepth <= 0 || maxDepth > MaxPly {
		maxDepth = MaxPly
	}

	var res Result
	var prev int32
	for depth := 1; depth <= maxDepth; depth++ {
		score := s.aspirate(depth, prev)
		if s.halted {
			break
		}
		prev = score
		res = Result{
			BestMove: s.pv.line[0][0],
			Score:    score,
			Depth:    depth,
			Nodes:    s.nodes,
			PV:       append([]board.Move(nil), s.pv.line[0][:s.pv.size[0]]...),
		}
		s.haveResult = true
		if progress != nil {
			progress(Iteration{Depth: depth, Score: score, Nodes: s.nodes, Time: time.Since(start), PV: res.PV})
		}

		// A found mate cannot improve once the iteration is deep enough
		// to contain it.
		if IsMateScore(score) && int(Mate-abs32(score)) <= depth {
			break
		}
		// No point starting an iteration that cannot finish.
		if s.timed && time.Since(start) >= s.deadline.Sub(start)/2 {
			break
		}
		if s.nodeCap > 0 && s.nodes >= s.nodeCap {
			break
		}
	}
	res.Nodes = s.nodes
	return res
}

// aspirate searches depth with a window around the previous iteration's
// score, doubling the failed side on each miss and snapping to the full
// window near mate scores.
func (s *Searcher) aspirate(depth int, prev int32) int32 {
	alpha, beta := -Infinite, Infinite
	window := aspirationWindow
	if depth >= aspirationMinDepth {
		alpha, beta = prev-window, prev+window
	}
	for {
		if alpha < -mateThreshold {
			alpha = -Infinite
		}
		if beta > mateThreshold {
			beta = Infinite
		}
		score := s.negamax(depth, 0, alpha, beta, true)
		if s.halted {
			return 0
		}
		switch {
		case score <= alpha:
			window *= 2
			alpha = score - window
		case score >= beta:
			window *= 2
			beta = score + window
		default:
			return score
		}
	}
}

// checkAbort counts the node and polls the halt conditions at the check
// interval. The first iteration is exempt so a result always exists.
func (s *Searcher) checkAbort() bool {
	if s.halted {
		return true
	}
	s.nodes++
	if !s.haveResult || s.nodes&(nodeCheckInterval-1) != 0 {
		return s.halted
	}
	switch {
	case s.stop.Load():
		s.halted = true
	case s.nodeCap > 0 && s.nodes >= s.nodeCap:
		s.halted = true
	case s.timed && time.Now().After(s.deadline):
		s.halted = true
	case s.ctx != nil && s.ctx.Err() != nil:
		s.halted = true
	}
	return s.halted
}

func (s *Searcher) negamax(depth, ply int, alpha, beta int32, nullOK bool) int32 {
	if s.checkAbort() {
		return 0
	}
	p := s.pos
	s.pv.clear(ply)

	isRoot := ply == 0
	if !isRoot && p.IsDraw() {
		return drawScore
	}
	if ply >= MaxPly {
		return s.eval.Evaluate(p)
	}

	inCheck := p.InCheck(p.SideToMove())
	if inCheck {
		depth++
	}
	if depth <= 0 {
		return s.quiesce(ply, 0, alpha, beta)
	}

	ttMove := board.NoMove
	if e, ok := s.tt.Probe(p.Key(), ply); ok {
		ttMove = e.Move
		if !isRoot && e.Depth >= depth {
			switch e.Bound {
			case BoundExact:
				return e.Score
			case BoundLower:
				if e.Score >= beta {
					return e.Score
				}
			case BoundUpper:
				if e.Score <= alpha {
					return e.Score
				}
			}
		}
	}

	if nullOK && !inCheck && depth >= nullMoveMinDepth && p.HasNonPawnMaterial(p.SideToMove()) {
		p.MakeNullMove()
		score := -s.negamax(depth-1-nullMoveReduction, ply+1, -beta, -beta+1, false)
		p.UnmakeNullMove()
		if s.halted {
			return 0
		}
		if score >= beta {
			if IsMateScore(score) {
				score = beta // zugzwang could refute an unproven mate
			}
			return score
		}
	}

	var list board.MoveList
	p.LegalMoves(&list)
	if list.Len == 0 {
		if inCheck {
			return -Mate + int32(ply)
		}
		return drawScore
	}

	var scores [board.MaxMoves]int32
	s.scoreMoves(&list, &scores, ttMove, ply)

	best := -Infinite
	bestMove := board.NoMove
	bound := BoundUpper
	for i := 0; i < list.Len; i++ {
		m := pickMove(&list, &scores, i)
		quiet := !m.IsCapture() && !m.IsPromotion()

		p.MakeMove(m)
		var score int32
		if i == 0 {
			score = -s.negamax(depth-1, ply+1, -beta, -alpha, true)
		} else {
			reduction := 0
			if quiet && !inCheck && depth >= lmrMinDepth && i >= lmrMoveThreshold &&
				!p.InCheck(p.SideToMove()) {
				reduction = 1
				if i >= 3*lmrMoveThreshold {
					reduction = 2
				}
			}
			score = -s.negamax(depth-1-reduction, ply+1, -(alpha + 1), -alpha, true)
			if score > alpha && reduction > 0 {
				score = -s.negamax(depth-1, ply+1, -(alpha + 1), -alpha, true)
			}
			if score > alpha && score < beta {
				score = -s.negamax(depth-1, ply+1, -beta, -alpha, true)
			}
		}
		p.UnmakeMove()
		if s.halted {
			return 0
		}

		if score > best {
			best = score
			bestMove = m
		}
		if score > alpha {
			alpha = score
			bound = BoundExact
			s.pv.extend(ply, m)
			if alpha >= beta {
				bound = BoundLower
				if quiet {
					s.storeKiller(ply, m)
					s.bumpHistory(p.SideToMove(), m, depth)
				}
				break
			}
		}
	}

	s.tt.Store(p.Key(), bestMove, best, depth, bound, ply)
	return best
}

// quiesce settles tactical noise: captures and queen promotions only, with
// stand-pat pruning, capped at MaxQuiescencePly. In check it searches every
// evasion and can return mate scores.
func (s *Searcher) quiesce(ply, qdepth int, alpha, beta int32) int32 {
	if s.checkAbort() {
		return 0
	}
	p := s.pos
	s.pv.clear(ply)
	if p.IsDraw() {
		return drawScore
	}
	if ply >= MaxPly {
		return s.eval.Evaluate(p)
	}

	inCheck := p.InCheck(p.SideToMove())
	best := -Infinite
	if !inCheck {
		best = s.eval.Evaluate(p)
		if best >= beta {
			return best
		}
		if best > alpha {
			alpha = best
		}
		if qdepth >= MaxQuiescencePly {
			return best
		}
	}

	var list board.MoveList
	p.NoisyMoves(&list)
	if list.Len == 0 {
		if inCheck {
			return -Mate + int32(ply)
		}
		return best
	}

	var scores [board.MaxMoves]int32
	s.scoreMoves(&list, &scores, board.NoMove, ply)

	for i := 0; i < list.Len; i++ {
		m := pickMove(&list, &scores, i)
		p.MakeMove(m)
		score := -s.quiesce(ply+1, qdepth+1, -beta, -alpha)
		p.UnmakeMove()
		if s.halted {
			return 0
		}
		if score > best {
			best = score
		}
		if score > alpha {
			alpha = score
			if alpha >= beta {
				break
			}
		}
	}
	return best
}
