package search

import "github.com/itotallyrock/thermite/internal/board"

// Ordering buckets, highest first: the table move, then captures and queen
// promotions by most-valuable-victim least-valuable-attacker, then killer
// moves, then quiet history. Good ordering is what makes the alpha-beta
// window cut; none of this changes which move is ultimately chosen.
const (
	scoreTTMove  int32 = 1 << 30
	scoreCapture int32 = 1 << 26
	scoreKiller  int32 = 1 << 25
)

var victimValue = [6]int32{100, 320, 330, 500, 900, 0}

func (s *Searcher) scoreMoves(list *board.MoveList, scores *[board.MaxMoves]int32, ttMove board.Move, ply int) {
	p := s.pos
	side := p.SideToMove()
	for i := 0; i < list.Len; i++ {
		m := list.Moves[i]
		var sc int32
		switch {
		case m == ttMove:
			sc = scoreTTMove
		case m.IsCapture():
			victim := board.Pawn
			if m.Kind() != board.EnPassant {
				victim = p.PieceAt(m.To()).Type()
			}
			attacker := p.PieceAt(m.From()).Type()
			sc = scoreCapture + victimValue[victim]*8 - int32(attacker)
			if m.Promotion() == board.Queen {
				sc += victimValue[board.Queen] * 8
			}
		case m.Kind() == board.PromoQueen:
			sc = scoreCapture + victimValue[board.Queen]*8
		case m == s.killers[ply][0]:
			sc = scoreKiller
		case m == s.killers[ply][1]:
			sc = scoreKiller - 1
		default:
			sc = s.history[side][m.From()][m.To()]
		}
		scores[i] = sc
	}
}

// pickMove selection-sorts the i-th best move into place and returns it.
// Sorting lazily wins when a cutoff ends the loop early.
func pickMove(list *board.MoveList, scores *[board.MaxMoves]int32, i int) board.Move {
	best := i
	for j := i + 1; j < list.Len; j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	list.Moves[i], list.Moves[best] = list.Moves[best], list.Moves[i]
	scores[i], scores[best] = scores[best], scores[i]
	return list.Moves[i]
}

func (s *Searcher) storeKiller(ply int, m board.Move) {
	if s.killers[ply][0] != m {
		s.killers[ply][1] = s.killers[ply][0]
		s.killers[ply][0] = m
	}
}

// bumpHistory credits a quiet move that caused a beta cutoff. The whole
// table is halved when any counter hits the cap, preserving relative order
// while preventing overflow.
func (s *Searcher) bumpHistory(side board.Color, m board.Move, depth int) {
	h := &s.history[side][m.From()][m.To()]
	*h += int32(depth * depth)
	if *h >= historyCap {
		for c := range s.history {
			for f := range s.history[c] {
				for t := range s.history[c][f] {
					s.history[c][f][t] /= 2
				}
			}
		}
	}
}
