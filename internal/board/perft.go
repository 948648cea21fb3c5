package board

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Perft counts the legal move sequences of the given depth. Leaves are
// bulk-counted from the generated list; every interior node goes through
// MakeMove/UnmakeMove, so the full generation and mutation machinery is
// exercised.
func (p *Position) Perft(depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	var list MoveList
	p.LegalMoves(&list)
	if depth == 1 {
		return uint64(list.Len)
	}
	var nodes uint64
	for i := 0; i < list.Len; i++ {
		p.MakeMove(list.Moves[i])
		nodes += p.Perft(depth - 1)
		p.UnmakeMove()
	}
	return nodes
}

// DivideEntry is one root move's subtree count.
type DivideEntry struct {
	Move  Move
	Nodes uint64
}

// Divide returns per-root-move perft counts, sorted by move string. The
// classic debugging view for pinpointing a generation defect.
func (p *Position) Divide(depth int) []DivideEntry {
	var list MoveList
	p.LegalMoves(&list)
	entries := make([]DivideEntry, 0, list.Len)
	for i := 0; i < list.Len; i++ {
		m := list.Moves[i]
		p.MakeMove(m)
		entries = append(entries, DivideEntry{Move: m, Nodes: p.Perft(depth - 1)})
		p.UnmakeMove()
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Move.UCI() < entries[j].Move.UCI()
	})
	return entries
}

// ParallelPerft splits the root moves across workers, each on its own copy
// of the position. Counts match Perft exactly.
func (p *Position) ParallelPerft(ctx context.Context, depth, workers int) (uint64, error) {
	if depth <= 1 || workers <= 1 {
		return p.Perft(depth), nil
	}

	var list MoveList
	p.LegalMoves(&list)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	counts := make([]uint64, list.Len)
	for i := 0; i < list.Len; i++ {
		m := list.Moves[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c := p.Copy()
			c.MakeMove(m)
			counts[i] = c.Perft(depth - 1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	var nodes uint64
	for _, c := range counts {
		nodes += c
	}
	return nodes, nil
}
