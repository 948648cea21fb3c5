package board

// MaxMoves bounds the number of legal moves in any reachable position (the
// known maximum is 218).
const MaxMoves = 256

// MoveList is a fixed-capacity move container filled by generation and
// consumed by the search. No per-node heap allocation.
type MoveList struct {
	Moves [MaxMoves]Move
	Len   int
}

// Add appends a move.
func (l *MoveList) Add(m Move) {
	l.Moves[l.Len] = m
	l.Len++
}

// Clear resets the list for reuse.
func (l *MoveList) Clear() { l.Len = 0 }

// Slice returns the filled portion of the list, valid until the next Add or
// Clear.
func (l *MoveList) Slice() []Move { return l.Moves[:l.Len] }

// Contains reports whether m is in the list.
func (l *MoveList) Contains(m Move) bool {
	for i := 0; i < l.Len; i++ {
		if l.Moves[i] == m {
			return true
		}
	}
	return false
}
