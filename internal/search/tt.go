package search

import (
	"math/bits"
	"sync/atomic"

	"github.com/itotallyrock/thermite/internal/board"
)

// Bound classifies a cached score relative to the window that produced it.
type Bound uint8

const (
	BoundNone  Bound = iota
	BoundUpper       // fail low: true score is at most Score
	BoundLower       // fail high: true score is at least Score
	BoundExact
)

// Entry is a decoded transposition table hit. Score is already adjusted to
// the probing ply for mate distances.
type Entry struct {
	Move  board.Move
	Score int32
	Depth int
	Bound Bound
}

const slotSize = 16

// A slot holds one packed entry as two words: data carries move, score,
// depth, bound, and generation; check is the position key XORed with data.
// A reader that sees a torn pair fails the XOR test and treats the slot as
// empty, so concurrent probes and stores need no lock.
type slot struct {
	check uint64
	data  uint64
}

// Table is a fixed-capacity transposition table. A nil *Table is valid and
// behaves as an always-miss table, which is how table-less searches run.
type Table struct {
	slots []slot
	mask  uint64
	gen   uint64
}

// NewTable allocates a table of at most the given size in megabytes,
// rounded down to a power-of-two slot count.
func NewTable(megabytes int) *Table {
	if megabytes < 1 {
		megabytes = 1
	}
	n := uint64(megabytes) << 20 / slotSize
	n = 1 << (bits.Len64(n) - 1)
	return &Table{slots: make([]slot, n), mask: n - 1}
}

// Resize reallocates the table at a new size, dropping all entries.
func (t *Table) Resize(megabytes int) {
	if t == nil {
		return
	}
	*t = *NewTable(megabytes)
}

// Clear drops every entry.
func (t *Table) Clear() {
	if t == nil {
		return
	}
	clear(t.slots)
}

// Len returns the slot count.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.slots)
}

// NewGeneration ages the table. Entries from older generations lose
// replacement priority but stay probeable.
func (t *Table) NewGeneration() {
	if t == nil {
		return
	}
	t.gen++
}

func packData(m board.Move, score int32, depth int, b Bound, gen uint64) uint64 {
	return uint64(m) |
		uint64(uint16(int16(score)))<<16 |
		uint64(uint8(depth))<<32 |
		uint64(b)<<40 |
		(gen&63)<<42
}

func dataMove(d uint64) board.Move { return board.Move(d) }
func dataScore(d uint64) int32     { return int32(int16(d >> 16)) }
func dataDepth(d uint64) int       { return int(d >> 32 & 0xFF) }
func dataBound(d uint64) Bound     { return Bound(d >> 40 & 3) }
func dataGen(d uint64) uint64      { return d >> 42 & 63 }

// Probe looks up key. Mate scores come back adjusted to the probing ply.
func (t *Table) Probe(key uint64, ply int) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	s := &t.slots[key&t.mask]
	check := atomic.LoadUint64(&s.check)
	data := atomic.LoadUint64(&s.data)
	if check^data != key || dataBound(data) == BoundNone {
		return Entry{}, false
	}
	return Entry{
		Move:  dataMove(data),
		Score: scoreFromTT(dataScore(data), ply),
		Depth: dataDepth(data),
		Bound: dataBound(data),
	}, true
}

// Store records a search result for key. Same-key entries are updated in
// place, except that a shallower non-exact result never displaces a deeper
// one; on a collision the incumbent survives only when it is from the
// current generation and deeper than the newcomer.
func (t *Table) Store(key uint64, m board.Move, score int32, depth int, b Bound, ply int) {
	if t == nil {
		return
	}
	s := &t.slots[key&t.mask]
	check := atomic.LoadUint64(&s.check)
	data := atomic.LoadUint64(&s.data)
	if dataBound(data) != BoundNone {
		if check^data != key {
			if dataGen(data) == t.gen&63 && dataDepth(data) > depth {
				return
			}
		} else {
			if dataDepth(data) > depth && b != BoundExact {
				// The incumbent searched this position deeper: keep its
				// result and refresh its generation.
				mv := dataMove(data)
				if mv == board.NoMove {
					mv = m
				}
				refreshed := packData(mv, dataScore(data), dataDepth(data), dataBound(data), t.gen)
				atomic.StoreUint64(&s.data, refreshed)
				atomic.StoreUint64(&s.check, key^refreshed)
				return
			}
			// Keep the known-good move when the new result has none.
			if m == board.NoMove {
				m = dataMove(data)
			}
		}
	}
	packed := packData(m, scoreToTT(score, ply), depth, b, t.gen)
	atomic.StoreUint64(&s.data, packed)
	atomic.StoreUint64(&s.check, key^packed)
}

// Mate scores are stored relative to the node rather than the root, so a
// cached mate keeps its true distance no matter where it is rediscovered.
func scoreToTT(s int32, ply int) int32 {
	if s > mateThreshold {
		return s + int32(ply)
	}
	if s < -mateThreshold {
		return s - int32(ply)
	}
	return s
}

func scoreFromTT(s int32, ply int) int32 {
	if s > mateThreshold {
		return s - int32(ply)
	}
	if s < -mateThreshold {
		return s + int32(ply)
	}
	return s
}
