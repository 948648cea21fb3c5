package search

import (
	"time"

	"github.com/itotallyrock/thermite/internal/board"
)

// CorruptSlot flips a bit in the data word of key's slot without fixing the
// check word, simulating a torn concurrent write.
func CorruptSlot(t *Table, key uint64) {
	t.slots[key&t.mask].data ^= 1 << 17
}

// BudgetForTest exports limits budgeting.
func BudgetForTest(l Limits, side board.Color) (time.Duration, bool) {
	return l.budget(side)
}
