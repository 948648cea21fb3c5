package book_test

import (
	"encoding/binary"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/itotallyrock/thermite/internal/board"
	"github.com/itotallyrock/thermite/internal/book"
)

type testGame struct {
	moves  []string
	result book.Result
}

// keyAfter replays UCI moves from the starting position and returns the
// resulting zobrist key.
func keyAfter(t *testing.T, moves ...string) uint64 {
	t.Helper()
	p := board.StartPosition()
	for _, s := range moves {
		m, err := board.ParseUCIMove(p, s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		p.MakeMove(m)
	}
	return p.Key()
}

func buildBook(t *testing.T, minGames, maxPly int, games []testGame) *book.Book {
	t.Helper()
	b := book.NewBuilder(minGames, maxPly)
	for _, g := range games {
		if err := b.AddGame(g.moves, g.result); err != nil {
			t.Fatalf("add game %v: %v", g.moves, err)
		}
	}
	path := filepath.Join(t.TempDir(), "test.tbk")
	if err := b.WriteFile(path); err != nil {
		t.Fatalf("write book: %v", err)
	}
	bk, err := book.Open(path)
	if err != nil {
		t.Fatalf("open book: %v", err)
	}
	return bk
}

var roundTripGames = []testGame{
	{moves: []string{"e2e4", "e7e5", "g1f3"}, result: book.WhiteWins},
	{moves: []string{"e2e4", "c7c5"}, result: book.BlackWins},
	{moves: []string{"d2d4", "d7d5"}, result: book.Draw},
}

func TestBookRoundTrip(t *testing.T) {
	bk := buildBook(t, 1, 0, roundTripGames)

	if bk.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", bk.Len())
	}

	tests := []struct {
		name    string
		key     uint64
		moves   []string // expected UCI, heaviest first
		weights []uint16
		counts  []uint32
	}{
		{
			name:    "start",
			key:     board.StartPosition().Key(),
			moves:   []string{"e2e4", "d2d4"},
			weights: []uint16{2, 1},
			counts:  []uint32{2, 1},
		},
		{
			name:    "after 1.e4",
			key:     keyAfter(t, "e2e4"),
			moves:   []string{"c7c5", "e7e5"},
			weights: []uint16{2, 0},
			counts:  []uint32{1, 1},
		},
		{
			name:    "after 1.e4 e5",
			key:     keyAfter(t, "e2e4", "e7e5"),
			moves:   []string{"g1f3"},
			weights: []uint16{2},
			counts:  []uint32{1},
		},
		{
			name: "out of book",
			key:  keyAfter(t, "d2d4", "d7d5"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := bk.Probe(tt.key)
			if len(entries) != len(tt.moves) {
				t.Fatalf("Probe returned %d entries, want %d", len(entries), len(tt.moves))
			}
			for i, e := range entries {
				if got := e.Move.UCI(); got != tt.moves[i] {
					t.Errorf("entry %d move = %s, want %s", i, got, tt.moves[i])
				}
				if e.Weight != tt.weights[i] {
					t.Errorf("entry %d weight = %d, want %d", i, e.Weight, tt.weights[i])
				}
				if e.Count != tt.counts[i] {
					t.Errorf("entry %d count = %d, want %d", i, e.Count, tt.counts[i])
				}
				if e.Key != tt.key {
					t.Errorf("entry %d key = %x, want %x", i, e.Key, tt.key)
				}
			}
		})
	}
}

func TestBookTranspositionsShareKey(t *testing.T) {
	// Queen's Gambit Declined by two move orders. The position before
	// ...e6 is identical, so the tallies must merge under one key.
	k1 := keyAfter(t, "d2d4", "d7d5", "c2c4")
	k2 := keyAfter(t, "c2c4", "d7d5", "d2d4")
	if k1 != k2 {
		t.Fatalf("transposed keys differ: %x vs %x", k1, k2)
	}

	bk := buildBook(t, 1, 0, []testGame{
		{moves: []string{"d2d4", "d7d5", "c2c4", "e7e6"}, result: book.Draw},
		{moves: []string{"c2c4", "d7d5", "d2d4", "e7e6"}, result: book.WhiteWins},
	})

	entries := bk.Probe(k1)
	if len(entries) != 1 {
		t.Fatalf("Probe returned %d entries, want 1", len(entries))
	}
	e := entries[0]
	if got := e.Move.UCI(); got != "e7e6" {
		t.Errorf("move = %s, want e7e6", got)
	}
	if e.Count != 2 {
		t.Errorf("count = %d, want 2", e.Count)
	}
	// Black drew one game and lost the other: one draw point.
	if e.Weight != 1 {
		t.Errorf("weight = %d, want 1", e.Weight)
	}
}

func TestBuilderRejectsBadGames(t *testing.T) {
	tests := []struct {
		name   string
		moves  []string
		result book.Result
	}{
		{name: "unknown result", moves: []string{"e2e4"}, result: book.UnknownResult},
		{name: "illegal move", moves: []string{"e2e4", "e7e5", "e4e5"}, result: book.WhiteWins},
		{name: "garbage move", moves: []string{"zzzz"}, result: book.Draw},
	}
	b := book.NewBuilder(1, 0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := b.AddGame(tt.moves, tt.result); err == nil {
				t.Fatal("expected error")
			}
		})
	}
	// Rejected games must leave no trace.
	if b.Games() != 0 {
		t.Errorf("Games() = %d, want 0", b.Games())
	}
	if b.Len() != 0 {
		t.Errorf("Len() = %d, want 0", b.Len())
	}
}

func TestBuilderPrunesRareMoves(t *testing.T) {
	bk := buildBook(t, 2, 0, roundTripGames)

	// Only 1.e4 was played twice; everything else falls below the
	// threshold.
	if bk.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", bk.Len())
	}
	entries := bk.Probe(board.StartPosition().Key())
	if len(entries) != 1 || entries[0].Move.UCI() != "e2e4" {
		t.Fatalf("Probe = %v, want only e2e4", entries)
	}
}

func TestBuilderMaxPly(t *testing.T) {
	bk := buildBook(t, 1, 2, []testGame{
		{moves: []string{"e2e4", "e7e5", "g1f3", "b8c6"}, result: book.WhiteWins},
	})

	if bk.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", bk.Len())
	}
	if entries := bk.Probe(keyAfter(t, "e2e4", "e7e5")); entries != nil {
		t.Errorf("position beyond ply limit is in book: %v", entries)
	}
}

func TestWriteFileEmpty(t *testing.T) {
	dir := t.TempDir()

	b := book.NewBuilder(1, 0)
	if err := b.WriteFile(filepath.Join(dir, "empty.tbk")); err == nil {
		t.Error("expected error writing empty book")
	}

	// A threshold nothing reaches prunes the book to nothing.
	b = book.NewBuilder(100, 0)
	if err := b.AddGame([]string{"e2e4"}, book.WhiteWins); err != nil {
		t.Fatalf("add game: %v", err)
	}
	if err := b.WriteFile(filepath.Join(dir, "pruned.tbk")); err == nil {
		t.Error("expected error writing fully pruned book")
	}
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()

	b := book.NewBuilder(1, 0)
	if err := b.AddGame([]string{"e2e4", "e7e5"}, book.Draw); err != nil {
		t.Fatalf("add game: %v", err)
	}
	valid := filepath.Join(dir, "valid.tbk")
	if err := b.WriteFile(valid); err != nil {
		t.Fatalf("write book: %v", err)
	}
	data, err := os.ReadFile(valid)
	if err != nil {
		t.Fatalf("read book: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(d []byte) []byte
		missing bool
	}{
		{name: "missing file", missing: true},
		{name: "truncated", mutate: func(d []byte) []byte { return d[:10] }},
		{name: "bad magic", mutate: func(d []byte) []byte { d[0] ^= 0xFF; return d }},
		{name: "bad version", mutate: func(d []byte) []byte { d[5] = 99; return d }},
		{name: "corrupt checksum", mutate: func(d []byte) []byte { d[12] ^= 0xFF; return d }},
		{name: "corrupt body", mutate: func(d []byte) []byte { d[len(d)-1] ^= 0xFF; return d }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".tbk")
			if !tt.missing {
				mutated := tt.mutate(append([]byte(nil), data...))
				if err := os.WriteFile(path, mutated, 0644); err != nil {
					t.Fatalf("write mutated file: %v", err)
				}
			}
			if _, err := book.Open(path); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	// The pristine file still opens.
	if _, err := book.Open(valid); err != nil {
		t.Fatalf("open valid book: %v", err)
	}
}

func TestOpenRejectsUnsortedEntries(t *testing.T) {
	// Hand-build a file whose entries are out of key order but whose
	// header checks out.
	body := make([]byte, 2*book.EntrySize)
	binary.BigEndian.PutUint64(body[0:], 2)
	binary.BigEndian.PutUint64(body[book.EntrySize:], 1)

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("create zstd encoder: %v", err)
	}
	compressed := enc.EncodeAll(body, nil)
	enc.Close()

	header := make([]byte, book.HeaderSize)
	copy(header[:4], book.Magic)
	binary.BigEndian.PutUint16(header[4:6], book.Version)
	binary.BigEndian.PutUint32(header[8:12], 2)
	binary.BigEndian.PutUint32(header[12:16], crc32.ChecksumIEEE(body))

	path := filepath.Join(t.TempDir(), "unsorted.tbk")
	if err := os.WriteFile(path, append(header, compressed...), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := book.Open(path); err == nil {
		t.Fatal("expected error for unsorted entries")
	}
}

func TestPick(t *testing.T) {
	bk := buildBook(t, 1, 0, roundTripGames)

	t.Run("out of book", func(t *testing.T) {
		if m, ok := bk.Pick(keyAfter(t, "g1f3")); ok || m != board.NoMove {
			t.Fatalf("Pick = %v, %v, want NoMove, false", m, ok)
		}
	})

	t.Run("single candidate", func(t *testing.T) {
		key := keyAfter(t, "e2e4", "e7e5")
		for i := 0; i < 10; i++ {
			m, ok := bk.Pick(key)
			if !ok || m.UCI() != "g1f3" {
				t.Fatalf("Pick = %v, %v, want g1f3, true", m, ok)
			}
		}
	})

	t.Run("weight proportional", func(t *testing.T) {
		key := board.StartPosition().Key()
		seen := map[string]int{}
		for i := 0; i < 200; i++ {
			m, ok := bk.Pick(key)
			if !ok {
				t.Fatal("Pick failed for booked position")
			}
			seen[m.UCI()]++
		}
		for uci := range seen {
			if uci != "e2e4" && uci != "d2d4" {
				t.Fatalf("picked unbooked move %s", uci)
			}
		}
		// 2:1 weights; 200 picks miss a candidate with vanishing odds.
		if len(seen) != 2 {
			t.Errorf("picks = %v, want both candidates", seen)
		}
	})

	t.Run("all zero weights", func(t *testing.T) {
		zero := buildBook(t, 1, 0, []testGame{
			{moves: []string{"e2e4"}, result: book.BlackWins},
		})
		m, ok := zero.Pick(board.StartPosition().Key())
		if !ok || m.UCI() != "e2e4" {
			t.Fatalf("Pick = %v, %v, want e2e4, true", m, ok)
		}
	})
}
