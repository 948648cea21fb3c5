// Package book implements the opening book: a compact binary file of
// weighted moves keyed by position zobrist key, consulted by the UCI layer
// before searching.
//
// File structure ("TBK1"):
//
//	Header (32 bytes):
//	  - Magic (4): "TBK1"
//	  - Version (2): 1
//	  - Flags (2): reserved
//	  - EntryCount (4): number of entries
//	  - Checksum (4): CRC32 of uncompressed entry block
//	  - Reserved (16): padding to 32 bytes
//	Body (compressed with zstd):
//	  - EntryCount entries of 16 bytes each, sorted by key:
//	    {key uint64, move uint16, weight uint16, count uint32}
//
// Keys are the engine's own zobrist keys, which are deterministic across
// runs, so transpositions share one set of entries.
package book

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"os"
	"sort"

	"github.com/klauspost/compress/zstd"
	"lukechampine.com/frand"

	"github.com/itotallyrock/thermite/internal/board"
)

const (
	Magic      = "TBK1"
	Version    = 1
	HeaderSize = 32
	EntrySize  = 16
)

// Entry is one weighted book move for a position.
type Entry struct {
	Key    uint64
	Move   board.Move
	Weight uint16 // 2*wins + draws from the mover's side, saturated
	Count  uint32 // games the move was played in
}

// Book is an opening book loaded into memory from a TBK1 file.
type Book struct {
	entries []Entry
}

// Open loads a book file and validates magic, version, and checksum.
func Open(path string) (*Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < HeaderSize {
		return nil, errors.New("book file too small")
	}
	if string(data[:4]) != Magic {
		return nil, fmt.Errorf("invalid magic: %q", data[:4])
	}
	if v := binary.BigEndian.Uint16(data[4:6]); v != Version {
		return nil, fmt.Errorf("unsupported version: %d", v)
	}
	count := binary.BigEndian.Uint32(data[8:12])
	checksum := binary.BigEndian.Uint32(data[12:16])

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer decoder.Close()

	body, err := decoder.DecodeAll(data[HeaderSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	if crc32.ChecksumIEEE(body) != checksum {
		return nil, errors.New("checksum mismatch")
	}
	if len(body) != int(count)*EntrySize {
		return nil, fmt.Errorf("body size mismatch: got %d, want %d", len(body), int(count)*EntrySize)
	}

	entries := make([]Entry, count)
	for i := range entries {
		off := i * EntrySize
		entries[i] = Entry{
			Key:    binary.BigEndian.Uint64(body[off:]),
			Move:   board.Move(binary.BigEndian.Uint16(body[off+8:])),
			Weight: binary.BigEndian.Uint16(body[off+10:]),
			Count:  binary.BigEndian.Uint32(body[off+12:]),
		}
		if i > 0 && entries[i-1].Key > entries[i].Key {
			return nil, errors.New("entries not sorted")
		}
	}

	return &Book{entries: entries}, nil
}

// Len returns the number of entries.
func (b *Book) Len() int { return len(b.entries) }

// Probe returns the moves recorded for a position key, heaviest first, or
// nil when the position is out of book.
func (b *Book) Probe(key uint64) []Entry {
	lo, hi := b.span(key)
	if lo == hi {
		return nil
	}
	out := make([]Entry, hi-lo)
	copy(out, b.entries[lo:hi])
	return out
}

// Pick selects a move for the key with probability proportional to entry
// weight. When every candidate has weight zero the pick is uniform.
func (b *Book) Pick(key uint64) (board.Move, bool) {
	lo, hi := b.span(key)
	if lo == hi {
		return board.NoMove, false
	}
	span := b.entries[lo:hi]

	var total uint64
	for _, e := range span {
		total += uint64(e.Weight)
	}
	if total == 0 {
		return span[frand.Intn(len(span))].Move, true
	}

	r := frand.Uint64n(total)
	for _, e := range span {
		if r < uint64(e.Weight) {
			return e.Move, true
		}
		r -= uint64(e.Weight)
	}
	return span[len(span)-1].Move, true
}

// span locates the entry range for key using binary search.
func (b *Book) span(key uint64) (int, int) {
	lo := sort.Search(len(b.entries), func(i int) bool { return b.entries[i].Key >= key })
	hi := lo
	for hi < len(b.entries) && b.entries[hi].Key == key {
		hi++
	}
	return lo, hi
}
