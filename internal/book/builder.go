package book

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zstd"

	"github.com/itotallyrock/thermite/internal/board"
)

// Result is a finished game's outcome from White's side.
type Result int8

const (
	UnknownResult Result = iota
	WhiteWins
	BlackWins
	Draw
)

// ParseResult maps a PGN Result tag to a Result.
func ParseResult(s string) (Result, bool) {
	switch s {
	case "1-0":
		return WhiteWins, true
	case "0-1":
		return BlackWins, true
	case "1/2-1/2":
		return Draw, true
	}
	return UnknownResult, false
}

// Builder accumulates weighted moves from finished games and writes a book
// file. Every move is validated against the legal move generator during
// replay; a game containing an unplayable move is rejected whole.
type Builder struct {
	minGames int
	maxPly   int
	tallies  map[tallyKey]*tally
	games    int
}

type tallyKey struct {
	key  uint64
	move board.Move
}

type tally struct {
	wins  uint32
	draws uint32
	games uint32
}

// NewBuilder returns a Builder keeping moves seen in at least minGames
// games and recording at most maxPly plies per game. maxPly <= 0 records
// whole games.
func NewBuilder(minGames, maxPly int) *Builder {
	if minGames < 1 {
		minGames = 1
	}
	return &Builder{
		minGames: minGames,
		maxPly:   maxPly,
		tallies:  make(map[tallyKey]*tally),
	}
}

// AddGame replays a game given as UCI moves from the starting position and
// tallies each move under the position it was played from. Results are
// credited from the mover's side: a White win counts as a win for White's
// moves and a loss for Black's.
func (b *Builder) AddGame(moves []string, result Result) error {
	if result == UnknownResult {
		return errors.New("unknown result")
	}

	type played struct {
		key   uint64
		move  board.Move
		mover board.Color
	}
	p := board.StartPosition()
	staged := make([]played, 0, len(moves))
	for i, s := range moves {
		if b.maxPly > 0 && i >= b.maxPly {
			break
		}
		m, err := board.ParseUCIMove(p, s)
		if err != nil {
			return fmt.Errorf("ply %d: %w", i+1, err)
		}
		staged = append(staged, played{key: p.Key(), move: m, mover: p.SideToMove()})
		p.MakeMove(m)
	}

	for _, pl := range staged {
		k := tallyKey{key: pl.key, move: pl.move}
		t := b.tallies[k]
		if t == nil {
			t = &tally{}
			b.tallies[k] = t
		}
		t.games++
		switch {
		case result == Draw:
			t.draws++
		case (result == WhiteWins) == (pl.mover == board.White):
			t.wins++
		}
	}
	b.games++
	return nil
}

// Games returns the number of games accumulated.
func (b *Builder) Games() int { return b.games }

// Len returns the number of distinct (position, move) tallies so far,
// before pruning.
func (b *Builder) Len() int { return len(b.tallies) }

// WriteFile prunes moves below the game threshold, sorts, and writes the
// book file.
func (b *Builder) WriteFile(path string) error {
	entries := make([]Entry, 0, len(b.tallies))
	for k, t := range b.tallies {
		if int(t.games) < b.minGames {
			continue
		}
		entries = append(entries, Entry{
			Key:    k.key,
			Move:   k.move,
			Weight: saturate16(2*uint64(t.wins) + uint64(t.draws)),
			Count:  t.games,
		})
	}
	if len(entries) == 0 {
		return errors.New("empty book")
	}

	// Key order for binary search, heaviest move first within a key.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Key != entries[j].Key {
			return entries[i].Key < entries[j].Key
		}
		if entries[i].Weight != entries[j].Weight {
			return entries[i].Weight > entries[j].Weight
		}
		return entries[i].Move < entries[j].Move
	})

	body := make([]byte, len(entries)*EntrySize)
	for i, e := range entries {
		off := i * EntrySize
		binary.BigEndian.PutUint64(body[off:], e.Key)
		binary.BigEndian.PutUint16(body[off+8:], uint16(e.Move))
		binary.BigEndian.PutUint16(body[off+10:], e.Weight)
		binary.BigEndian.PutUint32(body[off+12:], e.Count)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return fmt.Errorf("create zstd encoder: %w", err)
	}
	compressed := encoder.EncodeAll(body, nil)
	encoder.Close()

	header := make([]byte, HeaderSize)
	copy(header[:4], Magic)
	binary.BigEndian.PutUint16(header[4:6], Version)
	binary.BigEndian.PutUint32(header[8:12], uint32(len(entries)))
	binary.BigEndian.PutUint32(header[12:16], crc32.ChecksumIEEE(body))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(header); err != nil {
		return err
	}
	if _, err := f.Write(compressed); err != nil {
		return err
	}
	return nil
}

func saturate16(v uint64) uint16 {
	if v > 0xFFFF {
		return 0xFFFF
	}
	return uint16(v)
}
