// Package epd parses EPD perft suites: one position per line as the first
// four FEN fields followed by ;Dn <count> operations giving the expected
// node count at each depth. Comment lines (#) and blank lines are skipped,
// and .zst files are decompressed transparently.
package epd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/itotallyrock/thermite/internal/board"
)

// Case is one suite position with its expected perft counts by depth.
type Case struct {
	FEN    string
	Counts map[int]uint64
	Line   int
}

// MaxDepth returns the deepest count the case carries.
func (c Case) MaxDepth() int {
	max := 0
	for d := range c.Counts {
		if d > max {
			max = d
		}
	}
	return max
}

// ParseFile reads a suite from disk, decompressing .zst files.
func ParseFile(path string) ([]Case, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("create zstd decoder: %w", err)
		}
		defer dec.Close()
		r = dec
	}

	cases, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cases, nil
}

// Parse reads a suite from r. Errors name the offending line.
func Parse(r io.Reader) ([]Case, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var cases []Case
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		c, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		c.Line = lineNum
		cases = append(cases, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cases, nil
}

func parseLine(line string) (Case, error) {
	parts := strings.Split(line, ";")

	fields := strings.Fields(parts[0])
	if len(fields) < 4 {
		return Case{}, fmt.Errorf("want at least 4 FEN fields, got %d", len(fields))
	}
	// EPD carries no clocks; supply them for the parser.
	if len(fields) == 4 {
		fields = append(fields, "0", "1")
	} else if len(fields) == 5 {
		fields = append(fields, "1")
	}
	fen := strings.Join(fields[:6], " ")
	if _, err := board.ParseFEN(fen); err != nil {
		return Case{}, err
	}

	c := Case{FEN: fen, Counts: make(map[int]uint64)}
	for _, op := range parts[1:] {
		op = strings.TrimSpace(op)
		if len(op) < 2 || op[0] != 'D' {
			continue
		}
		rest := strings.Fields(op[1:])
		if len(rest) != 2 {
			continue
		}
		depth, err := strconv.Atoi(rest[0])
		if err != nil || depth < 1 {
			// Some other opcode that happens to start with D.
			continue
		}
		count, err := strconv.ParseUint(rest[1], 10, 64)
		if err != nil {
			return Case{}, fmt.Errorf("bad count in op %q: %v", op, err)
		}
		if _, dup := c.Counts[depth]; dup {
			return Case{}, fmt.Errorf("duplicate depth %d", depth)
		}
		c.Counts[depth] = count
	}
	if len(c.Counts) == 0 {
		return Case{}, errors.New("no perft counts")
	}
	return c, nil
}
