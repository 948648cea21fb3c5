// Package uci implements the UCI text protocol in front of the engine
// core: option advertising, position setup, and search control. Protocol
// text goes to the writer the engine was built with; diagnostics go through
// zerolog so stdout stays clean for the GUI.
//
// The driver only touches the core through its narrow surface: ParseFEN,
// ParseUCIMove, MakeMove, and Searcher.Search.
package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/itotallyrock/thermite/internal/board"
	"github.com/itotallyrock/thermite/internal/book"
	"github.com/itotallyrock/thermite/internal/eval"
	"github.com/itotallyrock/thermite/internal/search"
)

const (
	EngineName    = "Thermite"
	EngineVersion = "0.1.0"
	EngineAuthor  = "the Thermite authors"
)

// Hash option bounds advertised to the GUI, in MB.
const (
	defaultHashMB = 64
	minHashMB     = 1
	maxHashMB     = 4096
)

// Engine speaks UCI over an input/output pair and drives the search. One
// goroutine runs the command loop; go spawns a search goroutine that stop
// and quit halt cooperatively.
type Engine struct {
	in  io.Reader
	out io.Writer
	wmu sync.Mutex
	log zerolog.Logger

	tt       *search.Table
	searcher *search.Searcher
	pos      *board.Position

	ownBook bool
	bk      *book.Book
	debug   bool

	searching atomic.Bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewEngine wires an engine to its I/O. Production passes stdin/stdout;
// tests pass scripted readers and buffers.
func NewEngine(in io.Reader, out io.Writer, log zerolog.Logger) *Engine {
	tt := search.NewTable(defaultHashMB)
	done := make(chan struct{})
	close(done) // no search running yet
	return &Engine{
		in:       in,
		out:      out,
		log:      log,
		tt:       tt,
		searcher: search.NewSearcher(tt, eval.Classical{}),
		pos:      board.StartPosition(),
		done:     done,
	}
}

// Run processes commands until quit or EOF. A search still running when the
// loop ends is halted and its bestmove flushed before Run returns.
func (e *Engine) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(e.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !e.dispatch(ctx, line) {
			break
		}
	}
	e.halt()
	<-e.done
	return scanner.Err()
}

// dispatch handles one command line. Returns false on quit.
func (e *Engine) dispatch(ctx context.Context, line string) bool {
	cmd, args, _ := strings.Cut(line, " ")
	args = strings.TrimSpace(args)

	switch cmd {
	case "uci":
		e.identify()
	case "debug":
		e.debug = args == "on"
	case "isready":
		e.send("readyok")
	case "setoption":
		if e.rejectDuringSearch(line) {
			break
		}
		if err := e.setOption(args); err != nil {
			e.reportBad(line, err)
		}
	case "ucinewgame":
		if e.rejectDuringSearch(line) {
			break
		}
		e.tt.Clear()
		e.pos = board.StartPosition()
	case "position":
		if e.rejectDuringSearch(line) {
			break
		}
		if err := e.setPosition(args); err != nil {
			e.reportBad(line, err)
		}
	case "go":
		e.startSearch(ctx, args)
	case "stop":
		// Synchronous so the bestmove is flushed before the next
		// command is read.
		e.halt()
		<-e.done
	case "quit":
		return false
	case "print":
		if e.rejectDuringSearch(line) {
			break
		}
		e.printBoard()
	case "register", "ponderhit":
		// Accepted, nothing to do.
	default:
		e.log.Warn().Str("line", line).Msg("unknown command")
	}
	return true
}

func (e *Engine) send(format string, args ...any) {
	e.wmu.Lock()
	fmt.Fprintf(e.out, format+"\n", args...)
	e.wmu.Unlock()
}

func (e *Engine) identify() {
	e.send("id name %s %s", EngineName, EngineVersion)
	e.send("id author %s", EngineAuthor)
	e.send("option name Hash type spin default %d min %d max %d", defaultHashMB, minHashMB, maxHashMB)
	e.send("option name OwnBook type check default false")
	e.send("option name BookPath type string default <empty>")
	e.send("uciok")
}

func (e *Engine) rejectDuringSearch(line string) bool {
	if !e.searching.Load() {
		return false
	}
	e.log.Warn().Str("line", line).Msg("command ignored during search")
	return true
}

func (e *Engine) reportBad(line string, err error) {
	e.log.Warn().Err(err).Str("line", line).Msg("bad command")
	if e.debug {
		e.send("info string %v", err)
	}
}

func (e *Engine) setOption(args string) error {
	after, ok := strings.CutPrefix(args, "name ")
	if !ok {
		return errors.New("missing option name")
	}
	name, value, _ := strings.Cut(after, " value ")
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)

	switch strings.ToLower(name) {
	case "hash":
		mb, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("bad Hash value %q", value)
		}
		if mb < minHashMB {
			mb = minHashMB
		}
		if mb > maxHashMB {
			mb = maxHashMB
		}
		e.tt.Resize(mb)
		e.log.Info().Int("mb", mb).Int("slots", e.tt.Len()).Msg("hash resized")
	case "ownbook":
		e.ownBook = value == "true"
	case "bookpath":
		if value == "" || value == "<empty>" {
			e.bk = nil
			return nil
		}
		bk, err := book.Open(value)
		if err != nil {
			return fmt.Errorf("open book: %w", err)
		}
		e.bk = bk
		e.log.Info().Str("path", value).Int("entries", bk.Len()).Msg("book loaded")
	default:
		return fmt.Errorf("unknown option %q", name)
	}
	return nil
}

func (e *Engine) setPosition(args string) error {
	var p *board.Position
	rest := args
	switch {
	case rest == "startpos" || strings.HasPrefix(rest, "startpos "):
		p = board.StartPosition()
		rest = strings.TrimPrefix(rest, "startpos")
	case strings.HasPrefix(rest, "fen "):
		fields := strings.Fields(strings.TrimPrefix(rest, "fen "))
		if len(fields) < 6 {
			return fmt.Errorf("fen needs 6 fields, got %d", len(fields))
		}
		var err error
		p, err = board.ParseFEN(strings.Join(fields[:6], " "))
		if err != nil {
			return err
		}
		rest = strings.Join(fields[6:], " ")
	default:
		return errors.New("want startpos or fen")
	}

	fields := strings.Fields(rest)
	if len(fields) > 0 {
		if fields[0] != "moves" {
			return fmt.Errorf("unexpected %q", fields[0])
		}
		for _, s := range fields[1:] {
			// Leave undo headroom for the search stack.
			if p.Ply() >= board.MaxGamePly-2*search.MaxPly {
				return errors.New("game history too long")
			}
			m, err := board.ParseUCIMove(p, s)
			if err != nil {
				return err
			}
			p.MakeMove(m)
		}
	}
	e.pos = p
	return nil
}

func (e *Engine) startSearch(ctx context.Context, args string) {
	if e.searching.Load() {
		e.log.Warn().Msg("go ignored, search already running")
		return
	}
	limits, err := parseGo(args)
	if err != nil {
		e.reportBad("go "+args, err)
		return
	}

	if e.ownBook && e.bk != nil && !limits.Infinite {
		if m, ok := e.bk.Pick(e.pos.Key()); ok {
			// A book built elsewhere may disagree with this position;
			// only play moves the generator accepts.
			if legal, err := board.ParseUCIMove(e.pos, m.UCI()); err == nil {
				e.log.Debug().Str("move", legal.UCI()).Msg("book move")
				e.send("bestmove %s", legal.UCI())
				return
			}
		}
	}

	// The search context is cancelled rather than flagged so a stop that
	// lands before the goroutine enters Search still sticks.
	sctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	e.cancel = cancel
	e.done = done
	e.searching.Store(true)

	pos := e.pos
	go func() {
		defer close(done)
		defer cancel()
		res := e.searcher.Search(sctx, pos, limits, e.sendInfo)
		best := "0000"
		if res.BestMove != board.NoMove {
			best = res.BestMove.UCI()
		}
		e.send("bestmove %s", best)
		e.searching.Store(false)
	}()
}

// halt cancels the running search, if any. The searcher reports its last
// completed iteration on the way out.
func (e *Engine) halt() {
	if e.cancel != nil {
		e.cancel()
	}
}

func (e *Engine) sendInfo(it search.Iteration) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "info depth %d score %s nodes %d", it.Depth, formatScore(it.Score), it.Nodes)
	if ms := it.Time.Milliseconds(); ms > 0 {
		fmt.Fprintf(&sb, " nps %d time %d", it.Nodes*1000/uint64(ms), ms)
	}
	if len(it.PV) > 0 {
		sb.WriteString(" pv")
		for _, m := range it.PV {
			sb.WriteByte(' ')
			sb.WriteString(m.UCI())
		}
	}
	e.send("%s", sb.String())
}

func formatScore(score int32) string {
	if search.IsMateScore(score) {
		return fmt.Sprintf("mate %d", search.MateIn(score))
	}
	return fmt.Sprintf("cp %d", score)
}

func (e *Engine) printBoard() {
	e.wmu.Lock()
	fmt.Fprint(e.out, e.pos)
	e.wmu.Unlock()
	e.send("fen %s", e.pos.FEN())
	e.send("key %016x", e.pos.Key())
}

// parseGo maps go parameters onto search limits. Clock values arrive in
// milliseconds; a negative clock means the GUI thinks we are flagged, so it
// floors to the minimum and the search plays its first iteration.
func parseGo(args string) (search.Limits, error) {
	var l search.Limits
	fields := strings.Fields(args)
	for i := 0; i < len(fields); i++ {
		switch fields[i] {
		case "infinite":
			l.Infinite = true
		case "ponder":
			// Unsupported; searched as a normal go.
		case "searchmoves":
			// Unsupported; the remaining tokens are all moves.
			return l, nil
		case "depth", "nodes", "movetime", "wtime", "btime", "winc", "binc", "movestogo", "mate":
			if i+1 >= len(fields) {
				return l, fmt.Errorf("%s needs a value", fields[i])
			}
			name := fields[i]
			i++
			n, err := strconv.ParseInt(fields[i], 10, 64)
			if err != nil {
				return l, fmt.Errorf("bad %s value %q", name, fields[i])
			}
			switch name {
			case "depth":
				l.Depth = int(n)
			case "nodes":
				if n < 0 {
					return l, fmt.Errorf("negative nodes %d", n)
				}
				l.Nodes = uint64(n)
			case "movetime":
				l.MoveTime = time.Duration(n) * time.Millisecond
			case "wtime":
				l.WhiteTime = clockDuration(n)
			case "btime":
				l.BlackTime = clockDuration(n)
			case "winc":
				l.WhiteInc = clockDuration(n)
			case "binc":
				l.BlackInc = clockDuration(n)
			case "movestogo":
				l.MovesToGo = int(n)
			case "mate":
				if n < 1 {
					return l, fmt.Errorf("bad mate value %d", n)
				}
				// A mate in n moves is at most 2n-1 plies deep.
				l.Depth = int(2*n - 1)
			}
		default:
			return l, fmt.Errorf("unknown go parameter %q", fields[i])
		}
	}
	return l, nil
}

func clockDuration(ms int64) time.Duration {
	if ms < 0 {
		ms = 1
	}
	return time.Duration(ms) * time.Millisecond
}
