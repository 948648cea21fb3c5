package uci_test

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/itotallyrock/thermite/internal/book"
	"github.com/itotallyrock/thermite/internal/uci"
)

// runSession feeds a scripted command sequence to a fresh engine and
// returns everything it wrote to the protocol stream.
func runSession(t *testing.T, script string) string {
	t.Helper()
	var out bytes.Buffer
	e := uci.NewEngine(strings.NewReader(script), &out, zerolog.Nop())
	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

func TestHandshake(t *testing.T) {
	out := runSession(t, "uci\nisready\nquit\n")

	for _, want := range []string{
		"id name Thermite",
		"id author",
		"option name Hash type spin default 64 min 1 max 4096",
		"option name OwnBook type check default false",
		"option name BookPath type string default <empty>",
		"uciok",
		"readyok",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "uciok") > strings.Index(out, "readyok") {
		t.Error("uciok after readyok")
	}
}

func TestBestmoveMateInOne(t *testing.T) {
	out := runSession(t, "position fen 6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1\ngo depth 3\nquit\n")

	if !strings.Contains(out, "bestmove a1a8") {
		t.Fatalf("output missing bestmove a1a8:\n%s", out)
	}
	if !strings.Contains(out, "score mate 1") {
		t.Errorf("output missing score mate 1:\n%s", out)
	}
}

func TestBestmoveAfterMovesReplay(t *testing.T) {
	// The mate-in-one arises after two replayed moves.
	out := runSession(t, "position fen 6k1/5ppp/8/8/8/8/PPP2PPP/R5K1 w - - 0 1 moves a2a3 g8h8\ngo depth 3\nquit\n")

	if !strings.Contains(out, "bestmove a1a8") {
		t.Fatalf("output missing bestmove a1a8:\n%s", out)
	}
}

func TestGoInfiniteStops(t *testing.T) {
	out := runSession(t, "position startpos\ngo infinite\nstop\nquit\n")

	if !strings.Contains(out, "bestmove ") {
		t.Fatalf("no bestmove after stop:\n%s", out)
	}
	if !strings.Contains(out, "info depth 1") {
		t.Errorf("no first-iteration info after stop:\n%s", out)
	}
}

func TestQuitDuringSearch(t *testing.T) {
	out := runSession(t, "position startpos\ngo movetime 10000\nquit\n")

	// Quit halts the search and still reports a move.
	if !strings.Contains(out, "bestmove ") {
		t.Fatalf("no bestmove after quit:\n%s", out)
	}
}

func TestStalematedRoot(t *testing.T) {
	out := runSession(t, "position fen 7k/5Q2/6K1/8/8/8/8/8 b - - 0 1\ngo depth 2\nquit\n")

	if !strings.Contains(out, "bestmove 0000") {
		t.Fatalf("stalemated root should report a null bestmove:\n%s", out)
	}
}

func TestPrintAndNewGame(t *testing.T) {
	out := runSession(t, "position startpos moves e2e4 e7e5\nprint\nucinewgame\nprint\nquit\n")

	if !strings.Contains(out, "fen rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2") {
		t.Errorf("print missing replayed position FEN:\n%s", out)
	}
	if !strings.Contains(out, "fen rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1") {
		t.Errorf("ucinewgame did not reset to the starting position:\n%s", out)
	}
	if !strings.Contains(out, "white to move") {
		t.Errorf("print missing board diagnostic:\n%s", out)
	}
}

func TestBadCommandsAreSurvivable(t *testing.T) {
	script := strings.Join([]string{
		"position fen not a real position at all",
		"position startpos moves e2e5",
		"setoption name Bogus value 1",
		"setoption name Hash value twelve",
		"go depth notanumber",
		"flarp",
		"isready",
		"quit",
	}, "\n") + "\n"
	out := runSession(t, script)

	if !strings.Contains(out, "readyok") {
		t.Fatalf("engine died on bad input:\n%s", out)
	}
	if strings.Contains(out, "bestmove") {
		t.Errorf("malformed go still searched:\n%s", out)
	}
}

func TestDebugReportsErrors(t *testing.T) {
	out := runSession(t, "debug on\nposition fen junk\nquit\n")

	if !strings.Contains(out, "info string") {
		t.Errorf("debug mode did not surface the error:\n%s", out)
	}
}

func TestOwnBookPlaysBookMove(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.tbk")

	b := book.NewBuilder(1, 0)
	if err := b.AddGame([]string{"e2e4", "e7e5"}, book.WhiteWins); err != nil {
		t.Fatalf("add game: %v", err)
	}
	if err := b.WriteFile(path); err != nil {
		t.Fatalf("write book: %v", err)
	}

	script := strings.Join([]string{
		"setoption name BookPath value " + path,
		"setoption name OwnBook value true",
		"position startpos",
		"go depth 4",
		"position startpos moves e2e4",
		"go depth 4",
		"quit",
	}, "\n") + "\n"
	out := runSession(t, script)

	if !strings.Contains(out, "bestmove e2e4") {
		t.Fatalf("book move not played:\n%s", out)
	}
	if !strings.Contains(out, "bestmove e7e5") {
		t.Fatalf("book move for black not played:\n%s", out)
	}
	if strings.Contains(out, "info depth") {
		t.Errorf("book positions should not be searched:\n%s", out)
	}

	// Out of book, the search takes over again.
	out = runSession(t, strings.Join([]string{
		"setoption name BookPath value " + path,
		"setoption name OwnBook value true",
		"position startpos moves e2e4 e7e5",
		"go depth 2",
		"quit",
	}, "\n")+"\n")
	if !strings.Contains(out, "info depth") {
		t.Errorf("out-of-book position was not searched:\n%s", out)
	}
}

func TestGoMateBoundsDepth(t *testing.T) {
	out := runSession(t, "position fen k7/8/8/2K5/8/8/8/6Q1 w - - 0 1\ngo mate 2\nquit\n")

	// The mate bound becomes a depth bound, so the search terminates on
	// its own and still finds the mate.
	if !strings.Contains(out, "bestmove c5b6") {
		t.Fatalf("mate-bounded search missed the mating move:\n%s", out)
	}
	if !strings.Contains(out, "score mate 2") {
		t.Errorf("mate in two not reported:\n%s", out)
	}
	if strings.Contains(out, "info depth 4") {
		t.Errorf("go mate 2 searched past depth 3:\n%s", out)
	}
}

func TestMateScoreReported(t *testing.T) {
	out := runSession(t, "position fen k7/8/8/2K5/8/8/8/6Q1 w - - 0 1\ngo depth 4\nquit\n")

	if !strings.Contains(out, "score mate 2") {
		t.Errorf("mate in two not reported:\n%s", out)
	}
	if !strings.Contains(out, "bestmove c5b6") {
		t.Errorf("mating move not chosen:\n%s", out)
	}
}

func TestInfoLineShape(t *testing.T) {
	out := runSession(t, "position startpos\ngo depth 3\nquit\n")

	var sawInfo bool
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, "info depth ") {
			continue
		}
		sawInfo = true
		for _, field := range []string{" score ", " nodes ", " pv "} {
			if !strings.Contains(line, field) {
				t.Errorf("info line missing %q: %q", strings.TrimSpace(field), line)
			}
		}
	}
	if !sawInfo {
		t.Fatalf("no info lines:\n%s", out)
	}
	if !strings.Contains(out, "bestmove ") {
		t.Fatalf("no bestmove:\n%s", out)
	}
}
