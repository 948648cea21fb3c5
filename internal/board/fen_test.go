package board_test

import (
	"strings"
	"testing"

	"github.com/itotallyrock/thermite/internal/board"
)

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		board.StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
		"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		"rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 2",
		"4k3/8/8/8/8/8/8/4K2R w K - 0 1",
		"r3k3/8/8/8/8/8/8/4K3 b q - 12 47",
		"8/k1P5/8/1K6/8/8/8/8 w - - 0 1",
	}
	for _, fen := range fens {
		t.Run(strings.Fields(fen)[0], func(t *testing.T) {
			p, err := board.ParseFEN(fen)
			if err != nil {
				t.Fatalf("ParseFEN(%q): %v", fen, err)
			}
			if got := p.FEN(); got != fen {
				t.Errorf("round trip:\n got %q\nwant %q", got, fen)
			}
			if p.Key() != p.RecomputeKey() {
				t.Errorf("stored key %#x != recomputed %#x", p.Key(), p.RecomputeKey())
			}
		})
	}
}

func TestParseFENFields(t *testing.T) {
	p, err := board.ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R b Kq - 13 42")
	if err != nil {
		t.Fatal(err)
	}
	if p.SideToMove() != board.Black {
		t.Errorf("side = %v, want Black", p.SideToMove())
	}
	want := board.WhiteKingside | board.BlackQueenside
	if p.Castling() != want {
		t.Errorf("castling = %v, want %v", p.Castling(), want)
	}
	if p.EPSquare() != board.NoSquare {
		t.Errorf("ep = %v, want none", p.EPSquare())
	}
	if p.HalfmoveClock() != 13 || p.FullmoveNumber() != 42 {
		t.Errorf("clocks = %d/%d, want 13/42", p.HalfmoveClock(), p.FullmoveNumber())
	}
	if p.PieceAt(board.SquareE8) != board.BlackKing || p.PieceAt(board.SquareA1) != board.WhiteRook {
		t.Error("mailbox does not match FEN placement")
	}
}

func TestParseFENErrors(t *testing.T) {
	tests := []struct {
		name string
		fen  string
	}{
		{"empty", ""},
		{"too few fields", "8/8/8/8/8/8/8/8 w -"},
		{"seven ranks", "8/8/8/8/8/8/4k2K w - - 0 1"},
		{"nine ranks", "8/8/8/8/8/8/8/8/4k2K w - - 0 1"},
		{"short rank", "7/8/8/8/8/8/8/4k2K w - - 0 1"},
		{"long rank", "9/8/8/8/8/8/8/4k2K w - - 0 1"},
		{"adjacent empty counts", "k7/44/8/8/8/8/8/K7 w - - 0 1"},
		{"bad piece char", "4x3/8/8/8/8/8/8/4k2K w - - 0 1"},
		{"no white king", "4k3/8/8/8/8/8/8/8 w - - 0 1"},
		{"two white kings", "4k3/8/8/8/8/8/8/2K1K3 w - - 0 1"},
		{"pawn on first rank", "4k3/8/8/8/8/8/8/P3K3 w - - 0 1"},
		{"pawn on last rank", "p3k3/8/8/8/8/8/8/4K3 w - - 0 1"},
		{"bad side", "4k3/8/8/8/8/8/8/4K3 x - - 0 1"},
		{"bad castling char", "4k3/8/8/8/8/8/8/4K3 w X - 0 1"},
		{"duplicate castling", "r3k2r/8/8/8/8/8/8/R3K2R w KK - 0 1"},
		{"castling without rook", "4k3/8/8/8/8/8/8/4K3 w K - 0 1"},
		{"castling without king home", "r3k2r/8/8/8/8/8/8/R2K3R w KQ - 0 1"},
		{"bad ep square", "4k3/8/8/8/8/8/8/4K3 w - e9 0 1"},
		{"ep wrong rank", "4k3/8/8/8/8/8/8/4K3 w - e4 0 1"},
		{"ep wrong side", "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e3 0 1"},
		{"ep without pushed pawn", "k7/8/8/3P4/8/8/8/K7 w - e6 0 1"},
		{"ep without pushed pawn black", "k7/8/8/8/8/8/4P3/K7 b - e3 0 1"},
		{"ep square occupied", "k7/8/4n3/4p3/8/8/8/K7 w - e6 0 1"},
		{"ep origin occupied", "k7/4p3/8/4p3/8/8/8/K7 w - e6 0 1"},
		{"bad halfmove", "4k3/8/8/8/8/8/8/4K3 w - - x 1"},
		{"fullmove zero", "4k3/8/8/8/8/8/8/4K3 w - - 0 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := board.ParseFEN(tt.fen); err == nil {
				t.Errorf("ParseFEN(%q) succeeded, want error", tt.fen)
			}
		})
	}
}

// An en passant square only enters the key when an enemy pawn can actually
// take it, so positions differing only in a dead ep square hash alike while
// their FENs stay distinct.
func TestEPSquareHashing(t *testing.T) {
	dead, err := board.ParseFEN("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	if err != nil {
		t.Fatal(err)
	}
	noEP, err := board.ParseFEN("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if dead.Key() != noEP.Key() {
		t.Error("uncapturable ep square changed the key")
	}
	if dead.FEN() == noEP.FEN() {
		t.Error("ep square lost in serialization")
	}

	live, err := board.ParseFEN("rnbqkbnr/ppp1pppp/8/8/3pP3/8/PPP2PPP/RNBQKBNR b KQkq e3 0 3")
	if err != nil {
		t.Fatal(err)
	}
	liveNone, err := board.ParseFEN("rnbqkbnr/ppp1pppp/8/8/3pP3/8/PPP2PPP/RNBQKBNR b KQkq - 0 3")
	if err != nil {
		t.Fatal(err)
	}
	if live.Key() == liveNone.Key() {
		t.Error("capturable ep square did not change the key")
	}
}

func TestStartPosition(t *testing.T) {
	p := board.StartPosition()
	if p.FEN() != board.StartFEN {
		t.Fatalf("StartPosition FEN = %q", p.FEN())
	}
	if p.Occupied().Count() != 32 {
		t.Errorf("occupied count = %d, want 32", p.Occupied().Count())
	}
	if p.KingSquare(board.White) != board.SquareE1 || p.KingSquare(board.Black) != board.SquareE8 {
		t.Error("kings misplaced")
	}
	if p.InCheck(board.White) || p.InCheck(board.Black) {
		t.Error("start position reported as check")
	}
}
