package board_test

import (
	"math/rand"
	"testing"

	"github.com/notnil/chess"

	"github.com/itotallyrock/thermite/internal/board"
)

// Random walks compared move-for-move against an independent generator.
// Any divergence in either direction fails with the offending position.
func TestMovegenCrossCheck(t *testing.T) {
	fens := []string{
		board.StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	}
	uciNote := chess.UCINotation{}
	rng := rand.New(rand.NewSource(42))
	for _, fen := range fens {
		p, err := board.ParseFEN(fen)
		if err != nil {
			t.Fatal(err)
		}
		fenOpt, err := chess.FEN(fen)
		if err != nil {
			t.Fatal(err)
		}
		game := chess.NewGame(fenOpt)

		for ply := 0; ply < 40; ply++ {
			var list board.MoveList
			p.LegalMoves(&list)
			valid := game.ValidMoves()

			theirs := make(map[string]*chess.Move, len(valid))
			for _, m := range valid {
				theirs[uciNote.Encode(game.Position(), m)] = m
			}
			if list.Len != len(theirs) {
				t.Fatalf("%s ply %d (%s): generated %d moves, reference has %d",
					fen, ply, p.FEN(), list.Len, len(theirs))
			}
			for i := 0; i < list.Len; i++ {
				if _, ok := theirs[list.Moves[i].UCI()]; !ok {
					t.Fatalf("%s ply %d (%s): generated %s, reference rejects it",
						fen, ply, p.FEN(), list.Moves[i])
				}
			}
			if list.Len == 0 {
				break
			}

			pick := list.Moves[rng.Intn(list.Len)]
			p.MakeMove(pick)
			if err := game.Move(theirs[pick.UCI()]); err != nil {
				t.Fatalf("%s ply %d: reference refused %s: %v", fen, ply, pick, err)
			}
		}
	}
}
