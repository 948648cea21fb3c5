// Command bookgen builds an opening book from PGN game files (plain or
// .pgn.zst). Games are filtered by rating and result, replayed through the
// engine's legal move generator, and tallied into a TBK1 book.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/freeeve/pgn/v3"
	"github.com/rs/zerolog"

	"github.com/itotallyrock/thermite/internal/board"
	"github.com/itotallyrock/thermite/internal/book"
	"github.com/itotallyrock/thermite/internal/logx"
)

func main() {
	var (
		out      = flag.String("out", "book.tbk", "output book path")
		minElo   = flag.Int("min-elo", 2000, "minimum rating for both players")
		maxPly   = flag.Int("max-ply", 24, "plies recorded per game")
		minGames = flag.Int("min-games", 2, "games required to keep a move")
	)
	flag.Parse()

	if v := os.Getenv("BOOKGEN_MIN_ELO"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*minElo = n
		}
	}

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: bookgen [flags] <games.pgn[.zst]> ...")
		os.Exit(2)
	}

	logger := logx.NewLogger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	builder := book.NewBuilder(*minGames, *maxPly)
	for _, path := range flag.Args() {
		if err := ingestFile(ctx, logger, builder, path, *minElo, *maxPly); err != nil {
			logger.Error().Err(err).Str("file", path).Msg("ingest failed")
			os.Exit(1)
		}
		if ctx.Err() != nil {
			logger.Warn().Msg("interrupted, writing what we have")
			break
		}
	}

	if err := builder.WriteFile(*out); err != nil {
		logger.Fatal().Err(err).Msg("write book")
	}
	logger.Info().
		Str("path", *out).
		Int("games", builder.Games()).
		Int("tallies", builder.Len()).
		Msg("book written")
}

// ingestFile streams one PGN file into the builder.
func ingestFile(ctx context.Context, log zerolog.Logger, b *book.Builder, path string, minElo, maxPly int) error {
	log.Info().Str("file", path).Int("min_elo", minElo).Msg("starting ingest")

	start := time.Now()
	var added, skipped int64
	lastLog := time.Now()

	parser := pgn.Games(path)

	stopped := false
gameLoop:
	for game := range parser.Games {
		select {
		case <-ctx.Done():
			if !stopped {
				parser.Stop()
				stopped = true
			}
			break gameLoop
		default:
		}

		result, ok := book.ParseResult(game.Tags["Result"])
		if !ok {
			skipped++
			continue
		}
		if parseRating(game.Tags["WhiteElo"]) < minElo || parseRating(game.Tags["BlackElo"]) < minElo {
			skipped++
			continue
		}

		moves, err := uciMoves(game, maxPly)
		if err != nil {
			log.Debug().Err(err).Msg("unplayable game skipped")
			skipped++
			continue
		}
		if len(moves) == 0 {
			skipped++
			continue
		}
		if err := b.AddGame(moves, result); err != nil {
			log.Debug().Err(err).Msg("game rejected")
			skipped++
			continue
		}
		added++

		if time.Since(lastLog) > 10*time.Second {
			elapsed := time.Since(start)
			log.Info().
				Str("file", filepath.Base(path)).
				Int64("games", added).
				Int64("skipped", skipped).
				Int("tallies", b.Len()).
				Float64("games_per_sec", float64(added)/elapsed.Seconds()).
				Msg("ingest progress")
			lastLog = time.Now()
		}
	}

	if err := parser.Err(); err != nil {
		return err
	}

	log.Info().
		Str("file", filepath.Base(path)).
		Int64("games", added).
		Int64("skipped", skipped).
		Dur("elapsed", time.Since(start)).
		Msg("file ingest complete")
	return nil
}

// uciMoves converts a parsed game to UCI strings by replaying it on the
// parser's board and the engine's side by side, matching each result by
// piece placement. The parser validates its own SAN; the engine's
// generator decides what is playable.
func uciMoves(game *pgn.Game, maxPly int) ([]string, error) {
	ref := pgn.NewStartingPosition()
	mine := board.StartPosition()
	var moves []string
	for i, mv := range game.Moves {
		if maxPly > 0 && i >= maxPly {
			break
		}
		if err := pgn.ApplyMove(ref, mv); err != nil {
			return nil, fmt.Errorf("ply %d: %w", i+1, err)
		}
		m, err := matchMove(mine, ref.ToFEN())
		if err != nil {
			return nil, fmt.Errorf("ply %d: %w", i+1, err)
		}
		moves = append(moves, m.UCI())
		mine.MakeMove(m)
	}
	return moves, nil
}

// matchMove finds the legal move whose application reproduces the reference
// placement and side to move. From a fixed parent position that move is
// unique: distinct legal moves always differ somewhere on the board.
func matchMove(p *board.Position, refFEN string) (board.Move, error) {
	want := placementSide(refFEN)
	var list board.MoveList
	p.LegalMoves(&list)
	for _, m := range list.Slice() {
		p.MakeMove(m)
		got := placementSide(p.FEN())
		p.UnmakeMove()
		if got == want {
			return m, nil
		}
	}
	return board.NoMove, fmt.Errorf("no legal move reaches %q", refFEN)
}

// placementSide keeps the first two FEN fields, sidestepping clock and
// castling notation differences between the two FEN writers.
func placementSide(fen string) string {
	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return fen
	}
	return fields[0] + " " + fields[1]
}

func parseRating(s string) int {
	if s == "" || s == "?" || s == "-" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
