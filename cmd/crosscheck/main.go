// Command crosscheck runs this engine and an external UCI engine over the
// positions of an EPD perft suite and compares their best moves and scores.
// Different engines legitimately prefer different moves, so move agreement
// is only reported; the run fails when scores diverge past the tolerance or
// the engines disagree about a forced mate.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/freeeve/uci"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/itotallyrock/thermite/internal/board"
	"github.com/itotallyrock/thermite/internal/epd"
	"github.com/itotallyrock/thermite/internal/eval"
	"github.com/itotallyrock/thermite/internal/logx"
	"github.com/itotallyrock/thermite/internal/search"
)

type config struct {
	enginePath string
	depth      int
	hashMB     int
	workers    int
}

// verdict pairs both engines' answers for one suite position.
type verdict struct {
	c        epd.Case
	refMove  string
	refScore int
	refMate  bool
	ourMove  string
	ourScore int32
}

func main() {
	var (
		enginePath = flag.String("engine", "stockfish", "external UCI engine binary")
		suitePath  = flag.String("suite", "", "EPD suite to check")
		depth      = flag.Int("depth", 10, "search depth for both engines")
		hashMB     = flag.Int("hash", 128, "hash table size in MB, per engine")
		tolerance  = flag.Int("tolerance", 75, "allowed score difference in centipawns")
		workers    = flag.Int("workers", 1, "parallel engine pairs")
	)
	flag.Parse()

	if v := os.Getenv("THERMITE_CROSSCHECK_ENGINE"); v != "" {
		*enginePath = v
	}

	logger := logx.NewLogger(os.Stderr)

	if *suitePath == "" {
		fmt.Fprintln(os.Stderr, "usage: crosscheck -suite <file.epd> [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if *workers < 1 {
		*workers = 1
	}

	suite, err := epd.ParseFile(*suitePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("load suite")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config{
		enginePath: *enginePath,
		depth:      *depth,
		hashMB:     *hashMB,
		workers:    *workers,
	}

	logger.Info().
		Str("engine", cfg.enginePath).
		Str("suite", *suitePath).
		Int("positions", len(suite)).
		Int("depth", cfg.depth).
		Int("workers", cfg.workers).
		Msg("crosscheck starting")

	start := time.Now()
	verdicts, err := runChecks(ctx, cfg, suite, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("crosscheck failed")
	}
	if !summarize(logger, verdicts, *tolerance, time.Since(start)) {
		os.Exit(1)
	}
}

// runChecks fans the suite out over worker pairs, each owning one external
// engine process and one searcher.
func runChecks(ctx context.Context, cfg config, suite []epd.Case, log zerolog.Logger) ([]verdict, error) {
	g, gctx := errgroup.WithContext(ctx)

	jobs := make(chan epd.Case)
	g.Go(func() error {
		defer close(jobs)
		for _, c := range suite {
			select {
			case jobs <- c:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	out := make(chan verdict, len(suite))
	for i := 0; i < cfg.workers; i++ {
		g.Go(func() error {
			return runWorker(gctx, cfg, jobs, out, log)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(out)

	verdicts := make([]verdict, 0, len(suite))
	for v := range out {
		verdicts = append(verdicts, v)
	}
	sort.Slice(verdicts, func(i, j int) bool { return verdicts[i].c.Line < verdicts[j].c.Line })
	return verdicts, nil
}

func runWorker(ctx context.Context, cfg config, jobs <-chan epd.Case, out chan<- verdict, log zerolog.Logger) error {
	ext, err := uci.NewEngine(cfg.enginePath)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	defer ext.Close()

	opts := uci.Options{
		Hash:    cfg.hashMB,
		Threads: 1,
		MultiPV: 1,
		Ponder:  false,
		OwnBook: false,
	}
	if err := ext.SetOptions(opts); err != nil {
		return fmt.Errorf("set options: %w", err)
	}

	searcher := search.NewSearcher(search.NewTable(cfg.hashMB), eval.Classical{})

	for c := range jobs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		v, err := checkPosition(ctx, ext, searcher, c, cfg.depth)
		if err != nil {
			return fmt.Errorf("line %d: %w", c.Line, err)
		}
		log.Info().
			Int("line", c.Line).
			Str("ref_move", v.refMove).
			Str("our_move", v.ourMove).
			Int("ref_score", v.refScore).
			Int32("our_score", v.ourScore).
			Msg("position checked")
		out <- v
	}
	return nil
}

// checkPosition asks both engines for their verdict on one position. UCI
// scores are from the side to move on both sides of the comparison, so no
// perspective flip is needed.
func checkPosition(ctx context.Context, ext *uci.Engine, searcher *search.Searcher, c epd.Case, depth int) (verdict, error) {
	if err := ext.SetFEN(c.FEN); err != nil {
		return verdict{}, fmt.Errorf("set FEN: %w", err)
	}
	results, err := ext.GoDepth(depth, uci.HighestDepthOnly)
	if err != nil {
		return verdict{}, fmt.Errorf("reference search: %w", err)
	}
	if len(results.Results) == 0 {
		return verdict{}, fmt.Errorf("no results from engine")
	}
	best := results.Results[0]
	for _, r := range results.Results {
		if r.Depth > best.Depth {
			best = r
		}
	}

	p, err := board.ParseFEN(c.FEN)
	if err != nil {
		return verdict{}, err
	}
	res := searcher.Search(ctx, p, search.Limits{Depth: depth}, nil)

	return verdict{
		c:        c,
		refMove:  results.BestMove,
		refScore: best.Score,
		refMate:  best.Mate,
		ourMove:  res.BestMove.UCI(),
		ourScore: res.Score,
	}, nil
}

func summarize(log zerolog.Logger, verdicts []verdict, tolerance int, elapsed time.Duration) bool {
	var moveAgree, failures, scored, sumDiff, maxDiff int
	for _, v := range verdicts {
		if v.ourMove == v.refMove {
			moveAgree++
		}

		ourMate := search.IsMateScore(v.ourScore)
		if v.refMate || ourMate {
			if v.refMate != ourMate || (v.refScore > 0) != (v.ourScore > 0) {
				failures++
				log.Warn().
					Int("line", v.c.Line).
					Str("fen", v.c.FEN).
					Bool("ref_mate", v.refMate).
					Bool("our_mate", ourMate).
					Int("ref_score", v.refScore).
					Int32("our_score", v.ourScore).
					Msg("mate disagreement")
			}
			continue
		}

		diff := int(v.ourScore) - v.refScore
		if diff < 0 {
			diff = -diff
		}
		scored++
		sumDiff += diff
		if diff > maxDiff {
			maxDiff = diff
		}
		if diff > tolerance {
			failures++
			log.Warn().
				Int("line", v.c.Line).
				Str("fen", v.c.FEN).
				Str("ref_move", v.refMove).
				Str("our_move", v.ourMove).
				Int("diff", diff).
				Msg("score outside tolerance")
		}
	}

	meanDiff := 0.0
	if scored > 0 {
		meanDiff = float64(sumDiff) / float64(scored)
	}
	ev := log.Info()
	if failures > 0 {
		ev = log.Error()
	}
	ev.
		Int("positions", len(verdicts)).
		Int("move_agreement", moveAgree).
		Int("failures", failures).
		Int("max_diff_cp", maxDiff).
		Float64("mean_diff_cp", meanDiff).
		Dur("elapsed", elapsed).
		Msg("crosscheck complete")
	return failures == 0
}
