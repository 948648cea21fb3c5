package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/itotallyrock/thermite/internal/board"
	"github.com/itotallyrock/thermite/internal/epd"
)

func main() {
	var (
		fen     = flag.String("fen", board.StartFEN, "position to count")
		depth   = flag.Int("depth", 5, "perft depth")
		divide  = flag.Bool("divide", false, "print per-root-move subtree counts")
		suite   = flag.String("suite", "", "EPD suite to verify (overrides -fen)")
		workers = flag.Int("workers", runtime.NumCPU(), "root-parallel workers (1 = sequential)")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *suite != "" {
		if !runSuite(ctx, *suite, *workers) {
			os.Exit(1)
		}
		return
	}

	p, err := board.ParseFEN(*fen)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse fen: %v\n", err)
		os.Exit(1)
	}

	start := time.Now()
	if *divide {
		entries := p.Divide(*depth)
		var total uint64
		for _, e := range entries {
			fmt.Printf("%s: %d\n", e.Move, e.Nodes)
			total += e.Nodes
		}
		report(total, time.Since(start))
		return
	}

	nodes, err := countNodes(ctx, p, *depth, *workers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "perft: %v\n", err)
		os.Exit(1)
	}
	report(nodes, time.Since(start))
}

func countNodes(ctx context.Context, p *board.Position, depth, workers int) (uint64, error) {
	if workers <= 1 {
		return p.Perft(depth), nil
	}
	return p.ParallelPerft(ctx, depth, workers)
}

func report(nodes uint64, elapsed time.Duration) {
	nps := float64(nodes) / elapsed.Seconds()
	fmt.Printf("%d nodes in %s (%.0f nps)\n", nodes, elapsed.Round(time.Millisecond), nps)
}

// runSuite verifies every expected count in the suite and reports per-depth
// pass/fail lines. Returns false on any mismatch or error.
func runSuite(ctx context.Context, path string, workers int) bool {
	cases, err := epd.ParseFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse suite: %v\n", err)
		return false
	}

	pass := true
	var totalNodes uint64
	start := time.Now()
	for _, c := range cases {
		if ctx.Err() != nil {
			fmt.Fprintln(os.Stderr, "interrupted")
			return false
		}
		p, err := board.ParseFEN(c.FEN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "line %d: %v\n", c.Line, err)
			return false
		}
		for depth := 1; depth <= c.MaxDepth(); depth++ {
			want, ok := c.Counts[depth]
			if !ok {
				continue
			}
			got, err := countNodes(ctx, p, depth, workers)
			if err != nil {
				fmt.Fprintf(os.Stderr, "line %d: %v\n", c.Line, err)
				return false
			}
			totalNodes += got
			if got == want {
				fmt.Printf("ok   line %-4d depth %d: %d\n", c.Line, depth, got)
			} else {
				fmt.Printf("FAIL line %-4d depth %d: got %d, want %d\n", c.Line, depth, got, want)
				pass = false
			}
		}
	}
	report(totalNodes, time.Since(start))
	if pass {
		fmt.Println("suite passed")
	} else {
		fmt.Println("suite FAILED")
	}
	return pass
}
