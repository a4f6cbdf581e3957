package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/hailam/chessanalyze/internal/coordinator"
	"github.com/hailam/chessanalyze/internal/palette"
)

const startingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func main() {
	fen := flag.String("fen", startingFEN, "position to analyze, in FEN")
	depth := flag.Int("depth", 10, "max search depth for the root plan")
	maxPlans := flag.Int("plans", 64, "plan budget: total tasks to dispatch")
	workers := flag.Int("workers", 4, "worker pool size")
	flag.Parse()

	var final []coordinator.Line
	onUpdate := func(lines []coordinator.Line, stats coordinator.Stats) {
		final = lines
		if stats.Final {
			log.Printf("done: %d tasks, %d nodes, %d nps, %.2fs", stats.Tasks, stats.Nodes, stats.NPS, stats.ElapsedSeconds)
		}
	}

	c := coordinator.New(*workers, *maxPlans, *depth, onUpdate)
	if err := c.Start(*fen); err != nil {
		log.Fatalf("analyze %q: %v", *fen, err)
	}

	for i, l := range final {
		fmt.Printf("%2d. %-8s %7s  %s\n", i+1, l.RootMove, palette.FormatScore(l.Score), strings.Join(l.Moves, " "))
	}
}
