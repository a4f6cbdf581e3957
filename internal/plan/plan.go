// Package plan builds the derived task list — one root task plus a
// bounded fan-out of level-1 and level-2 subtree tasks — that the
// coordinator dispatches for a single position.
package plan

import (
	"fmt"

	"github.com/hailam/chessanalyze/internal/position"
)

// Plan is one task description the coordinator will hand to the pool.
type Plan struct {
	FEN      string
	Depth    int
	MultiPV  int
	TaskID   string
	RootMove string
	Moves    []string
}

// Generate walks pos's legal moves (root plan, then one level-1 plan and up
// to a per-root-move share of level-2 plans for each), stopping as soon as
// maxPlans tasks have been emitted. Plan order is preserved exactly as
// produced, since it drives palette assignment downstream.
func Generate(pos *position.Adapter, maxPlans, maxDepth int) []Plan {
	rootMoves := pos.LegalMoves()

	plans := make([]Plan, 0, maxPlans)
	plans = append(plans, Plan{
		FEN:     pos.FEN(),
		Depth:   maxDepth,
		MultiPV: minInt(8, len(rootMoves)),
		TaskID:  "root",
	})

	if len(plans) >= maxPlans || len(rootMoves) == 0 {
		return plans
	}

	remainingBudget := maxPlans - len(plans)
	repliesPerRoot := ceilDiv(remainingBudget, len(rootMoves))

	l1n, l2n := 0, 0
	for _, rm := range rootMoves {
		if len(plans) >= maxPlans {
			break
		}
		if err := pos.Make(rm); err != nil {
			continue
		}

		replies := pos.LegalMoves()
		l1n++
		plans = append(plans, Plan{
			FEN:      pos.FEN(),
			Depth:    maxInt(1, maxDepth-1),
			MultiPV:  minInt(4, len(replies)),
			TaskID:   fmt.Sprintf("l1-%d", l1n),
			RootMove: rm.SAN,
			Moves:    []string{rm.SAN},
		})

		if len(plans) < maxPlans {
			limit := repliesPerRoot
			if limit > len(replies) {
				limit = len(replies)
			}
			for i := 0; i < limit && len(plans) < maxPlans; i++ {
				rp := replies[i]
				if err := pos.Make(rp); err != nil {
					continue
				}
				l2n++
				plans = append(plans, Plan{
					FEN:      pos.FEN(),
					Depth:    maxInt(1, maxDepth-2),
					MultiPV:  1,
					TaskID:   fmt.Sprintf("l2-%d", l2n),
					RootMove: rm.SAN,
					Moves:    []string{rm.SAN, rp.SAN},
				})
				pos.Unmake()
			}
		}

		pos.Unmake()
	}

	return plans
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
