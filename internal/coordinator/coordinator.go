// Package coordinator dispatches a position's whole plan fan-out to a
// worker pool and incrementally aggregates per-root-move best lines as
// task results arrive.
package coordinator

import (
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hailam/chessanalyze/internal/engine"
	"github.com/hailam/chessanalyze/internal/palette"
	"github.com/hailam/chessanalyze/internal/plan"
	"github.com/hailam/chessanalyze/internal/pool"
	"github.com/hailam/chessanalyze/internal/position"
)

// Line is one ranked candidate move surfaced to the caller.
type Line struct {
	RootMove  string
	Score     int
	Moves     []string
	Color     string
	PlanCount int
	Depth     int
}

// Stats accompanies every emitted update.
type Stats struct {
	Nodes          int
	NPS            int
	ElapsedSeconds float64
	Tasks          int
	Total          int
	Final          bool
}

// OnUpdate is invoked on every aggregated update, including the final one.
type OnUpdate func(lines []Line, stats Stats)

// Coordinator runs one position's analysis at a time: it generates the
// plan fan-out, dispatches every task concurrently to a freshly sized
// pool, and calls onUpdate as results settle and once more, finally, when
// every task has settled.
type Coordinator struct {
	workerCount int
	maxPlans    int
	maxDepth    int
	onUpdate    OnUpdate

	mu              sync.Mutex
	activePool      *pool.Pool
	tasksByID       map[string]plan.Plan
	resultsByID     map[string]engine.TaskResult
	totalNodes      int
	started         time.Time
	colorIdx        int
	colorByRootMove map[string]string
}

// New builds an idle coordinator.
func New(workerCount, maxPlans, maxDepth int, onUpdate OnUpdate) *Coordinator {
	return &Coordinator{
		workerCount: workerCount,
		maxPlans:    maxPlans,
		maxDepth:    maxDepth,
		onUpdate:    onUpdate,
	}
}

// Start stops any prior run, loads fen, builds the plan fan-out, and
// dispatches every task concurrently. It blocks until every task has
// settled, calling onUpdate on each arrival and once more with final=true
// at the end.
func (c *Coordinator) Start(fen string) error {
	c.Stop()

	pos, err := position.Load(fen)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.activePool = pool.New(c.workerCount)
	c.tasksByID = make(map[string]plan.Plan)
	c.resultsByID = make(map[string]engine.TaskResult)
	c.totalNodes = 0
	c.colorIdx = 0
	c.colorByRootMove = make(map[string]string)
	c.started = time.Now()
	active := c.activePool
	c.mu.Unlock()

	plans := plan.Generate(pos, c.maxPlans, c.maxDepth)

	futures := make([]<-chan engine.TaskResult, len(plans))
	for i, p := range plans {
		c.mu.Lock()
		c.tasksByID[p.TaskID] = p
		c.mu.Unlock()
		futures[i] = active.Dispatch(engine.Task{
			FEN:     p.FEN,
			Depth:   p.Depth,
			MultiPV: p.MultiPV,
			TaskID:  p.TaskID,
		})
	}

	done := make(chan engine.TaskResult)
	var wg sync.WaitGroup
	for _, f := range futures {
		wg.Add(1)
		go func(f <-chan engine.TaskResult) {
			defer wg.Done()
			done <- <-f
		}(f)
	}
	go func() {
		wg.Wait()
		close(done)
	}()

	for r := range done {
		c.mu.Lock()
		if c.activePool == active {
			c.resultsByID[r.TaskID] = r
			c.totalNodes += r.Nodes
			c.emitLocked(false)
		}
		c.mu.Unlock()
	}

	c.mu.Lock()
	c.emitLocked(true)
	c.mu.Unlock()

	return nil
}

// Stop terminates the active pool, if any, discarding any results that
// arrive afterward.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	active := c.activePool
	c.activePool = nil
	c.mu.Unlock()
	if active != nil {
		active.Terminate()
	}
}

// colorForLocked returns the stable palette color for a root move, assigning
// the next unused palette slot on first sight and caching it so the same
// root move keeps the same color across every emitted update. Caller must
// hold c.mu.
func (c *Coordinator) colorForLocked(rootMove string) string {
	if col, ok := c.colorByRootMove[rootMove]; ok {
		return col
	}
	col := palette.Color(c.colorIdx)
	c.colorIdx++
	c.colorByRootMove[rootMove] = col
	return col
}

// emitLocked rebuilds the ranked line list from every settled result so
// far and calls onUpdate. Caller must hold c.mu.
func (c *Coordinator) emitLocked(final bool) {
	lines := make(map[string]*Line)
	order := make([]string, 0)

	if root, ok := c.resultsByID["root"]; ok {
		rootLines := root.Lines
		if len(rootLines) > 8 {
			rootLines = rootLines[:8]
		}
		for _, rl := range rootLines {
			key := rl.Move.SAN
			lines[key] = &Line{
				RootMove: key,
				Score:    rl.Score,
				Moves:    []string{rl.Move.SAN},
				Color:    c.colorForLocked(key),
				Depth:    c.maxDepth,
			}
			order = append(order, key)
		}
	}

	taskIDs := make([]string, 0, len(c.resultsByID))
	for taskID := range c.resultsByID {
		taskIDs = append(taskIDs, taskID)
	}
	sort.Strings(taskIDs)

	for _, taskID := range taskIDs {
		r := c.resultsByID[taskID]
		if taskID == "root" || len(r.Lines) == 0 {
			continue
		}
		p, ok := c.tasksByID[taskID]
		if !ok {
			continue
		}

		isLevel2 := strings.HasPrefix(taskID, "l2-")
		switch {
		case strings.HasPrefix(taskID, "l1-"), isLevel2:
		default:
			continue
		}

		best := r.Lines[0]
		taskScore := best.Score
		if isLevel2 {
			taskScore = -best.Score
		}

		existing, found := lines[p.RootMove]
		if !found {
			moves := append(append([]string{}, p.Moves...), best.Move.SAN)
			existing = &Line{
				RootMove: p.RootMove,
				Score:    taskScore,
				Moves:    moves,
				Color:    c.colorForLocked(p.RootMove),
				Depth:    p.Depth,
			}
			lines[p.RootMove] = existing
			order = append(order, p.RootMove)
		} else {
			candidate := append(append([]string{}, p.Moves...), best.Move.SAN)
			if len(candidate) > len(existing.Moves) && candidate[len(candidate)-1] != existing.Moves[len(existing.Moves)-1] {
				existing.Moves = append(existing.Moves, candidate[len(candidate)-1])
			}
		}
		existing.PlanCount++
	}

	out := make([]Line, 0, len(order))
	for _, k := range order {
		out = append(out, *lines[k])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })

	elapsed := time.Since(c.started).Seconds()
	nps := 0
	if elapsed > 0 {
		nps = int(math.Round(float64(c.totalNodes) / elapsed))
	}

	stats := Stats{
		Nodes:          c.totalNodes,
		NPS:            nps,
		ElapsedSeconds: elapsed,
		Tasks:          len(c.resultsByID),
		Total:          c.maxPlans,
		Final:          final,
	}

	if c.onUpdate != nil {
		c.onUpdate(out, stats)
	}
}
