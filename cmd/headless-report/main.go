package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/pedrotorchio/beaver-apocalypse/internal/ai"
	"github.com/pedrotorchio/beaver-apocalypse/internal/game"
)

// stalemateMinTurns is how many turns must pass without damage before a
// run is called a stalemate.
const stalemateMinTurns = 12

// finaleTicks is how much log leading up to the last knockout is printed.
const finaleTicks = 30

type runStats struct {
	runIndex int
	seed     int64
	matchID  string

	ticks       int
	turns       int
	decidedTick int
	outcome     game.MatchOutcomeReason

	shots        int
	directHits   int
	terrainHits  int
	outOfBounds  int
	skippedTurns int
	cellsCleared int
	totalDamage  float64
	firstHitTick int
	firstKOTick  int
	lastKOTick   int
	finale       string

	survivors int
	total     int
	grades    []game.CombatantGrade
}

func main() {
	var (
		runs     int
		ticks    int
		seedBase int64
		seedStep int64
		players  int
		parallel int
		lockstep bool
	)
	flag.IntVar(&runs, "runs", 5, "number of headless matches")
	flag.IntVar(&ticks, "ticks", 36000, "tick limit per match")
	flag.Int64Var(&seedBase, "seed-base", 42, "base seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.IntVar(&players, "players", 2, "beavers per match")
	flag.IntVar(&parallel, "parallel", runtime.NumCPU(), "matches simulated at once")
	flag.BoolVar(&lockstep, "lockstep", false, "let the AIs decide inside the tick instead of on their own goroutines")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "headless"})
	if runs <= 0 || ticks <= 0 || players <= 0 {
		logger.Fatal("-runs, -ticks and -players must be > 0")
	}
	if parallel <= 0 {
		parallel = 1
	}

	fmt.Printf("=== Headless Match Report ===\n")
	fmt.Printf("runs=%d ticks=%d players=%d seed_base=%d seed_step=%d lockstep=%t\n\n",
		runs, ticks, players, seedBase, seedStep, lockstep)

	all := make([]runStats, runs)
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(parallel)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		g.Go(func() error {
			rs, err := runMatch(ctx, i+1, seed, ticks, players, lockstep)
			if err != nil {
				return fmt.Errorf("run %d: %w", i+1, err)
			}
			all[i] = rs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Fatal("simulation failed", "err", err)
	}

	for _, rs := range all {
		printRun(rs)
	}
	printAggregate(all)
}

// configForSeed varies the landscape per run; everything else stays default.
func configForSeed(seed int64, players int) game.Config {
	rng := rand.New(rand.NewSource(seed)) // #nosec G404 -- report variety
	cfg := game.DefaultConfig()
	cfg.Players = players
	cfg.Surface.A1 = 20 + rng.Float64()*40
	cfg.Surface.P1 = 60 + rng.Float64()*40
	cfg.Surface.A2 = 10 + rng.Float64()*30
	cfg.Surface.P2 = 25 + rng.Float64()*25
	return cfg
}

func runMatch(ctx context.Context, runIndex int, seed int64, ticks, players int, lockstep bool) (runStats, error) {
	cfg := configForSeed(seed, players)

	bots := make([]*ai.Ballistic, players)
	sources := make([]game.IntentSource, players)
	for i := range bots {
		bot := ai.NewBallistic(i, cfg, seed*31+int64(i), nil)
		bots[i] = bot
		if lockstep {
			sources[i] = game.IntentFunc(func(s game.Snapshot, _ int) (game.Intent, bool) { return bot.Decide(s) })
		} else {
			sources[i] = bot.Source()
		}
	}

	ms, err := game.NewMatchSim(game.WithConfig(cfg), game.WithIntents(sources...))
	if err != nil {
		return runStats{}, err
	}

	botCtx, cancel := context.WithCancel(ctx)
	bg, botCtx := errgroup.WithContext(botCtx)
	if !lockstep {
		for _, b := range bots {
			bg.Go(func() error { return b.Run(botCtx) })
		}
	}

	decided := -1
	for i := 0; i < ticks; i++ {
		if ctx.Err() != nil {
			break
		}
		snap := ms.RunTicks(1)
		if lockstep {
			for _, b := range bots {
				b.Learn(snap)
			}
		} else {
			for _, b := range bots {
				b.Observe(snap)
			}
			// The tick never waits on the bots; yielding just gives them a chance.
			runtime.Gosched()
		}
		if snap.Decided {
			decided = snap.Tick
			break
		}
	}
	cancel()
	if err := bg.Wait(); err != nil {
		return runStats{}, err
	}

	return collectStats(runIndex, seed, ms, decided), nil
}

func collectStats(runIndex int, seed int64, ms *game.MatchSim, decided int) runStats {
	m := ms.Match
	entries := ms.SimLog.Entries()
	rs := runStats{
		runIndex:     runIndex,
		seed:         seed,
		matchID:      m.ID().String(),
		ticks:        m.Tick(),
		turns:        m.Turn().Turn,
		decidedTick:  decided,
		outcome:      m.Outcome(),
		shots:        ms.SimLog.CountCategory("projectile", "fired"),
		directHits:   ms.SimLog.CountCategory("projectile", game.OutcomeHitCombatant.String()),
		terrainHits:  ms.SimLog.CountCategory("projectile", game.OutcomeHitTerrain.String()),
		outOfBounds:  ms.SimLog.CountCategory("projectile", game.OutcomeOutOfBounds.String()),
		skippedTurns: ms.SimLog.CountCategory("turn", "skipped"),
		firstHitTick: firstTick(entries, "damage", "hit", ""),
		firstKOTick:  firstTick(entries, "damage", "killed", ""),
		lastKOTick:   -1,
		grades:       m.Grades(),
	}
	if ko, ok := ms.SimLog.LastOf("damage", "killed"); ok {
		rs.lastKOTick = ko.Tick
		rs.finale = ms.SimLog.FormatRange(ko.Tick-finaleTicks, ko.Tick)
	}
	for _, e := range ms.SimLog.Filter("terrain", "crater") {
		rs.cellsCleared += int(e.NumVal)
	}
	for _, e := range ms.SimLog.Filter("damage", "hit") {
		rs.totalDamage += e.NumVal
	}
	rs.total, rs.survivors = survivalCounts(rs.grades)
	return rs
}

func firstTick(entries []game.SimLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

func survivalCounts(grades []game.CombatantGrade) (total, survivors int) {
	for _, g := range grades {
		total++
		if g.Survived {
			survivors++
		}
	}
	return total, survivors
}

// detectStalemate flags matches where turns keep passing without anyone
// getting hurt.
func detectStalemate(rs runStats) (bool, string) {
	if rs.decidedTick >= 0 {
		return false, "decided"
	}
	if rs.turns < stalemateMinTurns {
		return false, "too_few_turns"
	}
	if rs.totalDamage > 0 {
		return false, "damage_dealt"
	}
	reasons := []string{"no_damage"}
	if rs.shots == 0 {
		reasons = append(reasons, "no_shots")
	} else if rs.outOfBounds*2 >= rs.shots {
		reasons = append(reasons, "shots_leaving_field")
	}
	return true, strings.Join(reasons, "+")
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d match=%s) ---\n", rs.runIndex, rs.seed, shortID(rs.matchID))
	fmt.Printf("result: %s (%s) survivors=%d/%d decided_tick=%d ticks=%d turns=%d\n",
		rs.outcome.Outcome, rs.outcome.Description, rs.survivors, rs.total, rs.decidedTick, rs.ticks, rs.turns)
	fmt.Printf("shots: fired=%d direct=%d terrain=%d out_of_bounds=%d skipped_turns=%d\n",
		rs.shots, rs.directHits, rs.terrainHits, rs.outOfBounds, rs.skippedTurns)
	fmt.Printf("markers: first_hit=%d first_ko=%d last_ko=%d damage=%.0f cells_cleared=%d\n",
		rs.firstHitTick, rs.firstKOTick, rs.lastKOTick, rs.totalDamage, rs.cellsCleared)
	if rs.finale != "" {
		fmt.Print("finale:\n" + rs.finale)
	}
	if stale, reason := detectStalemate(rs); stale {
		fmt.Printf("STALEMATE: %s\n", reason)
	}
	fmt.Print(game.FormatGrades(rs.grades))
	fmt.Println()
}

func printAggregate(all []runStats) {
	var (
		totalShots, totalDirect, totalTerrain, totalOOB int
		totalTurns, stalemates                          int
		totalDamage                                     float64
		decidedTicks, firstHitTicks                     []int
	)
	outcomes := map[string]int{}

	type beaverAgg struct {
		scoreSum float64
		count    int
		survived int
		good     map[string]int
		bad      map[string]int
	}
	beaverAggs := map[string]*beaverAgg{}

	for _, rs := range all {
		totalShots += rs.shots
		totalDirect += rs.directHits
		totalTerrain += rs.terrainHits
		totalOOB += rs.outOfBounds
		totalTurns += rs.turns
		totalDamage += rs.totalDamage
		outcomes[rs.outcome.Outcome.String()]++
		if rs.decidedTick >= 0 {
			decidedTicks = append(decidedTicks, rs.decidedTick)
		}
		if rs.firstHitTick >= 0 {
			firstHitTicks = append(firstHitTicks, rs.firstHitTick)
		}
		if stale, _ := detectStalemate(rs); stale {
			stalemates++
		}
		for _, g := range rs.grades {
			ag, ok := beaverAggs[g.Label]
			if !ok {
				ag = &beaverAgg{good: map[string]int{}, bad: map[string]int{}}
				beaverAggs[g.Label] = ag
			}
			ag.scoreSum += g.Score
			ag.count++
			if g.Survived {
				ag.survived++
			}
			for _, t := range g.GoodTraits {
				ag.good[t]++
			}
			for _, t := range g.BadTraits {
				ag.bad[t]++
			}
		}
	}

	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d outcomes=%s stalemates=%d\n", len(all), joinCounts(outcomes), stalemates)
	fmt.Printf("avg_per_run: shots=%.1f direct=%.1f terrain=%.1f out_of_bounds=%.1f turns=%.1f damage=%.1f\n",
		avg(totalShots, len(all)), avg(totalDirect, len(all)), avg(totalTerrain, len(all)),
		avg(totalOOB, len(all)), avg(totalTurns, len(all)), totalDamage/float64(max(len(all), 1)))
	fmt.Printf("marker_avg_ticks: decided=%s first_hit=%s\n", avgTickString(decidedTicks), avgTickString(firstHitTicks))

	fmt.Println("\n=== Aggregate Beaver Performance ===")
	type labelScore struct {
		label    string
		avgScore float64
		survRate float64
		topGood  string
		topBad   string
	}
	var rows []labelScore
	for label, ag := range beaverAggs {
		avgS := 0.0
		survR := 0.0
		if ag.count > 0 {
			avgS = ag.scoreSum / float64(ag.count)
			survR = float64(ag.survived) / float64(ag.count) * 100
		}
		rows = append(rows, labelScore{label, avgS, survR, topTrait(ag.good), topTrait(ag.bad)})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].label < rows[j].label
	})
	for _, r := range rows {
		fmt.Printf("  %s  %s (avg=%.1f)  survival=%.0f%%", r.label, game.PerfLetterGrade(r.avgScore), r.avgScore, r.survRate)
		if r.topGood != "" {
			fmt.Printf("  good=%s", r.topGood)
		}
		if r.topBad != "" {
			fmt.Printf("  bad=%s", r.topBad)
		}
		fmt.Println()
	}

	if len(all) > 0 {
		fmt.Println("\n--- Summary (across all runs) ---")
		fmt.Print(game.FormatGradesSummary(collectAllGrades(all)))
	}
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func topTrait(counts map[string]int) string {
	if len(counts) == 0 {
		return ""
	}
	best := ""
	bestN := 0
	for k, v := range counts {
		if v > bestN || v == bestN && k < best {
			best = k
			bestN = v
		}
	}
	return fmt.Sprintf("%s(%d)", best, bestN)
}

func collectAllGrades(all []runStats) []game.CombatantGrade {
	var out []game.CombatantGrade
	for _, rs := range all {
		out = append(out, rs.grades...)
	}
	return out
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func joinCounts(m map[string]int) string {
	if len(m) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, m[k])
	}
	return strings.Join(parts, ",")
}
