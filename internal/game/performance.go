package game

import (
	"fmt"
	"sort"
	"strings"
)

// Performance grading thresholds.
const (
	perfMinShotsForAccuracy = 2
	perfSharpshooterPct     = 50.0
	perfClearLeaderShare    = 0.6
	perfMinTurnsForPacifist = 2
)

// ---------------------------------------------------------------------------
// PerfTracker: per-combatant, per-tick accumulator
// ---------------------------------------------------------------------------

// PerfTracker accumulates performance metrics for one combatant over a match.
type PerfTracker struct {
	Label     string
	ID        int
	MaxHealth float64

	// Lifecycle.
	TicksAlive  int
	Survived    bool
	HealthAtEnd float64

	// State-time counters.
	TicksGrounded int
	TicksAirborne int
	TicksCharging int
	TicksHurt     int

	// Shooting.
	Turns       int
	Shots       int
	DirectHits  int
	Kills       int
	DamageDealt float64
	DamageTaken float64
	SelfDamage  float64
}

// NewPerfTracker creates a tracker for c.
func NewPerfTracker(c *Combatant) *PerfTracker {
	return &PerfTracker{
		Label:     c.Label(),
		ID:        c.ID(),
		MaxHealth: c.MaxHealth(),
	}
}

// Update samples c once per tick.
func (pt *PerfTracker) Update(c *Combatant) {
	if !c.IsAlive() {
		return
	}
	pt.TicksAlive++
	if c.Grounded() {
		pt.TicksGrounded++
	} else {
		pt.TicksAirborne++
	}
	switch c.State() {
	case StateCharging:
		pt.TicksCharging++
	case StateHurt:
		pt.TicksHurt++
	}
}

// Finalize snapshots end-of-match state.
func (pt *PerfTracker) Finalize(c *Combatant) {
	pt.Survived = c.IsAlive()
	pt.HealthAtEnd = c.Health()
}

// ---------------------------------------------------------------------------
// CombatantGrade: computed performance result
// ---------------------------------------------------------------------------

// CombatantGrade is the computed performance grade for one combatant.
type CombatantGrade struct {
	Label    string
	ID       int
	Grade    string  // A+, A, B+, B, C+, C, D, F
	Score    float64 // 0-100
	Survived bool

	// Component scores (0-100; -1 = not enough data to grade).
	AccuracyScore   float64
	DamageScore     float64
	SurvivalScore   float64
	DisciplineScore float64

	GoodTraits []string
	BadTraits  []string

	Shots       int
	DirectHits  int
	DamageDealt float64
	DamageTaken float64
}

// ---------------------------------------------------------------------------
// Grading logic
// ---------------------------------------------------------------------------

// GradePerformance computes grades from accumulated tracker data, best first.
func GradePerformance(trackers map[int]*PerfTracker) []CombatantGrade {
	grades := make([]CombatantGrade, 0, len(trackers))
	for _, pt := range trackers {
		grades = append(grades, computeGrade(pt))
	}
	sort.Slice(grades, func(i, j int) bool {
		if grades[i].Score != grades[j].Score {
			return grades[i].Score > grades[j].Score
		}
		return grades[i].ID < grades[j].ID
	})
	return grades
}

func computeGrade(pt *PerfTracker) CombatantGrade {
	g := CombatantGrade{
		Label:           pt.Label,
		ID:              pt.ID,
		Survived:        pt.Survived,
		Shots:           pt.Shots,
		DirectHits:      pt.DirectHits,
		DamageDealt:     pt.DamageDealt,
		DamageTaken:     pt.DamageTaken,
		AccuracyScore:   -1,
		DisciplineScore: -1,
	}

	maxHealth := pt.MaxHealth
	if maxHealth <= 0 {
		maxHealth = 1
	}
	if pt.Shots >= perfMinShotsForAccuracy {
		g.AccuracyScore = perfClamp(perfFrac(pt.DirectHits, pt.Shots) * 100)
	}
	g.DamageScore = perfClamp(pt.DamageDealt / maxHealth * 100)
	g.SurvivalScore = perfClamp(pt.HealthAtEnd / maxHealth * 100)
	if pt.Shots > 0 {
		g.DisciplineScore = perfClamp(100 - pt.SelfDamage/maxHealth*200)
	}

	weighted := []struct{ score, weight float64 }{
		{g.AccuracyScore, 0.30},
		{g.DamageScore, 0.35},
		{g.SurvivalScore, 0.20},
		{g.DisciplineScore, 0.15},
	}
	var sum, weights float64
	for _, w := range weighted {
		if w.score < 0 {
			continue
		}
		sum += w.score * w.weight
		weights += w.weight
	}
	if weights > 0 {
		g.Score = sum / weights
	}
	g.Grade = PerfLetterGrade(g.Score)
	g.GoodTraits, g.BadTraits = perfDetectTraits(pt, g)
	return g
}

func perfDetectTraits(pt *PerfTracker, g CombatantGrade) (good, bad []string) {
	if g.AccuracyScore >= perfSharpshooterPct {
		good = append(good, "sharpshooter")
	}
	if pt.Kills > 0 {
		good = append(good, "finisher")
	}
	if pt.Shots > 0 && pt.DamageTaken == 0 {
		good = append(good, "untouched")
	}
	if pt.SelfDamage > 0 {
		bad = append(bad, "self_harm")
	}
	if pt.Shots == 0 && pt.Turns >= perfMinTurnsForPacifist {
		bad = append(bad, "pacifist")
	}
	if !pt.Survived && pt.DamageDealt == 0 {
		bad = append(bad, "liability")
	}
	return good, bad
}

// ---------------------------------------------------------------------------
// Formatting
// ---------------------------------------------------------------------------

// FormatGrades returns a human-readable performance report.
func FormatGrades(grades []CombatantGrade) string {
	var sb strings.Builder
	sb.WriteString("\n=== Beaver Performance Grades ===\n")

	for _, g := range grades {
		status := "survived"
		if !g.Survived {
			status = "KIA"
		}
		fmt.Fprintf(&sb, "  %-3s  %-4s  [%s]  shots=%d  direct=%d  dealt=%.0f  taken=%.0f\n",
			g.Grade, g.Label, status, g.Shots, g.DirectHits, g.DamageDealt, g.DamageTaken)

		if len(g.GoodTraits) > 0 {
			fmt.Fprintf(&sb, "       Good: %s\n", strings.Join(g.GoodTraits, ", "))
		}
		if len(g.BadTraits) > 0 {
			fmt.Fprintf(&sb, "       Bad:  %s\n", strings.Join(g.BadTraits, ", "))
		}

		var scores []string
		if g.AccuracyScore >= 0 {
			scores = append(scores, fmt.Sprintf("Accuracy=%.0f", g.AccuracyScore))
		}
		scores = append(scores, fmt.Sprintf("Damage=%.0f", g.DamageScore))
		scores = append(scores, fmt.Sprintf("Survival=%.0f", g.SurvivalScore))
		if g.DisciplineScore >= 0 {
			scores = append(scores, fmt.Sprintf("Discipline=%.0f", g.DisciplineScore))
		}
		fmt.Fprintf(&sb, "       Scores: %s\n", strings.Join(scores, "  "))
	}

	return sb.String()
}

// FormatGradesSummary returns a compact summary across many graded matches.
func FormatGradesSummary(grades []CombatantGrade) string {
	if len(grades) == 0 {
		return "  no grades\n"
	}
	var (
		sb        strings.Builder
		scoreSum  float64
		survived  int
		goodCount = map[string]int{}
		badCount  = map[string]int{}
	)
	for _, g := range grades {
		scoreSum += g.Score
		if g.Survived {
			survived++
		}
		for _, t := range g.GoodTraits {
			goodCount[t]++
		}
		for _, t := range g.BadTraits {
			badCount[t]++
		}
	}
	avg := scoreSum / float64(len(grades))
	fmt.Fprintf(&sb, "  avg_score=%.1f (%s)  survived=%d/%d\n",
		avg, PerfLetterGrade(avg), survived, len(grades))
	if len(goodCount) > 0 {
		fmt.Fprintf(&sb, "    Top good: %s\n", perfTopTraits(goodCount, 4))
	}
	if len(badCount) > 0 {
		fmt.Fprintf(&sb, "    Top bad:  %s\n", perfTopTraits(badCount, 4))
	}
	return sb.String()
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func perfFrac(num, denom int) float64 {
	if denom <= 0 {
		return 0
	}
	return float64(num) / float64(denom)
}

func perfClamp(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// PerfLetterGrade maps a 0-100 score to a letter grade.
func PerfLetterGrade(score float64) string {
	switch {
	case score >= 93:
		return "A+"
	case score >= 85:
		return "A"
	case score >= 78:
		return "B+"
	case score >= 70:
		return "B"
	case score >= 62:
		return "C+"
	case score >= 55:
		return "C"
	case score >= 45:
		return "D"
	default:
		return "F"
	}
}

func perfTopTraits(counts map[string]int, n int) string {
	type kv struct {
		trait string
		count int
	}
	var items []kv
	for k, v := range counts {
		items = append(items, kv{k, v})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].count != items[j].count {
			return items[i].count > items[j].count
		}
		return items[i].trait < items[j].trait
	})
	if len(items) > n {
		items = items[:n]
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprintf("%s(%d)", it.trait, it.count)
	}
	return strings.Join(parts, ", ")
}
