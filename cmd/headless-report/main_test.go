package main

import (
	"context"
	"strings"
	"testing"

	"github.com/pedrotorchio/beaver-apocalypse/internal/game"
)

func TestSurvivalCounts(t *testing.T) {
	grades := []game.CombatantGrade{
		{Label: "B0", Survived: true},
		{Label: "B1", Survived: false},
		{Label: "B2", Survived: true},
	}

	total, survivors := survivalCounts(grades)
	if total != 3 || survivors != 2 {
		t.Fatalf("expected total=3 survivors=2, got total=%d survivors=%d", total, survivors)
	}
}

func TestDetectStalemate_TrueWhenTurnsPassWithoutDamage(t *testing.T) {
	rs := runStats{
		decidedTick: -1,
		turns:       stalemateMinTurns + 4,
		shots:       10,
		outOfBounds: 6,
	}

	isStalemate, reason := detectStalemate(rs)
	if !isStalemate {
		t.Fatalf("expected stalemate=true, got false (reason=%s)", reason)
	}
	if !strings.Contains(reason, "shots_leaving_field") {
		t.Fatalf("expected reason to mention shots_leaving_field, got: %s", reason)
	}
}

func TestDetectStalemate_FalseWhenDecided(t *testing.T) {
	rs := runStats{decidedTick: 900, turns: 40}

	if isStalemate, reason := detectStalemate(rs); isStalemate {
		t.Fatalf("expected stalemate=false for a decided match (reason=%s)", reason)
	}
}

func TestDetectStalemate_FalseWhenDamageDealt(t *testing.T) {
	rs := runStats{decidedTick: -1, turns: 40, shots: 20, totalDamage: 12}

	if isStalemate, reason := detectStalemate(rs); isStalemate {
		t.Fatalf("expected stalemate=false once damage is dealt (reason=%s)", reason)
	}
}

func TestConfigForSeed_Deterministic(t *testing.T) {
	a := configForSeed(7, 3)
	b := configForSeed(7, 3)
	if a != b {
		t.Fatalf("expected identical configs for the same seed")
	}
	if a.Players != 3 {
		t.Fatalf("expected players=3, got %d", a.Players)
	}
	if err := a.Validate(); err != nil {
		t.Fatalf("seeded config invalid: %v", err)
	}
}

func TestRunMatch_LockstepProducesStats(t *testing.T) {
	rs, err := runMatch(context.Background(), 1, 42, 1200, 2, true)
	if err != nil {
		t.Fatalf("runMatch: %v", err)
	}
	if rs.ticks == 0 {
		t.Fatalf("expected ticks to advance")
	}
	if rs.total != 2 {
		t.Fatalf("expected 2 graded beavers, got %d", rs.total)
	}
	if rs.shots == 0 {
		t.Fatalf("expected the AIs to fire within 1200 ticks")
	}
}

func TestCollectStats_KnockoutMarkers(t *testing.T) {
	ms, err := game.NewMatchSim(
		game.WithFlatGround(400),
		game.WithGroundedCombatant(300),
		game.WithGroundedCombatant(900),
	)
	if err != nil {
		t.Fatalf("match sim: %v", err)
	}
	ms.SimLog.Add(5, "B1", "damage", "killed", "by B0", 0)
	ms.SimLog.Add(10, "B0", "damage", "hit", "12.0 from B1 at d=20.0", 12)
	ms.SimLog.Add(60, "B1", "projectile", "fired", "angle=0.70 power=55.0", 55)
	ms.SimLog.Add(80, "B0", "damage", "killed", "by B1", 0)

	rs := collectStats(0, 1, ms, -1)

	if rs.firstKOTick != 5 || rs.lastKOTick != 80 {
		t.Fatalf("expected first_ko=5 last_ko=80, got %d and %d", rs.firstKOTick, rs.lastKOTick)
	}
	if !strings.Contains(rs.finale, "fired") || !strings.Contains(rs.finale, "[T=080]") {
		t.Errorf("finale misses the lead-up to the last knockout:\n%s", rs.finale)
	}
	if strings.Contains(rs.finale, "[T=010]") {
		t.Errorf("finale reaches back past %d ticks:\n%s", finaleTicks, rs.finale)
	}
}

func TestCollectStats_NoKnockout(t *testing.T) {
	ms, err := game.NewMatchSim(game.WithFlatGround(400), game.WithGroundedCombatant(300))
	if err != nil {
		t.Fatalf("match sim: %v", err)
	}

	rs := collectStats(0, 1, ms, -1)

	if rs.lastKOTick != -1 || rs.finale != "" {
		t.Fatalf("expected no knockout markers, got last_ko=%d finale=%q", rs.lastKOTick, rs.finale)
	}
}
