package game

type MatchOutcome int

const (
	MatchInconclusive MatchOutcome = iota
	MatchVictory
	MatchDraw
)

func (o MatchOutcome) String() string {
	switch o {
	case MatchVictory:
		return "victory"
	case MatchDraw:
		return "draw"
	case MatchInconclusive:
		return "inconclusive"
	default:
		return "unknown"
	}
}

type MatchOutcomeReason struct {
	Outcome     MatchOutcome
	WinnerID    int // -1 unless Outcome is MatchVictory
	Survivors   int
	Total       int
	LeaderID    int // highest health among survivors, -1 if none
	Description string
}

func DetermineMatchOutcome(combatants []*Combatant) MatchOutcomeReason {
	total := len(combatants)
	survivors := 0
	leader := -1
	leaderHealth := 0.0
	healthSum := 0.0

	for _, c := range combatants {
		if !c.IsAlive() {
			continue
		}
		survivors++
		healthSum += c.Health()
		if leader < 0 || c.Health() > leaderHealth {
			leader = c.ID()
			leaderHealth = c.Health()
		}
	}

	reason := MatchOutcomeReason{
		Outcome:   MatchInconclusive,
		WinnerID:  -1,
		Survivors: survivors,
		Total:     total,
		LeaderID:  leader,
	}

	switch {
	case total == 0:
		reason.Description = "inconclusive_no_combatants"
	case survivors == 0:
		reason.Outcome = MatchDraw
		reason.Description = "mutual_annihilation"
	case survivors == 1 && total > 1:
		reason.Outcome = MatchVictory
		reason.WinnerID = leader
		reason.Description = "last_beaver_standing"
	case survivors == 1:
		reason.Description = "inconclusive_solo_match"
	default:
		// Several survivors: report who is ahead without calling it.
		if healthSum > 0 && leaderHealth/healthSum > perfClearLeaderShare {
			reason.Description = "inconclusive_clear_leader"
		} else {
			reason.Description = "inconclusive_insufficient_resolution"
		}
	}
	return reason
}
