package main

import (
	"context"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/sync/errgroup"

	"github.com/pedrotorchio/beaver-apocalypse/internal/ai"
	"github.com/pedrotorchio/beaver-apocalypse/internal/game"
	"github.com/pedrotorchio/beaver-apocalypse/internal/view"
)

// botRunner keeps the computer players thinking on their own goroutines and
// hands them each published snapshot.
type botRunner struct {
	match  *game.Match
	bots   []*ai.Ballistic
	cancel context.CancelFunc
	group  *errgroup.Group
}

func newBotRunner(m *game.Match, bots []*ai.Ballistic) *botRunner {
	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)
	for _, b := range bots {
		group.Go(func() error { return b.Run(ctx) })
	}
	return &botRunner{match: m, bots: bots, cancel: cancel, group: group}
}

func (r *botRunner) stop() {
	r.cancel()
	_ = r.group.Wait()
}

func (r *botRunner) wrap(g *view.Game) ebiten.Game {
	return &observedGame{Game: g, runner: r}
}

// observedGame forwards every tick's snapshot to the bots.
type observedGame struct {
	*view.Game
	runner *botRunner
}

func (o *observedGame) Update() error {
	if err := o.Game.Update(); err != nil {
		return err
	}
	snap := o.runner.match.Snapshot()
	for _, b := range o.runner.bots {
		b.Observe(snap)
	}
	return nil
}
