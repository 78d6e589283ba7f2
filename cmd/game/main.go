package main

import (
	"flag"
	"math"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/joho/godotenv"

	"github.com/pedrotorchio/beaver-apocalypse/internal/ai"
	"github.com/pedrotorchio/beaver-apocalypse/internal/game"
	"github.com/pedrotorchio/beaver-apocalypse/internal/view"
)

func main() {
	var (
		players   int
		computers int
		scale     float64
		keepGoing bool
		debug     bool
	)
	flag.IntVar(&players, "players", 0, "number of beavers (0 keeps the configured value)")
	flag.IntVar(&computers, "cpu", 1, "how many of the last beavers the computer plays")
	flag.Float64Var(&scale, "scale", 1, "window scale")
	flag.BoolVar(&keepGoing, "keep-playing", false, "keep ticking after the match is decided")
	flag.BoolVar(&debug, "debug", false, "debug logging")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "beavers",
	})
	if debug {
		logger.SetLevel(log.DebugLevel)
	}

	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("load .env", "err", err)
	}
	cfg := game.DefaultConfig()
	if players > 0 {
		cfg.Players = players
	}
	if err := game.ApplyEnv(&cfg, os.LookupEnv); err != nil {
		logger.Fatal("config", "err", err)
	}

	keyboard := view.NewKeyboardSource()
	sources := make([]game.IntentSource, cfg.Players)
	var bots []*ai.Ballistic
	for i := range sources {
		if i >= cfg.Players-computers {
			bot := ai.NewBallistic(i, cfg, time.Now().UnixNano()+int64(i), logger)
			bots = append(bots, bot)
			sources[i] = bot.Source()
			continue
		}
		sources[i] = keyboard
	}

	m, err := game.NewMatch(cfg,
		game.WithLogger(logger),
		game.WithIntentSources(sources...),
	)
	if err != nil {
		logger.Fatal("setup", "err", err)
	}

	g := view.New(m, view.Options{StopWhenDecided: !keepGoing, Logger: logger})
	w, h := g.Size()
	ebiten.SetWindowTitle("Beaver Apocalypse")
	ebiten.SetWindowSize(int(float64(w)*scale), int(float64(h)*scale))
	ebiten.SetTPS(int(math.Round(1 / cfg.TimeStep)))

	runner := newBotRunner(m, bots)
	err = ebiten.RunGame(runner.wrap(g))
	// Fatal exits without running defers.
	runner.stop()
	if err != nil && !view.IsTermination(err) {
		logger.Fatal("run", "err", err)
	}
}
