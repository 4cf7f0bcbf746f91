// cmd/chinchon plays bot-only games locally and prints their results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/jason-s-yu/chinchon/internal/game"
	"github.com/jason-s-yu/chinchon/internal/models"
	_ "github.com/joho/godotenv/autoload"
	"github.com/pterm/pterm"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s simulate [-n N] [-seed S] [-deck FILE] [-max P] [-flexible] [-v]\n", os.Args[0])
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 || os.Args[1] != "simulate" {
		usage()
	}

	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	n := fs.Int("n", 1, "number of games to play")
	seed := fs.Int64("seed", 0, "seed of the first game; 0 picks one from the clock")
	deckPath := fs.String("deck", "", "scripted deck file dealt at the start of every round")
	maxPoints := fs.Int("max", game.DefaultSettings().MaxTotalPoints, "total points that end the game")
	flexible := fs.Bool("flexible", false, "allow closing with two threes")
	workers := fs.Int("workers", runtime.NumCPU(), "games played concurrently")
	verbose := fs.Bool("v", false, "log every game action")
	fs.Parse(os.Args[2:])

	if *n < 1 {
		pterm.Error.Println("-n must be at least 1")
		os.Exit(2)
	}

	settings := game.DefaultSettings()
	settings.MaxTotalPoints = *maxPoints
	settings.FlexibleEnding = *flexible

	var deck []models.Card
	if *deckPath != "" {
		f, err := os.Open(*deckPath)
		if err != nil {
			pterm.Error.Printfln("open deck: %v", err)
			os.Exit(1)
		}
		deck, err = models.ParseDeck(f)
		f.Close()
		if err != nil {
			pterm.Error.Printfln("%v", err)
			os.Exit(1)
		}
	}

	var logger *logrus.Logger
	if *verbose {
		logger = logrus.New()
		logger.SetLevel(logrus.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := simulate(ctx, *n, *seed, *workers, settings, deck, logger)
	if err != nil {
		pterm.Error.Printfln("simulation failed: %v", err)
		os.Exit(1)
	}

	if *n == 1 {
		printRounds(results[0])
	}
	if err := printResults(results); err != nil {
		pterm.Error.Printfln("%v", err)
		os.Exit(1)
	}
	printSummary(results)
}

// simResult is one finished game.
type simResult struct {
	Index  int
	Seed   int64
	Result game.GameResult
	Rounds []game.RoundSummary
}

// simulate plays n games, at most workers at a time. Game i uses seed+i when a seed is
// given; scripted decks make every game identical.
func simulate(ctx context.Context, n int, seed int64, workers int, settings game.Settings, deck []models.Card, logger *logrus.Logger) ([]simResult, error) {
	results := make([]simResult, n)
	eg, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		eg.SetLimit(workers)
	}
	for i := 0; i < n; i++ {
		i := i
		eg.Go(func() error {
			gameSeed := seed
			if seed != 0 {
				gameSeed = seed + int64(i)
			}
			g := game.NewChinchonGame(settings, gameSeed, logger)
			g.Deck = deck
			if err := g.Run(ctx); err != nil {
				return fmt.Errorf("game %d: %w", i+1, err)
			}
			g.Mu.Lock()
			rounds := append([]game.RoundSummary(nil), g.Rounds...)
			g.Mu.Unlock()
			results[i] = simResult{Index: i + 1, Seed: gameSeed, Result: g.Result(), Rounds: rounds}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
