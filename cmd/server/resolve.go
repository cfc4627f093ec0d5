package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hazyhaar/waymark-resolver/pkg/digitraffic"
	"github.com/hazyhaar/waymark-resolver/pkg/resolve"
)

// cmdResolve resolves one query from the command line: the same cascade the
// server runs, plus an optional forecast printout for the winning section.
func cmdResolve(args []string) {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	list := fs.Bool("candidates", false, "list all candidates instead of resolving to one id")
	max := fs.Int("max", 0, "maximum candidates to list (0 = config default)")
	forecast := fs.Bool("forecast", false, "print the forecast for the resolved section")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: waymark resolve [flags] <query>")
		fs.PrintDefaults()
		os.Exit(2)
	}
	query := fs.Arg(0)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	cfg := loadConfig(*cfgPath, logger)

	resolver, client, cleanup := buildStack(cfg, logger)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if *list {
		records, err := resolver.ResolveCandidates(ctx, query, *max)
		if err != nil {
			fmt.Fprintf(os.Stderr, "candidate resolution failed: %v\n", err)
			os.Exit(1)
		}
		if len(records) == 0 {
			fmt.Println("no matches")
			return
		}
		for i, rec := range records {
			fmt.Printf("%2d. %s  %s", i+1, rec.ID, rec.Description)
			if rec.RoadNumber != nil {
				fmt.Printf("  (road %d", *rec.RoadNumber)
				if rec.RoadSectionNumber != nil {
					fmt.Printf(", section %d", *rec.RoadSectionNumber)
				}
				fmt.Print(")")
			}
			fmt.Println()
		}
		return
	}

	id, err := resolver.Resolve(ctx, query)
	if errors.Is(err, resolve.ErrNoMatch) {
		fmt.Println("no match")
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolution failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(id)

	if *forecast {
		obs, err := client.Observations(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "forecast fetch failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println()
		fmt.Println(digitraffic.FormatForecast(obs[id], cfg.Language))
	}
}
