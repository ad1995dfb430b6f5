package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/covertfive/noose/internal/agent"
	"github.com/covertfive/noose/internal/config"
	"github.com/covertfive/noose/internal/logger"
	"github.com/covertfive/noose/internal/render"
	"github.com/covertfive/noose/internal/runner"
	"github.com/covertfive/noose/pkg/noose"
)

func main() {
	logger.Init()
	env := config.Load()

	var (
		agentsFlag    string
		opponentsFlag string
		formatsFlag   string
		numGames      int
		workers       int
		seed          int64
		probeEvery    int
		nProbes       int
		jsonOut       bool
		telemetryPath string
		showRules     bool
	)

	flag.StringVar(&agentsFlag, "agents", strings.Join(agent.LadderNames(), ","), "Comma-separated agents to measure")
	flag.StringVar(&opponentsFlag, "opponents", "stateless", "Comma-separated opponents")
	flag.StringVar(&formatsFlag, "formats", "tabular", "Comma-separated prompt formats (narrative,tabular,ascii,json)")
	flag.IntVar(&numGames, "n", env.Games, "Games per (agent, opponent, format) cell")
	flag.IntVar(&workers, "workers", env.Workers, "Concurrency (parallel games)")
	flag.Int64Var(&seed, "seed", env.BaseSeed, "Base seed; game i uses seed+i")
	flag.IntVar(&probeEvery, "probe-every", env.ProbeEvery, "Comprehension probe frequency in turns (0 disables)")
	flag.IntVar(&nProbes, "probes", env.NProbes, "Questions per probe round")
	flag.BoolVar(&jsonOut, "json", false, "Output results as JSON")
	flag.StringVar(&telemetryPath, "telemetry", "", "Write per-game JSONL telemetry to this file")
	flag.BoolVar(&showRules, "rules", false, "Print the rules reference and exit")

	flag.Parse()

	rules := noose.DefaultConfig()
	if showRules {
		fmt.Println(render.RulesReference(rules))
		return
	}

	seeds := make([]int64, numGames)
	for i := range seeds {
		seeds[i] = seed + int64(i)
	}

	cfg := runner.Config{
		Agents:     splitList(agentsFlag),
		Opponents:  splitList(opponentsFlag),
		Formats:    splitList(formatsFlag),
		Seeds:      seeds,
		ProbeEvery: probeEvery,
		NProbes:    nProbes,
		Workers:    workers,
		Rules:      rules,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("Shutting down...")
		cancel()
	}()

	results, err := runner.Run(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Benchmark failed")
	}

	if telemetryPath != "" {
		if err := writeTelemetry(telemetryPath, results); err != nil {
			log.Error().Err(err).Str("path", telemetryPath).Msg("Telemetry write failed")
		}
	}

	if jsonOut {
		printJSON(results)
	} else {
		printSummary(results, cfg)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func writeTelemetry(path string, results []*runner.GameResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	for _, r := range results {
		if r.Telemetry == nil {
			continue
		}
		if err := r.Telemetry.WriteJSONL(f); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(results []*runner.GameResult, cfg runner.Config) {
	agg := runner.Aggregate(results)

	fmt.Printf("\nResults (%d games):\n", len(results))
	flagged := 0
	for _, r := range results {
		if r.Flagged {
			flagged++
		}
	}
	if flagged > 0 {
		fmt.Printf("  (%d games flagged for low comprehension)\n", flagged)
	}

	for _, name := range cfg.Agents {
		stats, ok := agg[name]
		if !ok {
			continue
		}
		fmt.Printf("\n  %s:\n", name)
		metricNames := make([]string, 0, len(stats))
		for m := range stats {
			metricNames = append(metricNames, m)
		}
		sort.Strings(metricNames)
		for _, m := range metricNames {
			// The measured side plays p1; its opponent's mirror metrics stay
			// available under p2_ for debugging but clutter the summary.
			if strings.HasPrefix(m, "p2_") {
				continue
			}
			st := stats[m]
			fmt.Printf("    %-28s %.4f +/- %.4f (n=%d)\n", m, st.Mean, st.CI95, st.N)
		}
	}

	if len(cfg.Formats) > 1 {
		sensitivity := runner.FormatSensitivity(results)
		fmt.Printf("\n  Format sensitivity (CV of per-format means):\n")
		for _, name := range cfg.Agents {
			cv, ok := sensitivity[name]
			if !ok {
				continue
			}
			fmt.Printf("    %s:\n", name)
			metricNames := make([]string, 0, len(cv))
			for m := range cv {
				metricNames = append(metricNames, m)
			}
			sort.Strings(metricNames)
			for _, m := range metricNames {
				if strings.HasPrefix(m, "p2_") {
					continue
				}
				fmt.Printf("      %-26s %.4f\n", m, cv[m])
			}
		}
	}

	wins := make(map[string]int)
	games := make(map[string]int)
	for _, r := range results {
		games[r.Agent]++
		if r.Winner == "p1" {
			wins[r.Agent]++
		}
	}
	fmt.Printf("\n  Win rates (as p1):\n")
	for _, name := range cfg.Agents {
		if games[name] == 0 {
			continue
		}
		fmt.Printf("    %-20s %d/%d\n", name, wins[name], games[name])
	}
}

func printJSON(results []*runner.GameResult) {
	out := struct {
		Total     int                                `json:"total"`
		Results   []*runner.GameResult               `json:"results"`
		Aggregate map[string]map[string]runner.Stats `json:"aggregate"`
	}{
		Total:     len(results),
		Results:   results,
		Aggregate: runner.Aggregate(results),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(out)
}
