package config

import (
	"os"
	"strconv"
)

// Config holds benchmark process configuration loaded from environment
// variables. Gameplay parameters live in pkg/noose's Config; this only
// covers harness-level defaults the CLI can override with flags.
type Config struct {
	Games      int   // games per (agent, opponent, format) cell
	Workers    int   // parallel games
	BaseSeed   int64 // first seed; seed i = BaseSeed + i
	ProbeEvery int   // comprehension probe frequency in turns
	NProbes    int   // questions per probe round
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Games:      envIntOrDefault("BENCH_GAMES", 10),
		Workers:    envIntOrDefault("BENCH_WORKERS", 4),
		BaseSeed:   int64(envIntOrDefault("BENCH_BASE_SEED", 1)),
		ProbeEvery: envIntOrDefault("BENCH_PROBE_EVERY", 5),
		NProbes:    envIntOrDefault("BENCH_N_PROBES", 5),
	}
}

func envIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
