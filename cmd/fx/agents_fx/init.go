package agents_fx

import (
	"os"
	"strconv"

	"go.uber.org/fx"

	"rumbo/internal/agents"
	"rumbo/pkg/llm"
	"rumbo/pkg/tools"
)

var Module = fx.Provide(providePlanner)

func providePlanner(client llm.Client, searcher tools.WebSearcher) *agents.Planner {
	cfg := agents.DefaultConfig()
	if os.Getenv("ENABLE_WEB_SEARCH") == "false" {
		cfg.EnableWebSearch = false
	}
	if raw := os.Getenv("MAP_REDUCE_MIN_CITIES"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 1 {
			cfg.MapReduceMinCities = n
		}
	}
	return agents.NewPlanner(client, searcher, cfg)
}
