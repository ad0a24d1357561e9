package agents

import (
	"context"

	"rumbo/internal/models/db_models"
	"rumbo/pkg/llm"
	"rumbo/pkg/tools"
)

type Config struct {
	// EnableWebSearch turns on the research branch before the daily pass.
	// It requires a provider with tool calling.
	EnableWebSearch bool

	// MapReduceMinCities is the destination count at which the daily pass
	// switches from the sequential planner to the per-city fan-out.
	MapReduceMinCities int

	MaxParallelCities int
}

func DefaultConfig() Config {
	return Config{
		EnableWebSearch:    true,
		MapReduceMinCities: 4,
		MaxParallelCities:  4,
	}
}

// Planner wires the generation graphs. Every run owns its state; the planner
// itself is stateless and safe for concurrent use.
type Planner struct {
	client   llm.Client
	searcher tools.WebSearcher
	cfg      Config
}

func NewPlanner(client llm.Client, searcher tools.WebSearcher, cfg Config) *Planner {
	if cfg.MapReduceMinCities <= 0 {
		cfg.MapReduceMinCities = 4
	}
	return &Planner{client: client, searcher: searcher, cfg: cfg}
}

// ProposeRoutes runs the route-proposal node alone and returns two candidate
// routes.
func (p *Planner) ProposeRoutes(ctx context.Context, brief Brief, feedback string, selected *db_models.Route) ([]db_models.Route, error) {
	state := &State{
		Brief:         brief,
		UserFeedback:  feedback,
		SelectedRoute: selected,
	}
	graph := NewGraph(RouteProposalNode(p.client))
	if err := graph.Run(ctx, state); err != nil {
		return nil, err
	}
	return state.Routes, nil
}

// GenerateTrip runs the full pipeline: route selection, trip generation, the
// configured daily path and the deterministic validate/repair pass. The
// daily path is chosen by destination count: one destination takes the
// critique loop, long trips fan out per city, everything else runs the
// sequential planner.
func (p *Planner) GenerateTrip(ctx context.Context, brief Brief, selected *db_models.Route) (*db_models.Trip, error) {
	state := &State{
		Brief:         brief,
		SelectedRoute: selected,
	}

	nodes := []Node{}
	if selected == nil {
		nodes = append(nodes, RouteProposalNode(p.client))
	}
	nodes = append(nodes, TripGeneratorNode(p.client))

	if p.cfg.EnableWebSearch && p.searcher != nil {
		search := SearchPlanNode(p.client, p.searcher)
		search.When = func(s *State) bool {
			return s.Trip != nil && len(s.Trip.Destinations) > 1
		}
		nodes = append(nodes, search)
	}

	nodes = append(nodes, CritiqueNode(p.client), StructureDaysNode(p.client))

	daily := DailyPlannerNode(p.client)
	minCities := p.cfg.MapReduceMinCities
	daily.When = func(s *State) bool {
		return s.Trip != nil && len(s.Trip.Destinations) > 1 && len(s.Trip.Destinations) < minCities
	}
	nodes = append(nodes, daily)

	fanout := CityMapReduceNode(p.client, p.cfg.MaxParallelCities)
	fanout.When = func(s *State) bool {
		return s.Trip != nil && len(s.Trip.Destinations) >= minCities
	}
	nodes = append(nodes, fanout)

	nodes = append(nodes, ValidateRepairNode())

	if err := NewGraph(nodes...).Run(ctx, state); err != nil {
		return nil, err
	}
	return state.Trip, nil
}
