package agent_editor_fx

import (
	"go.uber.org/fx"

	"rumbo/internal/agents"
	"rumbo/internal/repositories"
	"rumbo/internal/services"
	"rumbo/pkg/llm"
	mem "rumbo/pkg/memcache"
)

var Module = fx.Provide(provideAgentService)

func provideAgentService(
	store mem.CheckpointStore,
	itineraryRepo repositories.ItineraryRepository,
	client llm.Client,
	planner *agents.Planner,
) services.AgentServiceInterface {
	return services.NewAgentService(store, itineraryRepo, client, planner)
}
