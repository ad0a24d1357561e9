package itinerary_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"rumbo/internal/agents"
	"rumbo/internal/repositories"
	"rumbo/internal/services"
	"rumbo/pkg/llm"
	"rumbo/pkg/tools"
)

var Module = fx.Provide(
	provideItineraryRepo,
	provideAccommodationRepo,
	provideItineraryService,
)

func provideItineraryRepo(db *gorm.DB) repositories.ItineraryRepository {
	return repositories.NewItineraryRepository(db)
}

func provideAccommodationRepo(db *gorm.DB) repositories.AccommodationRepository {
	return repositories.NewAccommodationRepository(db)
}

func provideItineraryService(
	planner *agents.Planner,
	itineraryRepo repositories.ItineraryRepository,
	accommodationRepo repositories.AccommodationRepository,
	accountRepo repositories.AccountRepository,
	embedder llm.Embedder,
	geocoder tools.Geocoder,
	images tools.ImageSearcher,
) services.ItineraryServiceInterface {
	return services.NewItineraryService(planner, itineraryRepo, accommodationRepo, accountRepo, embedder, geocoder, images)
}
