package traveler_test_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"rumbo/internal/repositories"
	"rumbo/internal/services"
)

var Module = fx.Provide(provideTravelerTestRepo, provideTravelerTestService)

func provideTravelerTestRepo(db *gorm.DB) repositories.TravelerTestRepository {
	return repositories.NewTravelerTestRepository(db)
}

func provideTravelerTestService(repo repositories.TravelerTestRepository) services.TravelerTestServiceInterface {
	return services.NewTravelerTestService(repo)
}
