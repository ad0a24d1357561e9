package controllers_fx

import (
	"go.uber.org/fx"

	"rumbo/internal/api/controllers"
)

var Module = fx.Provide(
	controllers.NewAccountController,
	controllers.NewTravelerTestController,
	controllers.NewItineraryController,
	controllers.NewAgentController,
)
