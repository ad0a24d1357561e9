package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"rumbo/cmd/fx/account_fx"
	"rumbo/cmd/fx/agent_editor_fx"
	"rumbo/cmd/fx/agents_fx"
	"rumbo/cmd/fx/controllers_fx"
	"rumbo/cmd/fx/db_fx"
	"rumbo/cmd/fx/itinerary_fx"
	"rumbo/cmd/fx/llm_fx"
	"rumbo/cmd/fx/memcache_fx"
	"rumbo/cmd/fx/tools_fx"
	"rumbo/cmd/fx/traveler_test_fx"
	"rumbo/internal/api/controllers"
	"rumbo/pkg/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	app := fx.New(
		db_fx.Module,
		llm_fx.Module,
		tools_fx.Module,
		memcache_fx.Module,
		agents_fx.Module,
		account_fx.Module,
		traveler_test_fx.Module,
		itinerary_fx.Module,
		agent_editor_fx.Module,
		controllers_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := os.Getenv("PORT")
				if port == "" {
					port = "8080"
				}
				log.Printf("Starting HTTP server on :%s", port)
				if err := engine.Run(":" + port); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("Stopping HTTP server")
			return nil
		},
	})
}

func ProvideRouter(
	accountController *controllers.AccountController,
	testController *controllers.TravelerTestController,
	itineraryController *controllers.ItineraryController,
	agentController *controllers.AgentController) *gin.Engine {

	r := gin.Default()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.CORSMiddleware())

	RegisterRoutes(r, accountController, testController, itineraryController, agentController)

	return r
}

func RegisterRoutes(r *gin.Engine,
	accountController *controllers.AccountController,
	testController *controllers.TravelerTestController,
	itineraryController *controllers.ItineraryController,
	agentController *controllers.AgentController) {

	accounts := r.Group("/accounts")
	accounts.POST("/register", accountController.Register)
	accounts.POST("/login", accountController.Login)

	test := r.Group("/traveler-test")
	test.GET("/questions", testController.ListQuestions)
	test.POST("", middleware.JWTAuthMiddleware(), testController.StartTest)
	test.POST("/:test_id/submit", middleware.JWTAuthMiddleware(), testController.SubmitTest)

	itineraries := r.Group("/itineraries")
	itineraries.POST("/route", itineraryController.ProposeRoutes)
	itineraries.POST("/generate", itineraryController.Generate)
	itineraries.GET("/agent/:thread_id", agentController.GetState)
	itineraries.GET("/:id", itineraryController.GetItinerary)
	itineraries.GET("/:id/similar", itineraryController.FindSimilar)
	itineraries.POST("/:id/accommodations", middleware.JWTAuthMiddleware(), itineraryController.AddAccommodation)
	itineraries.POST("/:id/agent/:thread_id/messages", agentController.SendMessage)
	itineraries.POST("/:id/agent/:thread_id/messages/stream", agentController.StreamMessage)
}
