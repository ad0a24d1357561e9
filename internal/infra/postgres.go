package infra

import (
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"rumbo/internal/models/db_models"
)

// postgresConfig translates driver errors so unique violations surface as
// gorm.ErrDuplicatedKey to the repositories.
func postgresConfig() *gorm.Config {
	return &gorm.Config{TranslateError: true}
}

func InitPostgresql() *gorm.DB {
	dsn := os.Getenv("POSTGRES_URL")

	connectionPool, err := gorm.Open(postgres.Open(dsn), postgresConfig())
	if err != nil {
		log.Printf("Error connecting to database: %v", err)
		log.Fatal("Error connecting to database")
	}

	if err := connectionPool.AutoMigrate(
		&db_models.Account{},
		&db_models.TravelerType{},
		&db_models.Question{},
		&db_models.QuestionOption{},
		&db_models.QuestionOptionScore{},
		&db_models.UserTravelerTest{},
		&db_models.UserAnswer{},
		&db_models.Itinerary{},
		&db_models.Accommodation{},
		&db_models.ItineraryEmbedding{},
	); err != nil {
		log.Printf("Error running migrations: %v", err)
	}

	return connectionPool
}

func ClosePostgresql(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting database instance: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("PostgreSQL database connection closed successfully")
	}
}
