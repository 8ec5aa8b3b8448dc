package database

import (
	"fmt"
	"log"
	"time"

	"github.com/deceroacien/backend/app/models"
	"github.com/deceroacien/backend/internal/pkg/env"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

var DB *gorm.DB

func SetupDatabase() {
	var err error
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		env.GetEnv("DB_HOST", "127.0.0.1"),
		env.GetEnv("DB_USER", ""),
		env.GetEnv("DB_PASSWORD", ""),
		env.GetEnv("DB_NAME", ""),
		env.GetEnv("DB_PORT", "5432"),
		env.GetEnv("DB_SSLMODE", "disable"),
	)

	for i := 0; i < maxRetries; i++ {
		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			DB.AutoMigrate(
				&models.User{},
				&models.Product{},
				&models.Order{},
				&models.Payment{},
				&models.ProcessedPayment{},
				&models.Enrollment{},
				&models.WebhookEvent{},
				&models.AuditLog{},
				&models.DownloadLead{},
			)

			return
		}

		log.Printf("Failed to connect to database (try %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			log.Printf("Retrying in %v...", retryDelay)
			time.Sleep(retryDelay)
		}
	}

	if err != nil {
		panic(err)
	}
}

// GetDB returns the shared GORM handle. SetupDatabase must have run first.
func GetDB() *gorm.DB {
	return DB
}
