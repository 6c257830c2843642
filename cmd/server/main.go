package main

import (
	"context"
	"log"
	"time"

	"github.com/acadialab/appointbook/internal/config"
	"github.com/acadialab/appointbook/internal/entity"
	"github.com/acadialab/appointbook/internal/live"
	"github.com/acadialab/appointbook/internal/server"
	"github.com/acadialab/appointbook/pkg/database"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	if cfg.AppEnv == "development" {
		if err := seedAdminUser(db); err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
	}

	feed := connectFeed(cfg.RedisURL)

	srv := server.NewServer(db, feed)
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Account{},
		&entity.Profile{},
		&entity.Appointment{},
	)
}

// connectFeed prefers Redis so change events fan out across processes; without
// it the in-process feed still keeps single-process deployments live.
func connectFeed(redisURL string) live.Feed {
	if redisURL == "" {
		log.Println("REDIS_URL not set, using in-process change feed")
		return live.NewMemoryFeed()
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis unreachable (%v), using in-process change feed", err)
		return live.NewMemoryFeed()
	}

	return live.NewRedisFeed(client)
}

func seedAdminUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.Account{}).
		Where("email = ?", "admin@appointbook.local").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping seed")
		return nil
	}

	password := "admin123"
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	account := entity.Account{
		Email:        "admin@appointbook.local",
		PasswordHash: string(hashedPasswordBytes),
	}
	if err := db.Create(&account).Error; err != nil {
		return err
	}

	profile := entity.Profile{
		UID:   account.UID.String(),
		Name:  "Administrator",
		Email: account.Email,
		Role:  entity.RoleAdmin,
	}
	if err := db.Create(&profile).Error; err != nil {
		return err
	}

	log.Println("✅ Admin user seeded successfully")
	log.Println("   Email: admin@appointbook.local")
	log.Println("   Password: admin123")

	return nil
}
