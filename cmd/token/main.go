// cmd/token/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/your-org/apparel-store/internal/config"
	"github.com/your-org/apparel-store/internal/domain/user"
	"github.com/your-org/apparel-store/internal/infrastructure/database/postgres"
	"github.com/your-org/apparel-store/internal/pkg/auth"
	"github.com/your-org/apparel-store/internal/pkg/logger"
)

func main() {
	email := flag.String("email", "", "email of the user to issue a token for")
	flag.Parse()

	if *email == "" {
		log.Fatal("Usage: go run ./cmd/token -email admin@example.com")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logr := logger.New(cfg.Logging)

	db, err := postgres.NewConnection(cfg, logr)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	u, err := user.NewService(db.GetDB()).GetByEmail(context.Background(), *email)
	if err != nil {
		log.Fatalf("Failed to load user: %v", err)
	}

	token, err := auth.NewJWTManager(cfg.JWT).GenerateAccessToken(u.ID, u.Email, u.IsAdmin)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	fmt.Printf("User: %s (id %d, admin %t)\n", u.Email, u.ID, u.IsAdmin)
	fmt.Printf("Expires in: %s\n", cfg.JWT.AccessTokenExpiry)
	fmt.Println(token)
}
