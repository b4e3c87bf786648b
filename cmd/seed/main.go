package main

import (
	"context"
	"log"
	"os"

	"ai-coaching-be/internal/entity"
	"ai-coaching-be/internal/repository/implementation"
	"ai-coaching-be/pkg/database"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Seeds the first back-office account. Reads SEED_ADMIN_EMAIL and
// SEED_ADMIN_PASSWORD; no-op when the account already exists.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}
	email := os.Getenv("SEED_ADMIN_EMAIL")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("Error: SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD must be set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	ctx := context.Background()
	adminRepo := implementation.NewAdminUserRepository(db)

	existing, err := adminRepo.FindByEmail(ctx, email)
	if err != nil {
		log.Fatalf("Error: Lookup failed: %v", err)
	}
	if existing != nil {
		log.Printf("Admin %s already exists, nothing to do", email)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Error: Hashing failed: %v", err)
	}

	if err := adminRepo.Create(ctx, &entity.AdminUser{
		Email:        email,
		PasswordHash: string(hash),
	}); err != nil {
		log.Fatalf("Error: Insert failed: %v", err)
	}

	log.Printf("Admin %s created", email)
}
