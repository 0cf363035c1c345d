package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/franciscosanchezn/foodgram-api/internal/config"
	"github.com/franciscosanchezn/foodgram-api/internal/database"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

// Loads the ingredient catalog into the configured database and optionally
// grants the admin role to an existing account.
//
//	go run ./scripts -file data/ingredients.json
//	go run ./scripts -file data/ingredients.csv -promote admin@example.com
func main() {
	file := flag.String("file", "", "Ingredient catalog (.json or .csv)")
	format := flag.String("format", "", "Catalog format, json or csv (default: from the file extension)")
	promote := flag.String("promote", "", "Email of a user to promote to admin")
	flag.Parse()

	if *file == "" && *promote == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	conf, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	db, err := database.InitDatabase(database.FromAppConfig(conf))
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	if *file != "" {
		inserted, total, err := loadCatalog(db, *file, *format)
		if err != nil {
			log.Fatal("Failed to load ingredients:", err)
		}
		fmt.Printf("✓ Loaded %d new ingredients (%d records in %s)\n", inserted, total, *file)
	}

	if *promote != "" {
		if err := promoteToAdmin(db, *promote); err != nil {
			log.Fatal("Failed to promote user:", err)
		}
		fmt.Printf("✓ %s is now an admin\n", *promote)
	}
}

func loadCatalog(db *gorm.DB, file, format string) (int, int, error) {
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(file), ".")
	}

	f, err := os.Open(file)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	records, err := services.ParseIngredientRecords(f, format)
	if err != nil {
		return 0, 0, err
	}

	inserted, err := services.NewIngredientService(db, 0, 0).Load(context.Background(), records)
	return inserted, len(records), err
}

func promoteToAdmin(db *gorm.DB, email string) error {
	result := db.Model(&models.User{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Update("role", models.RoleAdmin)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no user with email %s", email)
	}
	return nil
}
