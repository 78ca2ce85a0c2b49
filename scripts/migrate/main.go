// Command migrate creates the schema and repairs rows written before the
// current invariants were enforced.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/mroshb/hanglight/internal/config"
	"github.com/mroshb/hanglight/internal/database"
	"github.com/mroshb/hanglight/internal/models"
	"github.com/spf13/pflag"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	flagSet := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	repair := flagSet.Bool("repair", true, "backfill missing lights and reorder friendship pairs")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		log.Fatal(err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	fmt.Println("🚀 Starting migration...")
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate tables: %v", err)
	}
	fmt.Println("✅ Tables and indexes ready")

	if !*repair {
		return
	}

	lights, err := backfillLights(db)
	if err != nil {
		log.Fatalf("Failed to backfill status lights: %v", err)
	}
	pairs, err := reorderPairs(db)
	if err != nil {
		log.Fatalf("Failed to reorder friendships: %v", err)
	}

	fmt.Println("✅ Migration completed successfully!")
	fmt.Printf("  - %d profiles given the default light\n", lights)
	fmt.Printf("  - %d friendships reordered\n", pairs)
}

func backfillLights(db *gorm.DB) (int64, error) {
	result := db.Model(&models.Profile{}).
		Where("status_light IS NULL OR status_light = ''").
		UpdateColumn("status_light", models.LightRed)
	return result.RowsAffected, result.Error
}

// reorderPairs puts the lower id in user_id. Both sides of the assignment
// read the old row values.
func reorderPairs(db *gorm.DB) (int64, error) {
	result := db.Exec("UPDATE friendships SET user_id = friend_id, friend_id = user_id WHERE user_id > friend_id")
	return result.RowsAffected, result.Error
}
