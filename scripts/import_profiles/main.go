// Command import_profiles provisions profiles from a spreadsheet. Each row
// after the header holds an optional identity id, a handle and an email.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mroshb/hanglight/internal/auth"
	"github.com/mroshb/hanglight/internal/config"
	"github.com/mroshb/hanglight/internal/database"
	"github.com/mroshb/hanglight/internal/services"
	"github.com/mroshb/hanglight/pkg/logger"
	"github.com/spf13/pflag"
	"github.com/xuri/excelize/v2"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	logger.Init()
	defer logger.Sync()

	flagSet := pflag.NewFlagSet("import_profiles", pflag.ContinueOnError)
	file := flagSet.StringP("file", "f", "", "xlsx file to import")
	sheet := flagSet.String("sheet", "", "sheet to read (default: every sheet)")
	dryRun := flagSet.Bool("dry-run", false, "print rows without writing")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		log.Fatal(err)
	}
	if *file == "" {
		log.Fatal("--file is required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("failed to connect database:", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}
	svc := services.New(db, services.Options{StatusMessageTTL: cfg.StatusMessageTTL})

	f, err := excelize.OpenFile(*file)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if *sheet != "" {
		sheets = []string{*sheet}
	}

	ctx := context.Background()
	imported, skipped := 0, 0

	for _, name := range sheets {
		rows, err := f.GetRows(name)
		if err != nil {
			fmt.Printf("Error reading sheet %s: %v\n", name, err)
			continue
		}

		for i, row := range rows {
			if i == 0 {
				continue
			}
			identity, ok := identityFromRow(row)
			if !ok {
				fmt.Printf("Skipping row %d of %s: missing email\n", i+1, name)
				skipped++
				continue
			}

			if *dryRun {
				fmt.Printf("%s\t%s\t%s\n", identity.ID, identity.Handle(), identity.Email)
				continue
			}

			profile, err := svc.Identity.EnsureProfile(ctx, identity)
			if err != nil {
				fmt.Printf("Error importing row %d of %s: %v\n", i+1, name, err)
				skipped++
				continue
			}
			if !profile.HasConformingHandle() {
				fmt.Printf("Row %d: %s got placeholder handle %s\n", i+1, profile.Email, profile.Handle)
			}
			imported++
		}
	}

	fmt.Printf("Imported %d profiles, skipped %d.\n", imported, skipped)
}

// identityFromRow reads [id, handle, email]. A blank id gets a fresh uuid.
func identityFromRow(row []string) (*auth.Identity, bool) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	email := cell(2)
	if email == "" {
		return nil, false
	}

	id := cell(0)
	if id == "" {
		id = uuid.NewString()
	}

	identity := &auth.Identity{ID: id, Email: email}
	if handle := cell(1); handle != "" {
		identity.Metadata = map[string]string{auth.MetadataHandle: handle}
	}
	return identity, true
}
