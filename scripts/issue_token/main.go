// Command issue_token prints a bearer token for local testing.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/mroshb/hanglight/internal/auth"
	"github.com/mroshb/hanglight/internal/security"
	"github.com/spf13/pflag"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	flagSet := pflag.NewFlagSet("issue_token", pflag.ContinueOnError)
	id := flagSet.String("id", "", "identity id")
	email := flagSet.String("email", "", "identity email")
	handle := flagSet.String("handle", "", "requested handle (optional)")
	ttl := flagSet.Duration("ttl", 0, "token lifetime (default 24h)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		log.Fatal(err)
	}

	if *id == "" || *email == "" {
		log.Fatal("--id and --email are required")
	}

	secret := os.Getenv("JWT_SECRET_KEY")
	if secret == "" {
		log.Fatal("JWT_SECRET_KEY is not set")
	}

	identity := &auth.Identity{ID: *id, Email: *email}
	if *handle != "" {
		identity.Metadata = map[string]string{auth.MetadataHandle: *handle}
	}

	token, err := security.GenerateJWT(identity, secret, *ttl)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(token)
}
