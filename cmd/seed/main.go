// Seed registers users in the store so two chat processes can sign in
// against the same database.
package main

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/kelseyhightower/envconfig"

	apperrors "dmchat/errors"
	"dmchat/repositories"
	"dmchat/session"
)

type Config struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH" required:"true"`
	// Users holds "username:password" pairs.
	Users []string `envconfig:"SEED_USERS" required:"true"`
}

func main() {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	users := repositories.NewUserRepository(db)

	for _, pair := range config.Users {
		username, password, found := strings.Cut(pair, ":")
		if !found {
			log.Fatalf("Invalid SEED_USERS entry %q, expected username:password", pair)
		}

		hash, err := session.HashPassword(password)
		if err != nil {
			log.Fatalf("Hashing failed for %s: %v", username, err)
		}

		uid, err := users.CreateUser(username, hash)
		if errors.Is(err, apperrors.ErrUserAlreadyExists) {
			fmt.Printf("Skipping %s: already registered\n", username)
			continue
		}
		if err != nil {
			log.Fatalf("Creating %s failed: %v", username, err)
		}
		fmt.Printf("Created %s (%s)\n", username, uid)
	}
}
