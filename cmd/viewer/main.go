// Viewer opens the store read-only and serves the inspection page, without
// touching the running chat processes.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"dmchat/internal"
)

func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// 2. Open Badger in Read-Only mode
	// BypassLockGuard allows opening while a chat process holds the lock
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	emptyStats := func() map[string]any {
		return map[string]any{
			"Status": "Viewer Mode (Read-Only)",
			"Time":   time.Now().Format(time.RFC822),
		}
	}

	fmt.Printf("Viewer started at http://localhost:%d/inspect\n", config.DebugPort)

	internal.Inspect(db, config.DebugPort, "/inspect", MessageMapper, emptyStats, "msg:", nil)
}

// MessageMapper decodes stored records so the page shows who talked to whom
// instead of raw bytes.
func MessageMapper(key string, val []byte) internal.InspectRow {
	row := internal.DefaultMapper(key, val)

	var record struct {
		SenderUsername   string `json:"sender_username"`
		ReceiverUsername string `json:"receiver_username"`
		Type             string `json:"type"`
		Content          string `json:"content"`
		FileName         string `json:"file_name"`
		Username         string `json:"username"`
	}
	if err := json.Unmarshal(val, &record); err != nil {
		return row
	}

	switch row.Kind {
	case "MESSAGE":
		row.Sender = record.SenderUsername
		row.Receiver = record.ReceiverUsername
		if record.Type == "file" {
			row.Detail = "[File] " + record.FileName
		} else {
			row.Detail = truncate(record.Content, 60)
		}
	case "USER":
		row.Detail = record.Username
	}
	return row
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
