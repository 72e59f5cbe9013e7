// Command migrate applies the embedded schema migrations and exits.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"lodgia.org/internal/store/pg"
)

func main() {
	dsn := os.Getenv("LODGIA_PG_DSN")
	if dsn == "" {
		log.Fatal("LODGIA_PG_DSN is required")
	}

	store, err := pg.Open(dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := store.Migrate(ctx); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("migrations applied")
}
