package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"

	"github.com/onegateway/site-notify/internal/storage"
)

func main() {
	listOnly := flag.Bool("list", false, "list contact tables instead of migrating")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("ping: %v", err)
	}
	log.Println("Connected to database")

	if *listOnly {
		rows, err := db.QueryContext(ctx, "SELECT tablename FROM pg_tables WHERE schemaname='public' AND tablename LIKE 'contact_%' ORDER BY tablename")
		if err != nil {
			log.Fatal(err)
		}
		defer rows.Close()
		n := 0
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				log.Fatalf("scan: %v", err)
			}
			fmt.Println(" ", t)
			n++
		}
		if err := rows.Err(); err != nil {
			log.Fatalf("list tables: %v", err)
		}
		fmt.Printf("Total: %d tables\n", n)
		return
	}

	migrations, err := storage.Migrations()
	if err != nil {
		log.Fatal(err)
	}
	n, err := storage.Migrate(ctx, db, migrations)
	if err != nil {
		log.Fatalf("after %d OK: %v", n, err)
	}
	log.Printf("Migrations complete: %d applied", n)
}
