// Command main runs the database seeder for Lifeboard.
package main

import (
	"flag"
	"log"

	"lifeboard/internal/config"
	"lifeboard/internal/database"
	"lifeboard/internal/seed"
)

func main() {
	numPosts := flag.Int("posts", 50, "Number of demo posts to create")
	maxComments := flag.Int("comments", 8, "Maximum comments per post")
	maxDays := flag.Int("days", 45, "Spread posts over this many days")
	demo := flag.Bool("demo", false, "Also generate fake demo content")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Categories(db); err != nil {
		log.Fatalf("Built-in category seeding failed: %v", err)
	}
	log.Println("Built-in categories seeded")

	if *demo {
		err := seed.Demo(db, seed.DemoOptions{
			NumPosts:       *numPosts,
			MaxCommentsPer: *maxComments,
			MaxDays:        *maxDays,
		})
		if err != nil {
			log.Fatalf("Demo seeding failed: %v", err)
		}
	}
}
