package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"lifeboard/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoOptions configures demo data generation.
type DemoOptions struct {
	NumPosts       int
	MaxCommentsPer int
	MaxDays        int
}

// demoPasswordHash is the bcrypt hash shared by all seeded content so demo
// posts can be edited with the password "demo123".
var demoPasswordHash []byte

func init() {
	var err error
	demoPasswordHash, err = bcrypt.GenerateFromPassword([]byte("demo123"), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("seed: failed to hash demo password: %v", err))
	}
}

// Demo populates the database with fake posts and comments spread over the
// recent past so the best and trending feeds have something to rank.
func Demo(db *gorm.DB, opts DemoOptions) error {
	if opts.NumPosts <= 0 {
		opts.NumPosts = 50
	}
	if opts.MaxCommentsPer <= 0 {
		opts.MaxCommentsPer = 8
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 45
	}

	gofakeit.Seed(time.Now().UnixNano())
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	var categories []models.Category
	if err := db.Find(&categories).Error; err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	if len(categories) == 0 {
		return fmt.Errorf("no categories to seed posts into, run seed.Categories first")
	}

	log.Printf("Seeding %d demo posts...", opts.NumPosts)
	created := 0
	for i := 0; i < opts.NumPosts; i++ {
		cat := categories[r.Intn(len(categories))]
		createdAt := time.Now().UTC().
			Add(-time.Duration(r.Intn(opts.MaxDays*24)) * time.Hour).
			Add(-time.Duration(r.Intn(60)) * time.Minute)

		post := models.Post{
			CategoryID:   cat.ID,
			Title:        gofakeit.Sentence(r.Intn(6) + 3),
			Content:      "<p>" + gofakeit.Paragraph(1, 3, 8, "</p><p>") + "</p>",
			AuthorNick:   gofakeit.Username(),
			PasswordHash: string(demoPasswordHash),
			Views:        r.Intn(500),
			Likes:        r.Intn(60),
			CreatedAt:    createdAt,
		}
		if err := db.Create(&post).Error; err != nil {
			return fmt.Errorf("create demo post: %w", err)
		}
		created++

		for j := 0; j < r.Intn(opts.MaxCommentsPer); j++ {
			comment := models.Comment{
				PostID:       post.ID,
				Nickname:     gofakeit.Username(),
				PasswordHash: string(demoPasswordHash),
				Content:      gofakeit.Sentence(r.Intn(12) + 3),
				CreatedAt:    createdAt.Add(time.Duration(j+1) * time.Hour),
			}
			if err := db.Create(&comment).Error; err != nil {
				return fmt.Errorf("create demo comment: %w", err)
			}
		}
	}

	log.Printf("Seeded %d demo posts", created)
	return nil
}
