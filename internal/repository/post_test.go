package repository

import (
	"context"
	"testing"
	"time"

	"lifeboard/internal/database"
	"lifeboard/internal/models"
	"lifeboard/internal/seed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.ConnectSQLite()
	require.NoError(t, err)
	require.NoError(t, seed.Categories(db))
	return db
}

func firstCategoryID(t *testing.T, db *gorm.DB) uint {
	t.Helper()
	var cat models.Category
	require.NoError(t, db.First(&cat).Error)
	return cat.ID
}

func makePost(t *testing.T, db *gorm.DB, repo PostRepository, title string, createdAt time.Time) *models.Post {
	t.Helper()
	post := &models.Post{
		CategoryID:   firstCategoryID(t, db),
		Title:        title,
		Content:      "body",
		AuthorNick:   "nick",
		PasswordHash: "hash",
		CreatedAt:    createdAt,
	}
	require.NoError(t, repo.Create(context.Background(), post))
	return post
}

func TestPostRepository_DuplicateClientReqIDTranslates(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	token := "tok-1"
	first := &models.Post{
		CategoryID:   firstCategoryID(t, db),
		ClientReqID:  &token,
		Title:        "first",
		Content:      "body",
		AuthorNick:   "nick",
		PasswordHash: "hash",
	}
	require.NoError(t, repo.Create(ctx, first))

	dup := &models.Post{
		CategoryID:   first.CategoryID,
		ClientReqID:  &token,
		Title:        "second",
		Content:      "body",
		AuthorNick:   "nick",
		PasswordHash: "hash",
	}
	err := repo.Create(ctx, dup)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	found, err := repo.GetByClientReqID(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
}

func TestPostRepository_LatestExcludesDeleted(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	keep := makePost(t, db, repo, "keep", now)
	gone := makePost(t, db, repo, "gone", now.Add(time.Minute))
	require.NoError(t, repo.SoftDelete(ctx, gone.ID))

	posts, err := repo.Latest(ctx, PostFilter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, keep.ID, posts[0].ID)

	// GetByID still sees the flagged row; visibility is the caller's call
	raw, err := repo.GetByID(ctx, gone.ID)
	require.NoError(t, err)
	assert.True(t, raw.Deleted)
}

func TestPostRepository_LatestOrdersAndPaginates(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	for i := 0; i < 5; i++ {
		makePost(t, db, repo, "post", base.Add(time.Duration(i)*time.Minute))
	}

	page0, err := repo.Latest(ctx, PostFilter{}, 2, 0)
	require.NoError(t, err)
	page1, err := repo.Latest(ctx, PostFilter{}, 2, 2)
	require.NoError(t, err)
	require.Len(t, page0, 2)
	require.Len(t, page1, 2)

	assert.True(t, page0[0].CreatedAt.After(page0[1].CreatedAt))
	assert.True(t, page0[1].CreatedAt.After(page1[0].CreatedAt))
}

func TestPostRepository_SinceFiltersByCutoff(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	makePost(t, db, repo, "old", now.Add(-40*24*time.Hour))
	fresh := makePost(t, db, repo, "fresh", now.Add(-time.Hour))

	posts, err := repo.Since(ctx, PostFilter{}, now.Add(-7*24*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, fresh.ID, posts[0].ID)
}

func TestPostRepository_QueryFilterMatchesTitleCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	hit := makePost(t, db, repo, "Badminton Partners Wanted", now)
	makePost(t, db, repo, "Garage sale", now.Add(time.Minute))

	posts, err := repo.Latest(ctx, PostFilter{Query: "badminton"}, 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, hit.ID, posts[0].ID)
}

func TestPostRepository_AtomicCounters(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := makePost(t, db, repo, "counted", time.Now().UTC())

	require.NoError(t, repo.IncrementViews(ctx, post.ID))
	require.NoError(t, repo.IncrementViews(ctx, post.ID))

	likes, err := repo.IncrementLikes(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, likes)

	likes, err = repo.DecrementLikes(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, likes)

	likes, err = repo.DecrementLikes(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, likes, "decrement floors at zero")

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Views)
}

func TestPostRepository_CountersRejectDeleted(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := makePost(t, db, repo, "gone", time.Now().UTC())
	require.NoError(t, repo.SoftDelete(ctx, post.ID))

	_, err := repo.IncrementLikes(ctx, post.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCommentRepository_CountActiveByPostIDs(t *testing.T) {
	db := newTestDB(t)
	posts := NewPostRepository(db)
	comments := NewCommentRepository(db)
	ctx := context.Background()

	a := makePost(t, db, posts, "a", time.Now().UTC())
	b := makePost(t, db, posts, "b", time.Now().UTC())

	for i := 0; i < 3; i++ {
		require.NoError(t, comments.Create(ctx, &models.Comment{
			PostID: a.ID, Nickname: "n", PasswordHash: "h", Content: "c",
		}))
	}
	dead := &models.Comment{PostID: a.ID, Nickname: "n", PasswordHash: "h", Content: "c"}
	require.NoError(t, comments.Create(ctx, dead))
	require.NoError(t, comments.SoftDelete(ctx, dead.ID))

	counts, err := comments.CountActiveByPostIDs(ctx, []uint{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, counts[a.ID])
	assert.Equal(t, 0, counts[b.ID])
}
