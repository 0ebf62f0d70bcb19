package seed

import (
	"testing"

	"lifeboard/internal/database"
	"lifeboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategories_UpsertIsIdempotent(t *testing.T) {
	db, err := database.ConnectSQLite()
	require.NoError(t, err)

	require.NoError(t, Categories(db))

	var first []models.Category
	require.NoError(t, db.Order("id").Find(&first).Error)
	require.Len(t, first, len(BuiltInCategories))

	// A second run must not duplicate or reassign IDs
	require.NoError(t, Categories(db))

	var second []models.Category
	require.NoError(t, db.Order("id").Find(&second).Error)
	require.Len(t, second, len(BuiltInCategories))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Code, second[i].Code)
	}
}

func TestDemo_PopulatesPostsAndComments(t *testing.T) {
	db, err := database.ConnectSQLite()
	require.NoError(t, err)
	require.NoError(t, Categories(db))

	require.NoError(t, Demo(db, DemoOptions{NumPosts: 10, MaxCommentsPer: 3, MaxDays: 10}))

	var postCount int64
	require.NoError(t, db.Model(&models.Post{}).Count(&postCount).Error)
	assert.Equal(t, int64(10), postCount)

	var orphaned int64
	require.NoError(t, db.Model(&models.Comment{}).
		Where("post_id NOT IN (?)", db.Model(&models.Post{}).Select("id")).
		Count(&orphaned).Error)
	assert.Zero(t, orphaned)
}
