package repository

import (
	"context"
	"testing"

	"chirp/database"
	"chirp/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{
		Name:     username,
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, userID uint, content string) models.Post {
	t.Helper()
	post := models.Post{UserID: userID, Content: content}
	require.NoError(t, db.Create(&post).Error)
	return post
}

func followerCounts(t *testing.T, db *gorm.DB, id uint) (followers, following int) {
	t.Helper()
	var user models.User
	require.NoError(t, db.First(&user, id).Error)
	return user.FollowersCount, user.FollowingCount
}

func TestFollowAdjustsCounters(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewSocialRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	require.NoError(t, repo.Follow(ctx, alice.ID, bob.ID))

	bobFollowers, _ := followerCounts(t, db, bob.ID)
	_, aliceFollowing := followerCounts(t, db, alice.ID)
	assert.Equal(t, 1, bobFollowers)
	assert.Equal(t, 1, aliceFollowing)

	var edges int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&edges).Error)
	assert.Equal(t, int64(1), edges)
}

func TestDuplicateFollowRejected(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewSocialRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	require.NoError(t, repo.Follow(ctx, alice.ID, bob.ID))

	err := repo.Follow(ctx, alice.ID, bob.ID)
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)

	// The failed attempt must not touch the counters.
	bobFollowers, _ := followerCounts(t, db, bob.ID)
	assert.Equal(t, 1, bobFollowers)
}

func TestSelfFollowRejected(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewSocialRepository(db)

	alice := createTestUser(t, db, "alice")

	err := repo.Follow(context.Background(), alice.ID, alice.ID)
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestUnfollowWithoutEdgeRejected(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewSocialRepository(db)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	err := repo.Unfollow(context.Background(), alice.ID, bob.ID)
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)

	bobFollowers, _ := followerCounts(t, db, bob.ID)
	assert.Equal(t, 0, bobFollowers)
}

func TestLikeUnlikeRoundTrip(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewSocialRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	liker := createTestUser(t, db, "liker")
	post := createTestPost(t, db, author.ID, "a post")

	authorID, err := repo.LikePost(ctx, liker.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, author.ID, authorID)

	var reloaded models.Post
	require.NoError(t, db.First(&reloaded, post.ID).Error)
	assert.Equal(t, 1, reloaded.LikesCount)

	require.NoError(t, repo.UnlikePost(ctx, liker.ID, post.ID))
	require.NoError(t, db.First(&reloaded, post.ID).Error)
	assert.Equal(t, 0, reloaded.LikesCount)
}

func TestDuplicateLikeRejected(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewSocialRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	liker := createTestUser(t, db, "liker")
	post := createTestPost(t, db, author.ID, "a post")

	_, err := repo.LikePost(ctx, liker.ID, post.ID)
	require.NoError(t, err)

	_, err = repo.LikePost(ctx, liker.ID, post.ID)
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)

	// Counter stays equal to the true edge count.
	var reloaded models.Post
	require.NoError(t, db.First(&reloaded, post.ID).Error)
	assert.Equal(t, 1, reloaded.LikesCount)
	var edges int64
	require.NoError(t, db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&edges).Error)
	assert.Equal(t, int64(1), edges)
}

func TestLikeMissingPost(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewSocialRepository(db)

	liker := createTestUser(t, db, "liker")

	_, err := repo.LikePost(context.Background(), liker.ID, 999)
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestRepostAdjustsCounter(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewSocialRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	reposter := createTestUser(t, db, "reposter")
	post := createTestPost(t, db, author.ID, "a post")

	_, err := repo.Repost(ctx, reposter.ID, post.ID, "worth a read")
	require.NoError(t, err)

	var reloaded models.Post
	require.NoError(t, db.First(&reloaded, post.ID).Error)
	assert.Equal(t, 1, reloaded.RepostsCount)

	_, err = repo.Repost(ctx, reposter.ID, post.ID, "")
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
}

func TestBookmarkRoundTrip(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewSocialRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	reader := createTestUser(t, db, "reader")
	post := createTestPost(t, db, author.ID, "a post")

	_, err := repo.BookmarkPost(ctx, reader.ID, post.ID)
	require.NoError(t, err)

	_, err = repo.BookmarkPost(ctx, reader.ID, post.ID)
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)

	require.NoError(t, repo.UnbookmarkPost(ctx, reader.ID, post.ID))
	err = repo.UnbookmarkPost(ctx, reader.ID, post.ID)
	require.Error(t, err)
}
