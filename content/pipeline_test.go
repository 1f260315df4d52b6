package content

import (
	"context"
	"testing"

	"chirp/database"
	"chirp/middleware"
	"chirp/models"
	"chirp/notifications"
	"chirp/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupPipelineTest(t *testing.T) (*gorm.DB, *Pipeline) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	hashtagRepo := repository.NewHashtagRepository(db)
	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	dispatcher := notifications.NewDispatcher(notificationRepo, notifications.NewNotifier(nil), middleware.Logger)

	return db, NewPipeline(db, hashtagRepo, userRepo, dispatcher, middleware.Logger)
}

func createPipelineUser(t *testing.T, db *gorm.DB, username string) models.User {
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

func TestProcessHashtags(t *testing.T) {
	db, pipeline := setupPipelineTest(t)
	ctx := context.Background()

	author := createPipelineUser(t, db, "author")
	post := models.Post{UserID: author.ID, Content: "hello #a #a #b"}
	require.NoError(t, db.Create(&post).Error)

	pipeline.Process(ctx, &post)

	var hashtags []models.Hashtag
	require.NoError(t, db.Order("tag").Find(&hashtags).Error)
	require.Len(t, hashtags, 2)
	assert.Equal(t, "#a", hashtags[0].Tag)
	assert.Equal(t, 1, hashtags[0].PostsCount)
	assert.Equal(t, "#b", hashtags[1].Tag)
	assert.Equal(t, 1, hashtags[1].PostsCount)

	var links int64
	require.NoError(t, db.Model(&models.PostHashtag{}).Where("post_id = ?", post.ID).Count(&links).Error)
	assert.Equal(t, int64(2), links)
}

func TestProcessMentionCreatesNotification(t *testing.T) {
	db, pipeline := setupPipelineTest(t)
	ctx := context.Background()

	author := createPipelineUser(t, db, "author")
	mentioned := createPipelineUser(t, db, "ann1")

	post := models.Post{UserID: author.ID, Content: "hey @ann1"}
	require.NoError(t, db.Create(&post).Error)

	pipeline.Process(ctx, &post)

	var mention models.Mention
	require.NoError(t, db.Where("post_id = ?", post.ID).First(&mention).Error)
	assert.Equal(t, mentioned.ID, mention.MentionedUserID)

	var n models.Notification
	require.NoError(t, db.Where("user_id = ?", mentioned.ID).First(&n).Error)
	assert.Equal(t, models.NotificationMention, n.Type)
	assert.Equal(t, author.ID, n.ActorID)
	require.NotNil(t, n.PostID)
	assert.Equal(t, post.ID, *n.PostID)
}

func TestProcessUnknownMentionIsSkipped(t *testing.T) {
	db, pipeline := setupPipelineTest(t)
	ctx := context.Background()

	author := createPipelineUser(t, db, "author")
	post := models.Post{UserID: author.ID, Content: "hey @nobody"}
	require.NoError(t, db.Create(&post).Error)

	pipeline.Process(ctx, &post)

	var mentions int64
	require.NoError(t, db.Model(&models.Mention{}).Count(&mentions).Error)
	assert.Equal(t, int64(0), mentions)

	var notifs int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&notifs).Error)
	assert.Equal(t, int64(0), notifs)
}

func TestSelfMentionRecordedWithoutNotification(t *testing.T) {
	db, pipeline := setupPipelineTest(t)
	ctx := context.Background()

	author := createPipelineUser(t, db, "self")
	post := models.Post{UserID: author.ID, Content: "note to @self"}
	require.NoError(t, db.Create(&post).Error)

	pipeline.Process(ctx, &post)

	var mentions int64
	require.NoError(t, db.Model(&models.Mention{}).Where("post_id = ?", post.ID).Count(&mentions).Error)
	assert.Equal(t, int64(1), mentions)

	var notifs int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&notifs).Error)
	assert.Equal(t, int64(0), notifs)
}

func TestReprocessClearsStaleLinks(t *testing.T) {
	db, pipeline := setupPipelineTest(t)
	ctx := context.Background()

	author := createPipelineUser(t, db, "author")
	post := models.Post{UserID: author.ID, Content: "first #x"}
	require.NoError(t, db.Create(&post).Error)
	pipeline.Process(ctx, &post)

	var tag models.Hashtag
	require.NoError(t, db.Where("tag = ?", "#x").First(&tag).Error)
	assert.Equal(t, 1, tag.PostsCount)

	post.Content = "edited, no tags"
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", post.ID).Update("content", post.Content).Error)
	pipeline.Reprocess(ctx, &post)

	var links int64
	require.NoError(t, db.Model(&models.PostHashtag{}).Where("post_id = ?", post.ID).Count(&links).Error)
	assert.Equal(t, int64(0), links)

	require.NoError(t, db.Where("tag = ?", "#x").First(&tag).Error)
	assert.Equal(t, 0, tag.PostsCount)
}
