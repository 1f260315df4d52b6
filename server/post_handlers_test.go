package server

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"chirp/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePostWithHashtagAndMention(t *testing.T) {
	s, app := newTestServer(t)
	author := createVerifiedUser(t, s, "author", "secret1")
	mentioned := createVerifiedUser(t, s, "ann1", "secret1")
	token := authToken(t, s, author.ID)

	resp := doRequest(t, app, http.MethodPost, "/api/posts/", token, map[string]string{
		"content": "hello #test @ann1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	assert.Equal(t, "hello #test @ann1", data["content"])
	assert.Equal(t, "author", data["username"])

	var hashtag models.Hashtag
	require.NoError(t, s.db.Where("tag = ?", "#test").First(&hashtag).Error)
	assert.Equal(t, 1, hashtag.PostsCount)

	var notif models.Notification
	require.NoError(t, s.db.Where("user_id = ?", mentioned.ID).First(&notif).Error)
	assert.Equal(t, models.NotificationMention, notif.Type)
	assert.Equal(t, author.ID, notif.ActorID)

	var author2 models.User
	require.NoError(t, s.db.First(&author2, author.ID).Error)
	assert.Equal(t, 1, author2.PostsCount)
}

func TestCreatePostRequiresContentOrImage(t *testing.T) {
	s, app := newTestServer(t)
	user := createVerifiedUser(t, s, "author", "secret1")
	token := authToken(t, s, user.ID)

	resp := doRequest(t, app, http.MethodPost, "/api/posts/", token, map[string]string{
		"content": "   ",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doRequest(t, app, http.MethodPost, "/api/posts/", token, map[string]string{
		"image_url": "https://example.com/cat.png",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestLikePostFlow(t *testing.T) {
	s, app := newTestServer(t)
	author := createVerifiedUser(t, s, "author", "secret1")
	liker := createVerifiedUser(t, s, "liker", "secret1")
	likerToken := authToken(t, s, liker.ID)

	post := models.Post{UserID: author.ID, Content: "like me"}
	require.NoError(t, s.db.Create(&post).Error)

	path := fmt.Sprintf("/api/posts/%d/like", post.ID)
	resp := doRequest(t, app, http.MethodPost, path, likerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	// The second attempt is rejected and the counter holds.
	resp = doRequest(t, app, http.MethodPost, path, likerToken, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	_ = resp.Body.Close()

	var reloaded models.Post
	require.NoError(t, s.db.First(&reloaded, post.ID).Error)
	assert.Equal(t, 1, reloaded.LikesCount)

	// The author got exactly one like notification.
	var count int64
	require.NoError(t, s.db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", author.ID, models.NotificationLike).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)

	resp = doRequest(t, app, http.MethodDelete, path, likerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doRequest(t, app, http.MethodDelete, path, likerToken, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestLikeOwnPostNoSelfNotification(t *testing.T) {
	s, app := newTestServer(t)
	author := createVerifiedUser(t, s, "author", "secret1")
	token := authToken(t, s, author.ID)

	post := models.Post{UserID: author.ID, Content: "self like"}
	require.NoError(t, s.db.Create(&post).Error)

	resp := doRequest(t, app, http.MethodPost, fmt.Sprintf("/api/posts/%d/like", post.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	var count int64
	require.NoError(t, s.db.Model(&models.Notification{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestUpdatePostReprocessesHashtags(t *testing.T) {
	s, app := newTestServer(t)
	author := createVerifiedUser(t, s, "author", "secret1")
	token := authToken(t, s, author.ID)

	resp := doRequest(t, app, http.MethodPost, "/api/posts/", token, map[string]string{
		"content": "original #old",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	postID := uint(body["data"].(map[string]any)["id"].(float64))

	resp = doRequest(t, app, http.MethodPut, fmt.Sprintf("/api/posts/%d", postID), token, map[string]string{
		"content": "edited #new",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	var old, fresh models.Hashtag
	require.NoError(t, s.db.Where("tag = ?", "#old").First(&old).Error)
	require.NoError(t, s.db.Where("tag = ?", "#new").First(&fresh).Error)
	assert.Equal(t, 0, old.PostsCount)
	assert.Equal(t, 1, fresh.PostsCount)
}

func TestUpdatePostNotOwned(t *testing.T) {
	s, app := newTestServer(t)
	author := createVerifiedUser(t, s, "author", "secret1")
	stranger := createVerifiedUser(t, s, "stranger", "secret1")

	post := models.Post{UserID: author.ID, Content: "mine"}
	require.NoError(t, s.db.Create(&post).Error)

	resp := doRequest(t, app, http.MethodPut, fmt.Sprintf("/api/posts/%d", post.ID),
		authToken(t, s, stranger.ID), map[string]string{"content": "hijacked"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestDeletePostRecomputesHashtagCounts(t *testing.T) {
	s, app := newTestServer(t)
	author := createVerifiedUser(t, s, "author", "secret1")
	token := authToken(t, s, author.ID)

	resp := doRequest(t, app, http.MethodPost, "/api/posts/", token, map[string]string{
		"content": "only post with #solo",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	postID := uint(body["data"].(map[string]any)["id"].(float64))

	resp = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/posts/%d", postID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	var tag models.Hashtag
	require.NoError(t, s.db.Where("tag = ?", "#solo").First(&tag).Error)
	assert.Equal(t, 0, tag.PostsCount)

	var posts int64
	require.NoError(t, s.db.Model(&models.Post{}).Count(&posts).Error)
	assert.Equal(t, int64(0), posts)
}

func TestRepostQuoteSnippetKeepsMultiByteText(t *testing.T) {
	s, app := newTestServer(t)
	author := createVerifiedUser(t, s, "author", "secret1")
	reposter := createVerifiedUser(t, s, "reposter", "secret1")

	post := models.Post{UserID: author.ID, Content: "quote me"}
	require.NoError(t, s.db.Create(&post).Error)

	quote := strings.Repeat("火", 60)
	resp := doRequest(t, app, http.MethodPost, fmt.Sprintf("/api/posts/%d/repost", post.ID),
		authToken(t, s, reposter.ID), map[string]string{"quote_text": quote})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	var notif models.Notification
	require.NoError(t, s.db.Where("user_id = ? AND type = ?", author.ID, models.NotificationRepost).
		First(&notif).Error)
	assert.Equal(t, "reposted your post: "+strings.Repeat("火", 50)+"...", notif.Content)
	assert.True(t, utf8.ValidString(notif.Content))
}

func TestAddCommentNotifiesPostAndParentAuthors(t *testing.T) {
	s, app := newTestServer(t)
	author := createVerifiedUser(t, s, "author", "secret1")
	commenter := createVerifiedUser(t, s, "commenter", "secret1")
	replier := createVerifiedUser(t, s, "replier", "secret1")

	post := models.Post{UserID: author.ID, Content: "discuss"}
	require.NoError(t, s.db.Create(&post).Error)

	resp := doRequest(t, app, http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", post.ID),
		authToken(t, s, commenter.ID), map[string]any{"content": "first"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	parentID := uint(body["data"].(map[string]any)["id"].(float64))

	resp = doRequest(t, app, http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", post.ID),
		authToken(t, s, replier.ID), map[string]any{"content": "reply", "parent_comment_id": parentID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	// The post author was notified for both comments, the parent's author
	// once for the reply.
	var authorNotifs, commenterNotifs int64
	require.NoError(t, s.db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", author.ID, models.NotificationComment).
		Count(&authorNotifs).Error)
	require.NoError(t, s.db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", commenter.ID, models.NotificationComment).
		Count(&commenterNotifs).Error)
	assert.Equal(t, int64(2), authorNotifs)
	assert.Equal(t, int64(1), commenterNotifs)

	var reloaded models.Post
	require.NoError(t, s.db.First(&reloaded, post.ID).Error)
	assert.Equal(t, 2, reloaded.CommentsCount)
}
