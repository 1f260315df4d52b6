package server

import (
	"fmt"
	"net/http"
	"testing"

	"chirp/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateCommentOwned(t *testing.T) {
	s, app := newTestServer(t)
	author := createVerifiedUser(t, s, "author", "secret1")
	commenter := createVerifiedUser(t, s, "commenter", "secret1")

	post := models.Post{UserID: author.ID, Content: "post"}
	require.NoError(t, s.db.Create(&post).Error)
	comment := models.Comment{UserID: commenter.ID, PostID: post.ID, Content: "typo"}
	require.NoError(t, s.db.Create(&comment).Error)

	path := fmt.Sprintf("/api/comments/%d", comment.ID)

	resp := doRequest(t, app, http.MethodPut, path, authToken(t, s, commenter.ID),
		map[string]string{"content": "fixed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "fixed", body["data"].(map[string]any)["content"])

	// Someone else's edit attempt is indistinguishable from a missing comment.
	resp = doRequest(t, app, http.MethodPut, path, authToken(t, s, author.ID),
		map[string]string{"content": "hijacked"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestDeleteCommentRemovesReplies(t *testing.T) {
	s, app := newTestServer(t)
	author := createVerifiedUser(t, s, "author", "secret1")
	replier := createVerifiedUser(t, s, "replier", "secret1")
	token := authToken(t, s, author.ID)

	post := models.Post{UserID: author.ID, Content: "post"}
	require.NoError(t, s.db.Create(&post).Error)

	resp := doRequest(t, app, http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", post.ID),
		token, map[string]any{"content": "parent"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	parentID := uint(body["data"].(map[string]any)["id"].(float64))

	resp = doRequest(t, app, http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", post.ID),
		authToken(t, s, replier.ID), map[string]any{"content": "child", "parent_comment_id": parentID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/comments/%d", parentID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	var remaining int64
	require.NoError(t, s.db.Model(&models.Comment{}).Count(&remaining).Error)
	assert.Equal(t, int64(0), remaining)

	var reloaded models.Post
	require.NoError(t, s.db.First(&reloaded, post.ID).Error)
	assert.Equal(t, 0, reloaded.CommentsCount)
}

func TestLikeCommentFlow(t *testing.T) {
	s, app := newTestServer(t)
	author := createVerifiedUser(t, s, "author", "secret1")
	liker := createVerifiedUser(t, s, "liker", "secret1")
	token := authToken(t, s, liker.ID)

	post := models.Post{UserID: author.ID, Content: "post"}
	require.NoError(t, s.db.Create(&post).Error)
	comment := models.Comment{UserID: author.ID, PostID: post.ID, Content: "likeable"}
	require.NoError(t, s.db.Create(&comment).Error)

	path := fmt.Sprintf("/api/comments/%d/like", comment.ID)

	resp := doRequest(t, app, http.MethodPost, path, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doRequest(t, app, http.MethodPost, path, token, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	_ = resp.Body.Close()

	var reloaded models.Comment
	require.NoError(t, s.db.First(&reloaded, comment.ID).Error)
	assert.Equal(t, 1, reloaded.LikesCount)

	resp = doRequest(t, app, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	require.NoError(t, s.db.First(&reloaded, comment.ID).Error)
	assert.Equal(t, 0, reloaded.LikesCount)
}

func TestLikeMissingComment(t *testing.T) {
	s, app := newTestServer(t)
	liker := createVerifiedUser(t, s, "liker", "secret1")

	resp := doRequest(t, app, http.MethodPost, "/api/comments/999/like", authToken(t, s, liker.ID), nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestListPostCommentsOldestFirst(t *testing.T) {
	s, app := newTestServer(t)
	author := createVerifiedUser(t, s, "author", "secret1")
	token := authToken(t, s, author.ID)

	post := models.Post{UserID: author.ID, Content: "post"}
	require.NoError(t, s.db.Create(&post).Error)

	for _, content := range []string{"first", "second"} {
		resp := doRequest(t, app, http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", post.ID),
			token, map[string]any{"content": content})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		_ = resp.Body.Close()
	}

	resp := doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/posts/%d/comments", post.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	require.Equal(t, float64(2), body["results"])
	items := body["data"].([]any)
	assert.Equal(t, "first", items[0].(map[string]any)["content"])
	assert.Equal(t, "second", items[1].(map[string]any)["content"])
}
