package server

import (
	"context"
	"strings"

	"chirp/models"

	"github.com/gofiber/fiber/v2"
)

const maxPostLength = 280

type createPostRequest struct {
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
}

type updatePostRequest struct {
	Content string `json:"content"`
}

type repostRequest struct {
	QuoteText string `json:"quote_text"`
}

// CreatePost creates a post and runs the hashtag/mention pipeline over its
// content.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" && req.ImageURL == "" {
		return models.RespondWithError(c, models.NewValidationError("Post must have content or an image"))
	}
	if len(req.Content) > maxPostLength {
		return models.RespondWithError(c, models.NewValidationError("Post content exceeds 280 characters"))
	}

	post := models.Post{
		UserID:   currentUserID(c),
		Content:  req.Content,
		ImageURL: req.ImageURL,
	}
	if err := s.postRepo.Create(c.Context(), &post); err != nil {
		return models.RespondWithError(c, err)
	}

	s.pipeline.Process(context.WithoutCancel(c.Context()), &post)

	view, err := s.postRepo.GetByID(c.Context(), post.ID, post.UserID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Success(c, fiber.StatusCreated, view)
}

// GetPost returns a single post with the viewer's relationship flags.
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	view, err := s.postRepo.GetByID(c.Context(), postID, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Success(c, fiber.StatusOK, view)
}

// UpdatePost edits an owned post's text and re-derives its hashtag and
// mention links.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var req updatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		return models.RespondWithError(c, models.NewValidationError("Post content is required"))
	}
	if len(req.Content) > maxPostLength {
		return models.RespondWithError(c, models.NewValidationError("Post content exceeds 280 characters"))
	}

	userID := currentUserID(c)
	post, err := s.postRepo.GetOwned(c.Context(), postID, userID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if err := s.postRepo.UpdateContent(c.Context(), post.ID, req.Content); err != nil {
		return models.RespondWithError(c, err)
	}

	post.Content = req.Content
	s.pipeline.Reprocess(context.WithoutCancel(c.Context()), post)

	view, err := s.postRepo.GetByID(c.Context(), post.ID, userID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Success(c, fiber.StatusOK, view)
}

// DeletePost removes an owned post. Hashtag counts are recomputed after the
// links go away with the post.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	linked, err := s.hashtagRepo.LinkedHashtags(c.Context(), postID)
	if err != nil {
		s.log.Error("linked hashtag lookup failed", "post_id", postID, "error", err)
	}

	if err := s.postRepo.Delete(c.Context(), postID, currentUserID(c)); err != nil {
		return models.RespondWithError(c, err)
	}

	ids := make([]uint, 0, len(linked))
	for _, h := range linked {
		ids = append(ids, h.ID)
	}
	s.pipeline.ClearForDelete(context.WithoutCancel(c.Context()), ids)

	return models.SuccessMessage(c, fiber.StatusOK, "Post deleted")
}

// GetFeed returns posts from followed users, newest first.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	limit, offset := parsePaginationDefault(c, 10)
	views, err := s.postRepo.Feed(c.Context(), currentUserID(c), limit, offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.SuccessList(c, len(views), views)
}

// GetExplore returns all posts, newest first.
func (s *Server) GetExplore(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	views, err := s.postRepo.Explore(c.Context(), currentUserID(c), limit, offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.SuccessList(c, len(views), views)
}

// LikePost records a like and notifies the post's author.
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	userID := currentUserID(c)
	authorID, err := s.socialRepo.LikePost(c.Context(), userID, postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	s.notify(c, &models.Notification{
		UserID:  authorID,
		ActorID: userID,
		Type:    models.NotificationLike,
		PostID:  &postID,
		Content: "liked your post",
	})

	return models.SuccessMessage(c, fiber.StatusOK, "Post liked")
}

// UnlikePost removes a like.
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if err := s.socialRepo.UnlikePost(c.Context(), currentUserID(c), postID); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.SuccessMessage(c, fiber.StatusOK, "Like removed")
}

// RepostPost records a repost (optionally with quote text) and notifies the
// post's author.
func (s *Server) RepostPost(c *fiber.Ctx) error {
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var req repostRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	req.QuoteText = strings.TrimSpace(req.QuoteText)
	if len(req.QuoteText) > maxPostLength {
		return models.RespondWithError(c, models.NewValidationError("Quote text exceeds 280 characters"))
	}

	userID := currentUserID(c)
	authorID, err := s.socialRepo.Repost(c.Context(), userID, postID, req.QuoteText)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	message := "reposted your post"
	if req.QuoteText != "" {
		message = "reposted your post: " + truncate(req.QuoteText, 50)
	}
	s.notify(c, &models.Notification{
		UserID:  authorID,
		ActorID: userID,
		Type:    models.NotificationRepost,
		PostID:  &postID,
		Content: message,
	})

	return models.SuccessMessage(c, fiber.StatusOK, "Post reposted")
}

// BookmarkPost records a bookmark and notifies the post's author. Bookmark
// lists stay private; only the fact of the save is shared.
func (s *Server) BookmarkPost(c *fiber.Ctx) error {
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	userID := currentUserID(c)
	authorID, err := s.socialRepo.BookmarkPost(c.Context(), userID, postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	s.notify(c, &models.Notification{
		UserID:  authorID,
		ActorID: userID,
		Type:    models.NotificationBookmark,
		PostID:  &postID,
		Content: "bookmarked your post",
	})

	return models.SuccessMessage(c, fiber.StatusOK, "Post bookmarked")
}

// UnbookmarkPost removes a bookmark.
func (s *Server) UnbookmarkPost(c *fiber.Ctx) error {
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if err := s.socialRepo.UnbookmarkPost(c.Context(), currentUserID(c), postID); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.SuccessMessage(c, fiber.StatusOK, "Bookmark removed")
}

// notify dispatches a notification without letting a failure affect the
// request's outcome.
func (s *Server) notify(c *fiber.Ctx, n *models.Notification) {
	if err := s.dispatcher.Dispatch(context.WithoutCancel(c.Context()), n); err != nil {
		s.log.Error("notification dispatch failed", "type", n.Type, "user_id", n.UserID, "error", err)
	}
}
