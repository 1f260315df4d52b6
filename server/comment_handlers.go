package server

import (
	"strings"

	"chirp/models"

	"github.com/gofiber/fiber/v2"
)

const maxCommentLength = 280

type commentRequest struct {
	Content         string `json:"content"`
	ParentCommentID *uint  `json:"parent_comment_id"`
}

// GetPostComments returns a page of a post's comments, oldest first.
func (s *Server) GetPostComments(c *fiber.Ctx) error {
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	limit, offset := parsePagination(c)

	views, err := s.commentRepo.ListByPost(c.Context(), postID, currentUserID(c), limit, offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.SuccessList(c, len(views), views)
}

// AddComment creates a comment (optionally a reply) and notifies the post's
// author and, for replies, the parent comment's author. Each recipient is
// notified at most once per comment.
func (s *Server) AddComment(c *fiber.Ctx) error {
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		return models.RespondWithError(c, models.NewValidationError("Comment content is required"))
	}
	if len(req.Content) > maxCommentLength {
		return models.RespondWithError(c, models.NewValidationError("Comment content exceeds 280 characters"))
	}

	userID := currentUserID(c)

	post, err := s.postRepo.GetByID(c.Context(), postID, userID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var parentAuthorID uint
	if req.ParentCommentID != nil {
		parent, err := s.commentRepo.GetByID(c.Context(), *req.ParentCommentID)
		if err != nil {
			return models.RespondWithError(c, err)
		}
		if parent.PostID != postID {
			return models.RespondWithError(c, models.NewValidationError("Parent comment belongs to a different post"))
		}
		// One level of threading: replying to a reply attaches to its parent.
		if parent.ParentCommentID != nil {
			req.ParentCommentID = parent.ParentCommentID
		}
		parentAuthorID = parent.UserID
	}

	comment := models.Comment{
		UserID:          userID,
		PostID:          postID,
		ParentCommentID: req.ParentCommentID,
		Content:         req.Content,
	}
	if err := s.commentRepo.Create(c.Context(), &comment); err != nil {
		return models.RespondWithError(c, err)
	}

	commentID := comment.ID
	s.notify(c, &models.Notification{
		UserID:    post.UserID,
		ActorID:   userID,
		Type:      models.NotificationComment,
		PostID:    &postID,
		CommentID: &commentID,
		Content:   "commented on your post",
	})
	if parentAuthorID != 0 && parentAuthorID != post.UserID {
		s.notify(c, &models.Notification{
			UserID:    parentAuthorID,
			ActorID:   userID,
			Type:      models.NotificationComment,
			PostID:    &postID,
			CommentID: &commentID,
			Content:   "replied to your comment",
		})
	}

	return models.Success(c, fiber.StatusCreated, comment)
}

// UpdateComment edits an owned comment's text.
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	commentID, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		return models.RespondWithError(c, models.NewValidationError("Comment content is required"))
	}
	if len(req.Content) > maxCommentLength {
		return models.RespondWithError(c, models.NewValidationError("Comment content exceeds 280 characters"))
	}

	comment, err := s.commentRepo.UpdateOwned(c.Context(), commentID, currentUserID(c), req.Content)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Success(c, fiber.StatusOK, comment)
}

// DeleteComment removes an owned comment and its replies.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if err := s.commentRepo.DeleteOwned(c.Context(), commentID, currentUserID(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.SuccessMessage(c, fiber.StatusOK, "Comment deleted")
}

// LikeComment records a like on a comment.
func (s *Server) LikeComment(c *fiber.Ctx) error {
	commentID, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if _, err := s.commentRepo.GetByID(c.Context(), commentID); err != nil {
		return models.RespondWithError(c, err)
	}
	if err := s.socialRepo.LikeComment(c.Context(), currentUserID(c), commentID); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.SuccessMessage(c, fiber.StatusOK, "Comment liked")
}

// UnlikeComment removes a like from a comment.
func (s *Server) UnlikeComment(c *fiber.Ctx) error {
	commentID, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if err := s.socialRepo.UnlikeComment(c.Context(), currentUserID(c), commentID); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.SuccessMessage(c, fiber.StatusOK, "Like removed")
}
