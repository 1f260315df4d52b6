package server

import (
	"strings"

	"chirp/models"
	"chirp/validation"

	"github.com/gofiber/fiber/v2"
)

type updateProfileRequest struct {
	Name       *string `json:"name"`
	Bio        *string `json:"bio"`
	Location   *string `json:"location"`
	Website    *string `json:"website"`
	Avatar     *string `json:"avatar"`
	CoverPhoto *string `json:"cover_photo"`
}

// GetUserProfile returns a public profile with the viewer's follow flag.
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	username := strings.TrimSpace(c.Params("username"))
	if username == "" {
		return models.RespondWithError(c, models.NewValidationError("Username is required"))
	}

	profile, err := s.userRepo.GetProfile(c.Context(), username, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Success(c, fiber.StatusOK, profile)
}

// UpdateProfile applies a partial update to the caller's own profile. Only
// the provided fields change; username and email are immutable here.
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := validation.ValidateName(name); err != nil {
			return models.RespondWithError(c, models.NewValidationError(err.Error()))
		}
		fields["name"] = name
	}
	if req.Bio != nil {
		if len(*req.Bio) > 160 {
			return models.RespondWithError(c, models.NewValidationError("Bio must not exceed 160 characters"))
		}
		fields["bio"] = *req.Bio
	}
	if req.Location != nil {
		fields["location"] = *req.Location
	}
	if req.Website != nil {
		fields["website"] = *req.Website
	}
	if req.Avatar != nil {
		fields["avatar"] = *req.Avatar
	}
	if req.CoverPhoto != nil {
		fields["cover_photo"] = *req.CoverPhoto
	}
	if len(fields) == 0 {
		return models.RespondWithError(c, models.NewValidationError("No fields to update"))
	}

	userID := currentUserID(c)
	if err := s.userRepo.UpdateFields(c.Context(), userID, fields); err != nil {
		return models.RespondWithError(c, err)
	}

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Success(c, fiber.StatusOK, user)
}

// GetUserPosts lists a user's posts.
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	limit, offset := parsePagination(c)

	views, err := s.postRepo.ByUser(c.Context(), userID, currentUserID(c), limit, offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.SuccessList(c, len(views), views)
}

// GetUserLikedPosts lists the posts a user has liked.
func (s *Server) GetUserLikedPosts(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	limit, offset := parsePagination(c)

	views, err := s.postRepo.LikedBy(c.Context(), userID, currentUserID(c), limit, offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.SuccessList(c, len(views), views)
}

// GetUserBookmarkedPosts lists the caller's bookmarks. Bookmarks are private:
// only their owner may list them.
func (s *Server) GetUserBookmarkedPosts(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	viewerID := currentUserID(c)
	if userID != viewerID {
		return models.RespondWithError(c, models.NewForbiddenError("Bookmarks are private"))
	}
	limit, offset := parsePagination(c)

	views, err := s.postRepo.BookmarkedBy(c.Context(), userID, viewerID, limit, offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.SuccessList(c, len(views), views)
}

// GetUserComments lists a user's comments with the commented post's context.
func (s *Server) GetUserComments(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	limit, offset := parsePagination(c)

	views, err := s.commentRepo.ListByUser(c.Context(), userID, currentUserID(c), limit, offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.SuccessList(c, len(views), views)
}

// GetFollowers lists a user's followers with the viewer's follow flags.
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	limit, offset := parsePagination(c)

	users, err := s.userRepo.GetFollowers(c.Context(), userID, currentUserID(c), limit, offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.SuccessList(c, len(users), users)
}

// GetFollowing lists the users a user follows.
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	limit, offset := parsePagination(c)

	users, err := s.userRepo.GetFollowing(c.Context(), userID, currentUserID(c), limit, offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.SuccessList(c, len(users), users)
}

// FollowUser creates a follow edge and notifies the followed user.
func (s *Server) FollowUser(c *fiber.Ctx) error {
	followingID, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	// Existence check up front so following a missing user is a 404, not a
	// dangling edge.
	if _, err := s.userRepo.GetByID(c.Context(), followingID); err != nil {
		return models.RespondWithError(c, err)
	}

	followerID := currentUserID(c)
	if err := s.socialRepo.Follow(c.Context(), followerID, followingID); err != nil {
		return models.RespondWithError(c, err)
	}

	s.notify(c, &models.Notification{
		UserID:  followingID,
		ActorID: followerID,
		Type:    models.NotificationFollow,
		Content: "started following you",
	})

	return models.SuccessMessage(c, fiber.StatusOK, "User followed")
}

// UnfollowUser removes a follow edge.
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	followingID, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if err := s.socialRepo.Unfollow(c.Context(), currentUserID(c), followingID); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.SuccessMessage(c, fiber.StatusOK, "User unfollowed")
}
