package server

import (
	"strings"

	"chirp/models"

	"github.com/gofiber/fiber/v2"
)

const minQueryLength = 2

// searchQuery trims the q parameter. Queries shorter than two characters are
// answered with empty results without touching the store.
func searchQuery(c *fiber.Ctx) (string, bool) {
	q := strings.TrimSpace(c.Query("q"))
	return q, len(q) >= minQueryLength
}

// SearchAll searches users and posts in one response.
func (s *Server) SearchAll(c *fiber.Ctx) error {
	q, ok := searchQuery(c)
	if !ok {
		return models.Success(c, fiber.StatusOK, fiber.Map{
			"users": []models.UserSummary{},
			"posts": []models.PostView{},
		})
	}
	limit, offset := parsePagination(c)

	users, err := s.userRepo.Search(c.Context(), q, limit, offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	posts, err := s.postRepo.Search(c.Context(), q, currentUserID(c), limit, offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return models.Success(c, fiber.StatusOK, fiber.Map{
		"users": users,
		"posts": posts,
	})
}

// SearchUsers searches users by name or username.
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	q, ok := searchQuery(c)
	if !ok {
		return models.SuccessList(c, 0, []models.UserSummary{})
	}
	limit, offset := parsePagination(c)

	users, err := s.userRepo.Search(c.Context(), q, limit, offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.SuccessList(c, len(users), users)
}

// SearchPosts searches post content.
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	q, ok := searchQuery(c)
	if !ok {
		return models.SuccessList(c, 0, []models.PostView{})
	}
	limit, offset := parsePagination(c)

	posts, err := s.postRepo.Search(c.Context(), q, currentUserID(c), limit, offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.SuccessList(c, len(posts), posts)
}

// SearchHashtags searches hashtags by tag text, most used first.
func (s *Server) SearchHashtags(c *fiber.Ctx) error {
	q, ok := searchQuery(c)
	if !ok {
		return models.SuccessList(c, 0, []models.Hashtag{})
	}
	limit, offset := parsePagination(c)

	hashtags, err := s.hashtagRepo.Search(c.Context(), q, limit, offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.SuccessList(c, len(hashtags), hashtags)
}
