package server

import (
	"fmt"
	"time"

	"chirp/cache"
	"chirp/models"

	"github.com/gofiber/fiber/v2"
)

const trendingCacheTTL = 60 * time.Second

// GetTrendingHashtags returns the most used hashtags. The result is viewer
// independent, so a single cache entry serves everyone.
func (s *Server) GetTrendingHashtags(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	if limit < 1 || limit > 50 {
		limit = 10
	}

	var hashtags []models.Hashtag
	key := fmt.Sprintf("trending:hashtags:%d", limit)
	err := cache.CacheAside(c.Context(), s.redis, key, &hashtags, trendingCacheTTL, func() error {
		var err error
		hashtags, err = s.hashtagRepo.Trending(c.Context(), limit)
		return err
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.SuccessList(c, len(hashtags), hashtags)
}

// GetTrendingPosts returns posts ranked by engagement. The per-viewer
// relationship flags make the result viewer specific, so the cache is keyed
// by viewer.
func (s *Server) GetTrendingPosts(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	if limit < 1 || limit > 50 {
		limit = 10
	}
	viewerID := currentUserID(c)

	var posts []models.PostView
	key := fmt.Sprintf("trending:posts:%d:%d", viewerID, limit)
	err := cache.CacheAside(c.Context(), s.redis, key, &posts, trendingCacheTTL, func() error {
		var err error
		posts, err = s.postRepo.Trending(c.Context(), viewerID, limit)
		return err
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.SuccessList(c, len(posts), posts)
}

// GetFollowSuggestions returns popular accounts the caller does not follow.
func (s *Server) GetFollowSuggestions(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 5)
	if limit < 1 || limit > 20 {
		limit = 5
	}

	users, err := s.userRepo.GetSuggestions(c.Context(), currentUserID(c), limit)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.SuccessList(c, len(users), users)
}
