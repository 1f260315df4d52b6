package server

import (
	"strconv"
	"unicode/utf8"

	"chirp/models"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// parsePagination reads page/limit query parameters, clamping to sane
// bounds. Pages are 1-based.
func parsePagination(c *fiber.Ctx) (limit, offset int) {
	return parsePaginationDefault(c, defaultPageSize)
}

func parsePaginationDefault(c *fiber.Ctx, def int) (limit, offset int) {
	limit = c.QueryInt("limit", def)
	if limit < 1 {
		limit = def
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	return limit, (page - 1) * limit
}

// parseIDParam reads a positive integer route parameter.
func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("Invalid id")
	}
	return uint(id), nil
}

// truncate shortens s to max runes for use in notification snippets.
// Cutting on runes rather than bytes keeps multi-byte text intact.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}
