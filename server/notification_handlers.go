package server

import (
	"chirp/models"

	"github.com/gofiber/fiber/v2"
)

// GetNotifications lists the caller's notifications, newest first.
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)

	views, err := s.notificationRepo.ListByUser(c.Context(), currentUserID(c), limit, offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.SuccessList(c, len(views), views)
}

// MarkNotificationsRead marks all of the caller's notifications as read.
func (s *Server) MarkNotificationsRead(c *fiber.Ctx) error {
	if err := s.notificationRepo.MarkAllRead(c.Context(), currentUserID(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.SuccessMessage(c, fiber.StatusOK, "Notifications marked as read")
}

// DeleteNotification removes one of the caller's own notifications.
func (s *Server) DeleteNotification(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if err := s.notificationRepo.DeleteOwned(c.Context(), id, currentUserID(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.SuccessMessage(c, fiber.StatusOK, "Notification deleted")
}
