package repository

import (
	"context"

	"chirp/models"

	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification data operations
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.NotificationView, error)
	MarkAllRead(ctx context.Context, userID uint) error
	DeleteOwned(ctx context.Context, id, userID uint) error
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if !n.Type.IsValid() {
		return models.NewInternalError(nil)
	}
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ListByUser returns the recipient's notifications, newest first, with actor
// fields and snippets of the referenced post/comment.
func (r *notificationRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.NotificationView, error) {
	var views []models.NotificationView
	err := r.db.WithContext(ctx).Raw(`
		SELECT n.id, n.user_id, n.actor_id, n.type, n.post_id, n.comment_id, n.content,
		       n.is_read, n.created_at,
		       u.name AS actor_name, u.username AS actor_username, u.avatar AS actor_avatar,
		       (SELECT content FROM posts WHERE id = n.post_id) AS post_content,
		       (SELECT content FROM comments WHERE id = n.comment_id) AS comment_content
		FROM notifications n
		JOIN users u ON n.actor_id = u.id
		WHERE n.user_id = @user
		ORDER BY n.created_at DESC
		LIMIT @limit OFFSET @offset`,
		map[string]any{"user": userID, "limit": limit, "offset": offset},
	).Scan(&views).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return views, nil
}

// MarkAllRead flips every unread notification for the user in one statement.
func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uint) error {
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// DeleteOwned removes a notification only if the caller is its recipient.
func (r *notificationRepository) DeleteOwned(ctx context.Context, id, userID uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Notification{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Notification")
	}
	return nil
}
