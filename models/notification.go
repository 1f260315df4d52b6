package models

import "time"

// NotificationType is the closed set of events a user can be notified about.
type NotificationType string

const (
	NotificationFollow   NotificationType = "follow"
	NotificationLike     NotificationType = "like"
	NotificationComment  NotificationType = "comment"
	NotificationRepost   NotificationType = "repost"
	NotificationMention  NotificationType = "mention"
	NotificationBookmark NotificationType = "bookmark"
)

// IsValid reports whether t is one of the known notification types.
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationFollow, NotificationLike, NotificationComment,
		NotificationRepost, NotificationMention, NotificationBookmark:
		return true
	}
	return false
}

// Notification is created by the mutation and side-effect layers, never by
// its recipient; the recipient may only flip the read flag or delete it.
type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index" json:"user_id"`
	ActorID   uint             `gorm:"not null" json:"actor_id"`
	Type      NotificationType `gorm:"size:50;not null" json:"type"`
	PostID    *uint            `json:"post_id"`
	CommentID *uint            `json:"comment_id"`
	Content   string           `json:"content"`
	IsRead    bool             `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`

	User    User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Actor   User     `gorm:"foreignKey:ActorID;constraint:OnDelete:CASCADE" json:"-"`
	Post    *Post    `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	Comment *Comment `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE" json:"-"`
}
