package models

import "time"

// Post is a short message authored by a user. Counters are denormalized and
// kept in lock-step with their edge tables by the repository layer.
type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	Content  string `gorm:"not null" json:"content"`
	ImageURL string `gorm:"size:255" json:"image_url"`

	LikesCount    int `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount int `gorm:"not null;default:0" json:"comments_count"`
	RepostsCount  int `gorm:"not null;default:0" json:"reposts_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// Comment belongs to a post. ParentCommentID enables one level of reply
// threading; children are removed with their parent.
type Comment struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	UserID          uint   `gorm:"not null;index" json:"user_id"`
	PostID          uint   `gorm:"not null;index" json:"post_id"`
	ParentCommentID *uint  `json:"parent_comment_id"`
	Content         string `gorm:"not null" json:"content"`
	LikesCount      int    `gorm:"not null;default:0" json:"likes_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User   User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Post   Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	Parent *Comment `gorm:"foreignKey:ParentCommentID;constraint:OnDelete:CASCADE" json:"-"`
}
