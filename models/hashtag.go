package models

import "time"

// Hashtag is created lazily the first time a tag appears in a post. Tags are
// stored lower-cased including the leading '#'. PostsCount is recomputed from
// post_hashtags whenever a post's links change, so it never drifts.
type Hashtag struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Tag           string    `gorm:"size:100;uniqueIndex;not null" json:"tag"`
	PostsCount    int       `gorm:"not null;default:0" json:"posts_count"`
	TrendingScore float64   `gorm:"not null;default:0" json:"trending_score"`
	CreatedAt     time.Time `json:"created_at"`
}

// PostHashtag links a post to a hashtag. The composite primary key makes the
// link idempotent.
type PostHashtag struct {
	PostID    uint `gorm:"primaryKey" json:"post_id"`
	HashtagID uint `gorm:"primaryKey" json:"hashtag_id"`

	Post    Post    `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	Hashtag Hashtag `gorm:"foreignKey:HashtagID;constraint:OnDelete:CASCADE" json:"-"`
}

// Mention records a textual @-mention of a user within a post. Not unique:
// the same user may be mentioned across many posts.
type Mention struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PostID          uint      `gorm:"not null;index" json:"post_id"`
	MentionedUserID uint      `gorm:"not null;index" json:"mentioned_user_id"`
	CreatedAt       time.Time `json:"created_at"`

	Post          Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	MentionedUser User `gorm:"foreignKey:MentionedUserID;constraint:OnDelete:CASCADE" json:"-"`
}
