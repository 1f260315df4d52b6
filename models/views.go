package models

import "time"

// PostView is a post row joined with its author and the per-viewer
// relationship flags. The flags come from correlated existence checks, never
// joins, so a row is never duplicated.
type PostView struct {
	ID            uint      `json:"id"`
	UserID        uint      `json:"user_id"`
	Content       string    `json:"content"`
	ImageURL      string    `json:"image_url"`
	LikesCount    int       `json:"likes_count"`
	CommentsCount int       `json:"comments_count"`
	RepostsCount  int       `json:"reposts_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Name     string `json:"name"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Verified bool   `json:"verified"`

	IsLiked      bool `json:"is_liked"`
	IsReposted   bool `json:"is_reposted"`
	IsBookmarked bool `json:"is_bookmarked"`
}

// CommentView is a comment row joined with its author and the viewer's like
// flag. PostContent and PostAuthorID are populated only by the user-comments
// listing.
type CommentView struct {
	ID              uint      `json:"id"`
	UserID          uint      `json:"user_id"`
	PostID          uint      `json:"post_id"`
	ParentCommentID *uint     `json:"parent_comment_id"`
	Content         string    `json:"content"`
	LikesCount      int       `json:"likes_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Name     string `json:"name"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Verified bool   `json:"verified"`

	IsLiked bool `json:"is_liked"`

	PostContent  string `json:"post_content,omitempty"`
	PostAuthorID uint   `json:"post_author_id,omitempty"`
}

// UserSummary is the compact user shape used by follower lists, suggestions
// and search results.
type UserSummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Username    string `json:"username"`
	Avatar      string `json:"avatar"`
	Verified    bool   `json:"verified"`
	Bio         string `json:"bio"`
	IsFollowing bool   `json:"is_following"`
}

// ProfileView is a user's public profile with the viewer's follow flag.
type ProfileView struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	Username       string    `json:"username"`
	Bio            string    `json:"bio"`
	Location       string    `json:"location"`
	Website        string    `json:"website"`
	Avatar         string    `json:"avatar"`
	CoverPhoto     string    `json:"cover_photo"`
	Verified       bool      `json:"verified"`
	FollowersCount int       `json:"followers_count"`
	FollowingCount int       `json:"following_count"`
	PostsCount     int       `json:"posts_count"`
	CreatedAt      time.Time `json:"created_at"`
	IsFollowing    bool      `json:"is_following"`
}

// NotificationView is a notification row joined with its actor and snippets
// of the referenced post/comment.
type NotificationView struct {
	ID        uint             `json:"id"`
	UserID    uint             `json:"user_id"`
	ActorID   uint             `json:"actor_id"`
	Type      NotificationType `json:"type"`
	PostID    *uint            `json:"post_id"`
	CommentID *uint            `json:"comment_id"`
	Content   string           `json:"content"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`

	ActorName     string `json:"actor_name"`
	ActorUsername string `json:"actor_username"`
	ActorAvatar   string `json:"actor_avatar"`

	PostContent    *string `json:"post_content"`
	CommentContent *string `json:"comment_content"`
}
