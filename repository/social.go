package repository

import (
	"context"
	"errors"

	"chirp/models"

	"gorm.io/gorm"
)

// SocialRepository creates and removes social-graph edges. Every create or
// delete adjusts the owning entity's denormalized counter inside the same
// transaction, so a partial failure can never leave the two out of step.
// Duplicate edges are detected by the store's unique constraint, never by a
// pre-check read.
type SocialRepository interface {
	Follow(ctx context.Context, followerID, followingID uint) error
	Unfollow(ctx context.Context, followerID, followingID uint) error

	// LikePost and friends return the post author's id so the caller can
	// notify the counterparty.
	LikePost(ctx context.Context, userID, postID uint) (authorID uint, err error)
	UnlikePost(ctx context.Context, userID, postID uint) error
	Repost(ctx context.Context, userID, postID uint, quoteText string) (authorID uint, err error)
	BookmarkPost(ctx context.Context, userID, postID uint) (authorID uint, err error)
	UnbookmarkPost(ctx context.Context, userID, postID uint) error

	LikeComment(ctx context.Context, userID, commentID uint) error
	UnlikeComment(ctx context.Context, userID, commentID uint) error
}

type socialRepository struct {
	db *gorm.DB
}

// NewSocialRepository creates a new social graph repository
func NewSocialRepository(db *gorm.DB) SocialRepository {
	return &socialRepository{db: db}
}

func (r *socialRepository) Follow(ctx context.Context, followerID, followingID uint) error {
	if followerID == followingID {
		return models.NewValidationError("You cannot follow yourself")
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.Follow{FollowerID: followerID, FollowingID: followingID}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", followerID).
			UpdateColumn("following_count", gorm.Expr("following_count + 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", followingID).
			UpdateColumn("followers_count", gorm.Expr("followers_count + 1")).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.NewConflictError("Already following this user")
	}
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *socialRepository) Unfollow(ctx context.Context, followerID, followingID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).
			Delete(&models.Follow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewValidationError("You are not following this user")
		}
		if err := tx.Model(&models.User{}).Where("id = ?", followerID).
			UpdateColumn("following_count", gorm.Expr("following_count - 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", followingID).
			UpdateColumn("followers_count", gorm.Expr("followers_count - 1")).Error
	})
	return wrapEdgeErr(err)
}

func (r *socialRepository) LikePost(ctx context.Context, userID, postID uint) (uint, error) {
	authorID, err := r.postAuthor(ctx, postID)
	if err != nil {
		return 0, err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.Like{UserID: userID, PostID: postID}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return 0, models.NewConflictError("Post already liked")
	}
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return authorID, nil
}

func (r *socialRepository) UnlikePost(ctx context.Context, userID, postID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewValidationError("Post not liked yet")
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("likes_count", gorm.Expr("likes_count - 1")).Error
	})
	return wrapEdgeErr(err)
}

func (r *socialRepository) Repost(ctx context.Context, userID, postID uint, quoteText string) (uint, error) {
	authorID, err := r.postAuthor(ctx, postID)
	if err != nil {
		return 0, err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.Repost{UserID: userID, PostID: postID, QuoteText: quoteText}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("reposts_count", gorm.Expr("reposts_count + 1")).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return 0, models.NewConflictError("Already reposted")
	}
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return authorID, nil
}

func (r *socialRepository) BookmarkPost(ctx context.Context, userID, postID uint) (uint, error) {
	authorID, err := r.postAuthor(ctx, postID)
	if err != nil {
		return 0, err
	}

	if err := r.db.WithContext(ctx).Create(&models.Bookmark{UserID: userID, PostID: postID}).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, models.NewConflictError("Post already bookmarked")
		}
		return 0, models.NewInternalError(err)
	}
	return authorID, nil
}

func (r *socialRepository) UnbookmarkPost(ctx context.Context, userID, postID uint) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Bookmark{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewValidationError("Post not bookmarked yet")
	}
	return nil
}

func (r *socialRepository) LikeComment(ctx context.Context, userID, commentID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.CommentLike{UserID: userID, CommentID: commentID}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Comment{}).Where("id = ?", commentID).
			UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.NewConflictError("Comment already liked")
	}
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *socialRepository) UnlikeComment(ctx context.Context, userID, commentID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND comment_id = ?", userID, commentID).Delete(&models.CommentLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewValidationError("Comment not liked yet")
		}
		return tx.Model(&models.Comment{}).Where("id = ?", commentID).
			UpdateColumn("likes_count", gorm.Expr("likes_count - 1")).Error
	})
	return wrapEdgeErr(err)
}

// postAuthor resolves a post's owner, doubling as the existence check for
// edge creates targeting posts.
func (r *socialRepository) postAuthor(ctx context.Context, postID uint) (uint, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Select("id", "user_id").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, models.NewNotFoundError("Post")
		}
		return 0, models.NewInternalError(err)
	}
	return post.UserID, nil
}

// wrapEdgeErr keeps typed application errors intact and wraps anything else
// as internal.
func wrapEdgeErr(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return models.NewInternalError(err)
}
