package repository

import (
	"context"
	"errors"

	"chirp/models"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	UpdateOwned(ctx context.Context, id, userID uint, content string) (*models.Comment, error)
	DeleteOwned(ctx context.Context, id, userID uint) error

	ListByPost(ctx context.Context, postID, viewerID uint, limit, offset int) ([]models.CommentView, error)
	ListByUser(ctx context.Context, userID, viewerID uint, limit, offset int) ([]models.CommentView, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts the comment and bumps the post's comments_count in one
// transaction.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", comment.PostID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + 1")).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment")
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

func (r *commentRepository) UpdateOwned(ctx context.Context, id, userID uint, content string) (*models.Comment, error) {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("content", content)
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Comment")
	}
	return r.GetByID(ctx, id)
}

// DeleteOwned removes the comment, its replies and their likes, and
// decrements the post's comments_count, all in one transaction.
func (r *commentRepository) DeleteOwned(ctx context.Context, id, userID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&comment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Comment")
			}
			return err
		}

		// Children cascade with their parent.
		var ids []uint
		if err := tx.Model(&models.Comment{}).
			Where("id = ? OR parent_comment_id = ?", id, id).
			Pluck("id", &ids).Error; err != nil {
			return err
		}

		if err := tx.Where("comment_id IN ?", ids).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&models.Comment{})
		if res.Error != nil {
			return res.Error
		}

		return tx.Model(&models.Post{}).Where("id = ?", comment.PostID).
			UpdateColumn("comments_count", gorm.Expr("comments_count - ?", res.RowsAffected)).Error
	})
	return wrapEdgeErr(err)
}

// ListByPost returns a flat page of the post's comments, oldest first, with
// parent_comment_id exposed so the client can reconstruct one level of
// nesting.
func (r *commentRepository) ListByPost(ctx context.Context, postID, viewerID uint, limit, offset int) ([]models.CommentView, error) {
	var views []models.CommentView
	err := r.db.WithContext(ctx).Raw(`
		SELECT c.id, c.user_id, c.post_id, c.parent_comment_id, c.content, c.likes_count,
		       c.created_at, c.updated_at,
		       u.name, u.username, u.avatar, u.verified,
		       EXISTS(SELECT 1 FROM comment_likes WHERE comment_id = c.id AND user_id = @viewer) AS is_liked
		FROM comments c
		JOIN users u ON c.user_id = u.id
		WHERE c.post_id = @post
		ORDER BY c.created_at ASC
		LIMIT @limit OFFSET @offset`,
		map[string]any{"viewer": viewerID, "post": postID, "limit": limit, "offset": offset},
	).Scan(&views).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return views, nil
}

// ListByUser returns a user's comments with the commented post's context.
func (r *commentRepository) ListByUser(ctx context.Context, userID, viewerID uint, limit, offset int) ([]models.CommentView, error) {
	var views []models.CommentView
	err := r.db.WithContext(ctx).Raw(`
		SELECT c.id, c.user_id, c.post_id, c.parent_comment_id, c.content, c.likes_count,
		       c.created_at, c.updated_at,
		       p.content AS post_content, p.user_id AS post_author_id,
		       u.name, u.username, u.avatar, u.verified,
		       EXISTS(SELECT 1 FROM comment_likes WHERE comment_id = c.id AND user_id = @viewer) AS is_liked
		FROM comments c
		JOIN users u ON c.user_id = u.id
		JOIN posts p ON c.post_id = p.id
		WHERE c.user_id = @user
		ORDER BY c.created_at DESC
		LIMIT @limit OFFSET @offset`,
		map[string]any{"viewer": viewerID, "user": userID, "limit": limit, "offset": offset},
	).Scan(&views).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return views, nil
}
