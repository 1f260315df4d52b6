package repository

import (
	"context"
	"errors"

	"chirp/models"

	"gorm.io/gorm"
)

// postColumns is the shared SELECT list for post views: the post row, its
// author, and the viewer's relationship flags as correlated existence checks.
const postColumns = `
	p.id, p.user_id, p.content, p.image_url,
	p.likes_count, p.comments_count, p.reposts_count,
	p.created_at, p.updated_at,
	u.name, u.username, u.avatar, u.verified,
	EXISTS(SELECT 1 FROM likes WHERE post_id = p.id AND user_id = @viewer) AS is_liked,
	EXISTS(SELECT 1 FROM reposts WHERE post_id = p.id AND user_id = @viewer) AS is_reposted,
	EXISTS(SELECT 1 FROM bookmarks WHERE post_id = p.id AND user_id = @viewer) AS is_bookmarked`

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetOwned(ctx context.Context, id, userID uint) (*models.Post, error)
	UpdateContent(ctx context.Context, id uint, content string) error
	Delete(ctx context.Context, id, userID uint) error

	GetByID(ctx context.Context, id, viewerID uint) (*models.PostView, error)
	Feed(ctx context.Context, viewerID uint, limit, offset int) ([]models.PostView, error)
	Explore(ctx context.Context, viewerID uint, limit, offset int) ([]models.PostView, error)
	ByUser(ctx context.Context, userID, viewerID uint, limit, offset int) ([]models.PostView, error)
	LikedBy(ctx context.Context, userID, viewerID uint, limit, offset int) ([]models.PostView, error)
	BookmarkedBy(ctx context.Context, userID, viewerID uint, limit, offset int) ([]models.PostView, error)
	Search(ctx context.Context, query string, viewerID uint, limit, offset int) ([]models.PostView, error)
	Trending(ctx context.Context, viewerID uint, limit int) ([]models.PostView, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Create inserts the post and bumps the author's posts_count in one
// transaction.
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", post.UserID).
			UpdateColumn("posts_count", gorm.Expr("posts_count + 1")).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetOwned fetches a post only if userID owns it; ownership and existence
// failures are indistinguishable to the caller.
func (r *postRepository) GetOwned(ctx context.Context, id, userID uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post")
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) UpdateContent(ctx context.Context, id uint, content string) error {
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).
		Update("content", content).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes the post, its dependent rows, and decrements the author's
// posts_count, all in one transaction. Dependent rows are deleted explicitly
// so the behavior does not hinge on the store's cascade configuration.
func (r *postRepository) Delete(ctx context.Context, id, userID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post")
		}

		for _, m := range []any{
			&models.Like{}, &models.Repost{}, &models.Bookmark{},
			&models.PostHashtag{}, &models.Mention{}, &models.Notification{},
		} {
			if err := tx.Where("post_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		// Comment likes hang off the comments, not the post, so they are
		// cleaned up by comment id before the comments themselves go.
		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).Where("post_id = ?", id).
			Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if len(commentIDs) > 0 {
			if err := tx.Where("comment_id IN ?", commentIDs).Delete(&models.CommentLike{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		return tx.Model(&models.User{}).Where("id = ?", userID).
			UpdateColumn("posts_count", gorm.Expr("posts_count - 1")).Error
	})
	return wrapEdgeErr(err)
}

func (r *postRepository) GetByID(ctx context.Context, id, viewerID uint) (*models.PostView, error) {
	var view models.PostView
	err := r.db.WithContext(ctx).Raw(`
		SELECT`+postColumns+`
		FROM posts p
		JOIN users u ON p.user_id = u.id
		WHERE p.id = @id`,
		map[string]any{"viewer": viewerID, "id": id},
	).Scan(&view).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if view.ID == 0 {
		return nil, models.NewNotFoundError("Post")
	}
	return &view, nil
}

// Feed returns posts authored by users the viewer follows, newest first.
func (r *postRepository) Feed(ctx context.Context, viewerID uint, limit, offset int) ([]models.PostView, error) {
	var views []models.PostView
	err := r.db.WithContext(ctx).Raw(`
		SELECT`+postColumns+`
		FROM posts p
		JOIN users u ON p.user_id = u.id
		JOIN follows f ON p.user_id = f.following_id
		WHERE f.follower_id = @viewer
		ORDER BY p.created_at DESC
		LIMIT @limit OFFSET @offset`,
		map[string]any{"viewer": viewerID, "limit": limit, "offset": offset},
	).Scan(&views).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return views, nil
}

// Explore returns all posts, newest first, unfiltered by the social graph.
func (r *postRepository) Explore(ctx context.Context, viewerID uint, limit, offset int) ([]models.PostView, error) {
	var views []models.PostView
	err := r.db.WithContext(ctx).Raw(`
		SELECT`+postColumns+`
		FROM posts p
		JOIN users u ON p.user_id = u.id
		ORDER BY p.created_at DESC
		LIMIT @limit OFFSET @offset`,
		map[string]any{"viewer": viewerID, "limit": limit, "offset": offset},
	).Scan(&views).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return views, nil
}

func (r *postRepository) ByUser(ctx context.Context, userID, viewerID uint, limit, offset int) ([]models.PostView, error) {
	var views []models.PostView
	err := r.db.WithContext(ctx).Raw(`
		SELECT`+postColumns+`
		FROM posts p
		JOIN users u ON p.user_id = u.id
		WHERE p.user_id = @user
		ORDER BY p.created_at DESC
		LIMIT @limit OFFSET @offset`,
		map[string]any{"viewer": viewerID, "user": userID, "limit": limit, "offset": offset},
	).Scan(&views).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return views, nil
}

// LikedBy lists posts a user liked, most recently liked first.
func (r *postRepository) LikedBy(ctx context.Context, userID, viewerID uint, limit, offset int) ([]models.PostView, error) {
	var views []models.PostView
	err := r.db.WithContext(ctx).Raw(`
		SELECT`+postColumns+`
		FROM posts p
		JOIN users u ON p.user_id = u.id
		JOIN likes l ON l.post_id = p.id
		WHERE l.user_id = @user
		ORDER BY l.created_at DESC
		LIMIT @limit OFFSET @offset`,
		map[string]any{"viewer": viewerID, "user": userID, "limit": limit, "offset": offset},
	).Scan(&views).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return views, nil
}

// BookmarkedBy lists posts a user bookmarked, most recently bookmarked first.
func (r *postRepository) BookmarkedBy(ctx context.Context, userID, viewerID uint, limit, offset int) ([]models.PostView, error) {
	var views []models.PostView
	err := r.db.WithContext(ctx).Raw(`
		SELECT`+postColumns+`
		FROM posts p
		JOIN users u ON p.user_id = u.id
		JOIN bookmarks b ON b.post_id = p.id
		WHERE b.user_id = @user
		ORDER BY b.created_at DESC
		LIMIT @limit OFFSET @offset`,
		map[string]any{"viewer": viewerID, "user": userID, "limit": limit, "offset": offset},
	).Scan(&views).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return views, nil
}

func (r *postRepository) Search(ctx context.Context, query string, viewerID uint, limit, offset int) ([]models.PostView, error) {
	var views []models.PostView
	err := r.db.WithContext(ctx).Raw(`
		SELECT`+postColumns+`
		FROM posts p
		JOIN users u ON p.user_id = u.id
		WHERE LOWER(p.content) LIKE LOWER(@pattern)
		ORDER BY p.created_at DESC
		LIMIT @limit OFFSET @offset`,
		map[string]any{"viewer": viewerID, "pattern": "%" + query + "%", "limit": limit, "offset": offset},
	).Scan(&views).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return views, nil
}

// Trending ranks posts by total engagement, newest first on ties.
func (r *postRepository) Trending(ctx context.Context, viewerID uint, limit int) ([]models.PostView, error) {
	var views []models.PostView
	err := r.db.WithContext(ctx).Raw(`
		SELECT`+postColumns+`
		FROM posts p
		JOIN users u ON p.user_id = u.id
		ORDER BY (p.likes_count + p.comments_count + p.reposts_count) DESC, p.created_at DESC
		LIMIT @limit`,
		map[string]any{"viewer": viewerID, "limit": limit},
	).Scan(&views).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return views, nil
}
