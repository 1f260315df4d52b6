package repository

import (
	"context"
	"errors"

	"chirp/models"

	"gorm.io/gorm"
)

// HashtagRepository manages hashtag records and their post links. Tag
// popularity is a derived aggregate: posts_count is recomputed from
// post_hashtags whenever a post's links change, never decremented blindly.
type HashtagRepository interface {
	// Attach lazily creates the hashtag and links it to the post. The link
	// is idempotent. Returns the hashtag id.
	Attach(ctx context.Context, postID uint, tag string) (uint, error)
	// ClearLinks removes all hashtag links for a post and returns the ids of
	// the hashtags that were linked.
	ClearLinks(ctx context.Context, postID uint) ([]uint, error)
	// RecomputeCounts refreshes posts_count for the given hashtags from the
	// link table.
	RecomputeCounts(ctx context.Context, hashtagIDs []uint) error
	LinkedHashtags(ctx context.Context, postID uint) ([]models.Hashtag, error)

	Trending(ctx context.Context, limit int) ([]models.Hashtag, error)
	Search(ctx context.Context, query string, limit, offset int) ([]models.Hashtag, error)
}

type hashtagRepository struct {
	db *gorm.DB
}

// NewHashtagRepository creates a new hashtag repository
func NewHashtagRepository(db *gorm.DB) HashtagRepository {
	return &hashtagRepository{db: db}
}

func (r *hashtagRepository) Attach(ctx context.Context, postID uint, tag string) (uint, error) {
	var hashtag models.Hashtag
	err := r.db.WithContext(ctx).Where("tag = ?", tag).First(&hashtag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		hashtag = models.Hashtag{Tag: tag}
		err = r.db.WithContext(ctx).Create(&hashtag).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race with a concurrent insert of the same tag.
			err = r.db.WithContext(ctx).Where("tag = ?", tag).First(&hashtag).Error
		}
	}
	if err != nil {
		return 0, err
	}

	link := models.PostHashtag{PostID: postID, HashtagID: hashtag.ID}
	if err := r.db.WithContext(ctx).Create(&link).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return 0, err
	}
	return hashtag.ID, nil
}

func (r *hashtagRepository) ClearLinks(ctx context.Context, postID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.PostHashtag{}).
		Where("post_id = ?", postID).
		Pluck("hashtag_id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if err := r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.PostHashtag{}).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *hashtagRepository) RecomputeCounts(ctx context.Context, hashtagIDs []uint) error {
	if len(hashtagIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Exec(`
		UPDATE hashtags
		SET posts_count = (SELECT COUNT(*) FROM post_hashtags WHERE hashtag_id = hashtags.id)
		WHERE id IN ?`,
		hashtagIDs,
	).Error
}

func (r *hashtagRepository) LinkedHashtags(ctx context.Context, postID uint) ([]models.Hashtag, error) {
	var hashtags []models.Hashtag
	err := r.db.WithContext(ctx).Raw(`
		SELECT h.id, h.tag, h.posts_count, h.trending_score, h.created_at
		FROM hashtags h
		JOIN post_hashtags ph ON ph.hashtag_id = h.id
		WHERE ph.post_id = ?`,
		postID,
	).Scan(&hashtags).Error
	if err != nil {
		return nil, err
	}
	return hashtags, nil
}

func (r *hashtagRepository) Trending(ctx context.Context, limit int) ([]models.Hashtag, error) {
	var hashtags []models.Hashtag
	err := r.db.WithContext(ctx).
		Order("posts_count DESC").
		Limit(limit).
		Find(&hashtags).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return hashtags, nil
}

func (r *hashtagRepository) Search(ctx context.Context, query string, limit, offset int) ([]models.Hashtag, error) {
	var hashtags []models.Hashtag
	err := r.db.WithContext(ctx).
		Where("LOWER(tag) LIKE LOWER(?)", "%"+query+"%").
		Order("posts_count DESC").
		Limit(limit).
		Offset(offset).
		Find(&hashtags).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return hashtags, nil
}
