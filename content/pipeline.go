package content

import (
	"context"
	"log/slog"

	"chirp/models"
	"chirp/notifications"
	"chirp/repository"

	"gorm.io/gorm"
)

// Pipeline runs the post-authoring side effects: hashtag upserts and links,
// mention rows, and mention notifications. The post itself is already
// committed before the pipeline runs, so the pipeline never surfaces an
// error to the author; individual tag or mention failures are logged and
// skipped.
type Pipeline struct {
	db         *gorm.DB
	hashtags   repository.HashtagRepository
	users      repository.UserRepository
	dispatcher *notifications.Dispatcher
	log        *slog.Logger
}

func NewPipeline(
	db *gorm.DB,
	hashtags repository.HashtagRepository,
	users repository.UserRepository,
	dispatcher *notifications.Dispatcher,
	log *slog.Logger,
) *Pipeline {
	return &Pipeline{db: db, hashtags: hashtags, users: users, dispatcher: dispatcher, log: log}
}

// Process derives hashtag and mention links for a freshly created post.
func (p *Pipeline) Process(ctx context.Context, post *models.Post) {
	touched := p.applyHashtags(ctx, post)
	if err := p.hashtags.RecomputeCounts(ctx, touched); err != nil {
		p.log.Error("hashtag count recompute failed", "post_id", post.ID, "error", err)
	}
	p.applyMentions(ctx, post)
}

// Reprocess clears the links derived from a post's previous content, then
// re-derives from the new content. Counts for tags that lost their link are
// recomputed so editing a hashtag out of a post does not leave its counter
// stale.
func (p *Pipeline) Reprocess(ctx context.Context, post *models.Post) {
	cleared, err := p.hashtags.ClearLinks(ctx, post.ID)
	if err != nil {
		p.log.Error("hashtag link clearing failed", "post_id", post.ID, "error", err)
	}
	if err := p.db.WithContext(ctx).Where("post_id = ?", post.ID).Delete(&models.Mention{}).Error; err != nil {
		p.log.Error("mention clearing failed", "post_id", post.ID, "error", err)
	}

	touched := p.applyHashtags(ctx, post)
	touched = append(touched, cleared...)
	if err := p.hashtags.RecomputeCounts(ctx, touched); err != nil {
		p.log.Error("hashtag count recompute failed", "post_id", post.ID, "error", err)
	}
	p.applyMentions(ctx, post)
}

// ClearForDelete recomputes counts for the hashtags a deleted post was
// linked to. The links themselves go away with the post.
func (p *Pipeline) ClearForDelete(ctx context.Context, hashtagIDs []uint) {
	if err := p.hashtags.RecomputeCounts(context.WithoutCancel(ctx), hashtagIDs); err != nil {
		p.log.Error("hashtag count recompute failed after delete", "error", err)
	}
}

func (p *Pipeline) applyHashtags(ctx context.Context, post *models.Post) []uint {
	var touched []uint
	for _, tag := range Hashtags(post.Content) {
		id, err := p.hashtags.Attach(ctx, post.ID, tag)
		if err != nil {
			p.log.Error("hashtag attach failed", "post_id", post.ID, "tag", tag, "error", err)
			continue
		}
		touched = append(touched, id)
	}
	return touched
}

func (p *Pipeline) applyMentions(ctx context.Context, post *models.Post) {
	for _, username := range Mentions(post.Content) {
		user, err := p.users.GetByUsername(ctx, username)
		if err != nil {
			p.log.Error("mention lookup failed", "post_id", post.ID, "username", username, "error", err)
			continue
		}
		if user == nil {
			continue
		}

		mention := models.Mention{PostID: post.ID, MentionedUserID: user.ID}
		if err := p.db.WithContext(ctx).Create(&mention).Error; err != nil {
			p.log.Error("mention insert failed", "post_id", post.ID, "username", username, "error", err)
			continue
		}

		if user.ID == post.UserID {
			continue
		}
		postID := post.ID
		err = p.dispatcher.Dispatch(ctx, &models.Notification{
			UserID:  user.ID,
			ActorID: post.UserID,
			Type:    models.NotificationMention,
			PostID:  &postID,
			Content: "mentioned you in a post",
		})
		if err != nil {
			p.log.Error("mention notification failed", "post_id", post.ID, "username", username, "error", err)
		}
	}
}
