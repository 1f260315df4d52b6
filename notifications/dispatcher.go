package notifications

import (
	"context"
	"encoding/json"
	"log/slog"

	"chirp/models"
	"chirp/observability"
	"chirp/repository"

	"go.opentelemetry.io/otel/attribute"
)

// Event is the payload pushed to the recipient's real-time channel.
type Event struct {
	Type      models.NotificationType `json:"type"`
	Message   string                  `json:"message"`
	PostID    *uint                   `json:"post_id,omitempty"`
	CommentID *uint                   `json:"comment_id,omitempty"`
	ActorID   uint                    `json:"actor_id"`
}

// Dispatcher persists a notification row, then pushes a best-effort
// real-time event. The push never contributes to the operation's success
// criteria: failures are logged and swallowed.
type Dispatcher struct {
	repo     repository.NotificationRepository
	notifier *Notifier
	log      *slog.Logger
}

func NewDispatcher(repo repository.NotificationRepository, notifier *Notifier, log *slog.Logger) *Dispatcher {
	return &Dispatcher{repo: repo, notifier: notifier, log: log}
}

// Dispatch stores the notification and pushes it to the recipient's channel.
// Self-notifications are dropped: an actor is never notified of their own
// action.
func (d *Dispatcher) Dispatch(ctx context.Context, n *models.Notification) error {
	if n.UserID == n.ActorID {
		return nil
	}
	if !n.Type.IsValid() {
		d.log.Error("dropping notification with unknown type", "type", n.Type)
		return nil
	}

	span, ctx := observability.NewSpan(ctx, "notifications.dispatch")
	defer span.End()
	span.AddAttributes(
		attribute.String("notification.type", string(n.Type)),
		attribute.Int("notification.recipient", int(n.UserID)),
	)

	if err := d.repo.Create(ctx, n); err != nil {
		span.SetError(err)
		return err
	}

	d.push(ctx, n)
	return nil
}

func (d *Dispatcher) push(ctx context.Context, n *models.Notification) {
	event := Event{
		Type:      n.Type,
		Message:   n.Content,
		PostID:    n.PostID,
		CommentID: n.CommentID,
		ActorID:   n.ActorID,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		d.log.Error("notification payload marshal failed", "error", err)
		return
	}

	if err := d.notifier.PublishUser(ctx, n.UserID, string(payload)); err != nil {
		d.log.Error("notification push failed", "user_id", n.UserID, "error", err)
	}
}
