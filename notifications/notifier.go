// Package notifications implements the persist-then-push notification flow:
// a Dispatcher writes the notification row, then publishes a best-effort
// event into the recipient's Redis channel, which the websocket Hub fans out
// to connected clients.
package notifications

import (
	"context"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

const userChannelPrefix = "notifications:user:"

// Notifier provides helpers to publish notification events into Redis channels.
// A Notifier with a nil client is a no-op, so an unavailable transport never
// fails the originating operation.
type Notifier struct {
	rdb *redis.Client
}

func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends a notification payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// StartPatternSubscriber subscribes to every per-user channel and calls
// onMessage with each incoming channel name and payload. The subscription
// drains in a background goroutine until the subscriber's channel closes.
func (n *Notifier) StartPatternSubscriber(ctx context.Context, onMessage func(channel, payload string)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPrefix+"*")
	ch := sub.Channel()

	go func() {
		for msg := range ch {
			onMessage(msg.Channel, msg.Payload)
		}
	}()

	return nil
}

// UserChannel derives a user's notification channel name.
func UserChannel(userID uint) string {
	return userChannelPrefix + strconv.FormatUint(uint64(userID), 10)
}

// ParseUserChannel recovers the user id from a name built by UserChannel.
// The second return is false for channels in any other shape.
func ParseUserChannel(channel string) (uint, bool) {
	raw, found := strings.CutPrefix(channel, userChannelPrefix)
	if !found {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
