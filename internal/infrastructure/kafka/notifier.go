package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/LavaJover/shvark-binary-engine/internal/domain"
)

// KafkaNotifier hands notifications to the notifications topic keyed by member,
// so one member's notifications stay ordered.
type KafkaNotifier struct {
	publisher domain.PublisherPort
	topic     string
}

func NewKafkaNotifier(publisher domain.PublisherPort, topic string) *KafkaNotifier {
	return &KafkaNotifier{publisher: publisher, topic: topic}
}

func (n *KafkaNotifier) Notify(ctx context.Context, notification domain.Notification) error {
	v, err := json.Marshal(NotificationEvent{
		MemberID:  notification.MemberID,
		Kind:      string(notification.Kind),
		Title:     notification.Title,
		Message:   notification.Message,
		CreatedAt: notification.CreatedAt,
	})
	if err != nil {
		return err
	}
	if err := n.publisher.Publish(ctx, n.topic, domain.Message{Key: []byte(notification.MemberID), Value: v}); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}
