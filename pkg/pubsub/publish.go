package pubsub

import (
	"context"

	"github.com/rovermesh/rovermesh/pkg/errors"
)

// Publish publishes a message to a topic.
func (m *Manager) Publish(ctx context.Context, topic string, data []byte) error {
	if m.pubsub == nil {
		return errors.ErrNotConnected
	}

	fullTopic := m.prefixedTopic(topic)

	m.mu.Lock()
	libp2pTopic, err := m.getOrCreateTopicLocked(fullTopic)
	m.mu.Unlock()
	if err != nil {
		return errors.NewTransportError(topic, "failed to get topic for publishing", err)
	}

	if err := libp2pTopic.Publish(ctx, data); err != nil {
		return errors.NewTransportError(topic, "failed to publish message", err)
	}

	return nil
}
