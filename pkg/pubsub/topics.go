package pubsub

import (
	pubsub "github.com/libp2p/go-libp2p-pubsub"

	"github.com/rovermesh/rovermesh/pkg/errors"
)

// getOrCreateTopicLocked joins a topic or returns the cached handle.
// Callers must hold m.mu.
func (m *Manager) getOrCreateTopicLocked(topicName string) (*pubsub.Topic, error) {
	if topic, exists := m.topics[topicName]; exists {
		return topic, nil
	}

	topic, err := m.pubsub.Join(topicName)
	if err != nil {
		return nil, errors.Wrap(err, "failed to join topic")
	}

	m.topics[topicName] = topic
	return topic, nil
}
