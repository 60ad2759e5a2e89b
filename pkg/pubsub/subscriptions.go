package pubsub

import (
	"context"

	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"go.uber.org/zap"

	"github.com/rovermesh/rovermesh/pkg/errors"
)

// Subscribe registers a handler for a topic and returns a HandlerID that
// can be used to unsubscribe this specific handler. Multiple handlers can
// subscribe to the same topic; the underlying transport subscription is
// created on the first and torn down with the last.
func (m *Manager) Subscribe(ctx context.Context, topic string, handler MessageHandler) (HandlerID, error) {
	if m.pubsub == nil {
		return "", errors.ErrNotConnected
	}

	fullTopic := m.prefixedTopic(topic)

	m.mu.Lock()
	defer m.mu.Unlock()

	handlerID := generateHandlerID()

	if topicSub, exists := m.subscriptions[fullTopic]; exists {
		topicSub.mu.Lock()
		topicSub.handlers[handlerID] = handler
		topicSub.mu.Unlock()
		return handlerID, nil
	}

	libp2pTopic, err := m.getOrCreateTopicLocked(fullTopic)
	if err != nil {
		return "", errors.NewTransportError(topic, "failed to join topic", err)
	}

	sub, err := libp2pTopic.Subscribe()
	if err != nil {
		return "", errors.NewTransportError(topic, "failed to subscribe to topic", err)
	}

	subCtx, cancel := context.WithCancel(context.Background())

	topicSub := &topicSubscription{
		sub:      sub,
		cancel:   cancel,
		handlers: map[HandlerID]MessageHandler{handlerID: handler},
	}
	m.subscriptions[fullTopic] = topicSub

	go m.readLoop(subCtx, topic, topicSub)

	return handlerID, nil
}

// readLoop pulls messages off the transport subscription and fans them
// out to every registered handler. Handlers run outside the subscription
// lock; a handler error is logged and does not stop the others.
func (m *Manager) readLoop(ctx context.Context, topic string, topicSub *topicSubscription) {
	defer topicSub.sub.Cancel()

	for {
		msg, err := topicSub.sub.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}

		topicSub.mu.RLock()
		handlers := make([]MessageHandler, 0, len(topicSub.handlers))
		for _, h := range topicSub.handlers {
			handlers = append(handlers, h)
		}
		topicSub.mu.RUnlock()

		for _, h := range handlers {
			if err := h(topic, msg.Data); err != nil {
				m.logger.Warn("pubsub handler failed",
					zap.String("topic", topic),
					zap.Error(err))
			}
		}
	}
}

// Unsubscribe removes a single handler registration. The transport
// subscription is cancelled only when the last handler for the topic is
// removed. Unsubscribing an unknown handler is a no-op.
func (m *Manager) Unsubscribe(ctx context.Context, topic string, id HandlerID) error {
	fullTopic := m.prefixedTopic(topic)

	m.mu.Lock()
	defer m.mu.Unlock()

	topicSub, exists := m.subscriptions[fullTopic]
	if !exists {
		return nil
	}

	topicSub.mu.Lock()
	delete(topicSub.handlers, id)
	empty := len(topicSub.handlers) == 0
	topicSub.mu.Unlock()

	if empty {
		topicSub.cancel()
		delete(m.subscriptions, fullTopic)
	}

	return nil
}

// ListTopics returns all subscribed topics, without the mesh prefix.
func (m *Manager) ListTopics() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	prefix := m.prefix + "."
	var topics []string
	for topic := range m.subscriptions {
		if len(topic) > len(prefix) && topic[:len(prefix)] == prefix {
			topics = append(topics, topic[len(prefix):])
		}
	}
	return topics
}

// Close cancels all subscriptions and closes all topics.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sub := range m.subscriptions {
		sub.cancel()
	}
	m.subscriptions = make(map[string]*topicSubscription)

	for _, topic := range m.topics {
		topic.Close()
	}
	m.topics = make(map[string]*pubsub.Topic)

	return nil
}
