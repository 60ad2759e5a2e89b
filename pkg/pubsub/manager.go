package pubsub

import (
	"sync"

	"github.com/google/uuid"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"go.uber.org/zap"
)

// Manager handles pub/sub operations over a gossipsub router.
// Topics are namespaced with a mesh-wide prefix so several meshes can
// share a transport without cross-talk.
type Manager struct {
	pubsub        *pubsub.PubSub
	topics        map[string]*pubsub.Topic
	subscriptions map[string]*topicSubscription
	prefix        string
	logger        *zap.Logger
	mu            sync.RWMutex
}

// topicSubscription fans one transport subscription out to all handlers
// registered for the topic.
type topicSubscription struct {
	sub      *pubsub.Subscription
	cancel   func()
	handlers map[HandlerID]MessageHandler
	mu       sync.RWMutex
}

// NewManager creates a new pubsub manager.
func NewManager(ps *pubsub.PubSub, prefix string, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		pubsub:        ps,
		topics:        make(map[string]*pubsub.Topic),
		subscriptions: make(map[string]*topicSubscription),
		prefix:        prefix,
		logger:        logger,
	}
}

func (m *Manager) prefixedTopic(topic string) string {
	return m.prefix + "." + topic
}

func generateHandlerID() HandlerID {
	return HandlerID(uuid.NewString())
}
