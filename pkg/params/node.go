package params

import (
	"context"

	"github.com/rovermesh/rovermesh/pkg/errors"
	"github.com/rovermesh/rovermesh/pkg/node"
)

// NewSubscriberForNode wires a subscriber to a started node, using the
// node's transport and logger.
func NewSubscriberForNode(ctx context.Context, n *node.Node, opts SubscriptionOptions) (*ParameterEventsSubscriber, error) {
	transport := n.PubSub()
	if transport == nil {
		return nil, errors.ErrNotConnected
	}
	return NewParameterEventsSubscriber(ctx, n, transport, n.Logger(), opts)
}

// NewPublisherForNode wires an event publisher to a started node.
func NewPublisherForNode(n *node.Node) (*EventPublisher, error) {
	transport := n.PubSub()
	if transport == nil {
		return nil, errors.ErrNotConnected
	}
	return NewEventPublisher(n, transport, n.Logger()), nil
}
