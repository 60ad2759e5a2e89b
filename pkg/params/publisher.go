package params

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rovermesh/rovermesh/pkg/errors"
)

// EventPublisher publishes parameter change events on behalf of a node.
// Events are stamped with the node's fully-qualified name and the
// current time.
type EventPublisher struct {
	info      NodeInfo
	transport Transport
	logger    *zap.Logger
}

// NewEventPublisher creates a publisher for the node's parameter events.
func NewEventPublisher(info NodeInfo, transport Transport, logger *zap.Logger) *EventPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventPublisher{
		info:      info,
		transport: transport,
		logger:    logger,
	}
}

// PublishNew announces newly declared parameters.
func (p *EventPublisher) PublishNew(ctx context.Context, parameters ...Parameter) error {
	return p.PublishEvent(ctx, &ParameterEvent{NewParameters: parameters})
}

// PublishChanged announces changed parameter values.
func (p *EventPublisher) PublishChanged(ctx context.Context, parameters ...Parameter) error {
	return p.PublishEvent(ctx, &ParameterEvent{ChangedParameters: parameters})
}

// PublishDeleted announces deleted parameters.
func (p *EventPublisher) PublishDeleted(ctx context.Context, parameters ...Parameter) error {
	return p.PublishEvent(ctx, &ParameterEvent{DeletedParameters: parameters})
}

// PublishEvent stamps and publishes a parameter event. The event's Node
// and Stamp fields are overwritten with the local identity and time.
func (p *EventPublisher) PublishEvent(ctx context.Context, ev *ParameterEvent) error {
	ev.Node = p.info.FullyQualifiedName()
	ev.Stamp = time.Now().UTC()

	data, err := EncodeEvent(ev)
	if err != nil {
		return err
	}

	if err := p.transport.Publish(ctx, EventsTopic, data); err != nil {
		return errors.Wrap(err, "failed to publish parameter event")
	}

	p.logger.Debug("parameter event published",
		zap.String("node", ev.Node),
		zap.Int("new", len(ev.NewParameters)),
		zap.Int("changed", len(ev.ChangedParameters)),
		zap.Int("deleted", len(ev.DeletedParameters)))
	return nil
}
