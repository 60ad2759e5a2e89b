package params

import (
	"context"
	"sync"
	"weak"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rovermesh/rovermesh/pkg/errors"
	"github.com/rovermesh/rovermesh/pkg/pubsub"
)

// EventsTopic is the well-known topic carrying parameter change events.
const EventsTopic = "parameter_events"

// ParameterCallback is invoked with the extracted value when a watched
// parameter receives a new or changed value.
type ParameterCallback func(Parameter)

// ParameterEventCallback is invoked with the full event for every
// received parameter event.
type ParameterEventCallback func(*ParameterEvent)

// NodeInfo is the identity contract of the owning node.
type NodeInfo interface {
	FullyQualifiedName() string
	Namespace() string
	TopicStatisticsDefault() bool
}

// Transport is the pub/sub contract the subscriber consumes.
type Transport interface {
	Subscribe(ctx context.Context, topic string, handler pubsub.MessageHandler) (pubsub.HandlerID, error)
	Unsubscribe(ctx context.Context, topic string, id pubsub.HandlerID) error
	Publish(ctx context.Context, topic string, data []byte) error
}

// ParameterCallbackHandle represents one per-parameter registration.
// The handle is owned by the caller; the registry keeps only a weak
// reference, so dropping the handle deactivates the registration.
type ParameterCallbackHandle struct {
	id            string
	parameterName string
	nodeName      string
	callback      ParameterCallback
}

// ParameterName returns the registered parameter name.
func (h *ParameterCallbackHandle) ParameterName() string { return h.parameterName }

// NodeName returns the fully-qualified name of the watched node.
func (h *ParameterCallbackHandle) NodeName() string { return h.nodeName }

// ParameterEventCallbackHandle represents one whole-event registration.
// Ownership semantics match ParameterCallbackHandle.
type ParameterEventCallbackHandle struct {
	id       string
	callback ParameterEventCallback
}

// callbackKey indexes per-parameter registrations.
type callbackKey struct {
	parameter string
	node      string
}

type parameterRegistration struct {
	id     string
	handle weak.Pointer[ParameterCallbackHandle]
}

type eventRegistration struct {
	id     string
	handle weak.Pointer[ParameterEventCallbackHandle]
}

// ParameterEventsSubscriber listens on the parameter events topic and
// dispatches matching events to registered callbacks. Registration and
// dispatch may be interleaved from different goroutines; callbacks are
// invoked outside the registry lock, so a callback may itself register
// or remove callbacks without deadlocking.
type ParameterEventsSubscriber struct {
	info      NodeInfo
	transport Transport
	logger    *zap.Logger
	opts      SubscriptionOptions

	// statisticsEnabled is the resolved tri-state, fixed at construction.
	statisticsEnabled bool

	handlerID pubsub.HandlerID

	mu                 sync.Mutex
	parameterCallbacks map[callbackKey][]parameterRegistration
	eventCallbacks     []eventRegistration
	closed             bool
}

// NewParameterEventsSubscriber subscribes to the parameter events topic
// and returns a subscriber ready for callback registration. The tri-state
// topic statistics setting is resolved against the node default here; an
// out-of-range value fails construction.
func NewParameterEventsSubscriber(ctx context.Context, info NodeInfo, transport Transport, logger *zap.Logger, opts SubscriptionOptions) (*ParameterEventsSubscriber, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	statsEnabled, err := opts.TopicStatistics.Resolve(info.TopicStatisticsDefault())
	if err != nil {
		return nil, err
	}

	s := &ParameterEventsSubscriber{
		info:               info,
		transport:          transport,
		logger:             logger,
		opts:               opts,
		statisticsEnabled:  statsEnabled,
		parameterCallbacks: make(map[callbackKey][]parameterRegistration),
	}

	id, err := transport.Subscribe(ctx, EventsTopic, s.onMessage)
	if err != nil {
		return nil, errors.Wrap(err, "failed to subscribe to parameter events")
	}
	s.handlerID = id

	logger.Debug("parameter events subscriber started",
		zap.String("node", info.FullyQualifiedName()),
		zap.Bool("topic_statistics", statsEnabled))

	return s, nil
}

// onMessage decodes an inbound wire message and hands it to dispatch.
// Undecodable messages are dropped; the error surfaces through the
// transport's handler logging.
func (s *ParameterEventsSubscriber) onMessage(topic string, data []byte) error {
	ev, err := DecodeEvent(data)
	if err != nil {
		return err
	}
	s.HandleEvent(ev)
	return nil
}

// AddParameterEventCallback registers a callback fired on every received
// parameter event. The returned handle must be retained by the caller;
// the registration dies with it. The last callback registered is
// executed first.
func (s *ParameterEventsSubscriber) AddParameterEventCallback(callback ParameterEventCallback) *ParameterEventCallbackHandle {
	handle := &ParameterEventCallbackHandle{
		id:       uuid.NewString(),
		callback: callback,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventCallbacks = append([]eventRegistration{{
		id:     handle.id,
		handle: weak.Make(handle),
	}}, s.eventCallbacks...)

	return handle
}

// RemoveParameterEventCallback removes a whole-event registration.
// Removing a handle that is not registered is a caller error.
func (s *ParameterEventsSubscriber) RemoveParameterEventCallback(handle *ParameterEventCallbackHandle) error {
	if handle == nil {
		return errors.ErrCallbackNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, reg := range s.eventCallbacks {
		if reg.id == handle.id {
			s.eventCallbacks = append(s.eventCallbacks[:i], s.eventCallbacks[i+1:]...)
			return nil
		}
	}
	return errors.ErrCallbackNotFound
}

// AddParameterCallback registers a callback for a single parameter of a
// single node. An empty nodeName refers to the local node; relative
// names are resolved against the local namespace. The last callback
// registered for a key is executed first.
func (s *ParameterEventsSubscriber) AddParameterCallback(parameterName, nodeName string, callback ParameterCallback) *ParameterCallbackHandle {
	fullNodeName := s.resolvePath(nodeName)

	handle := &ParameterCallbackHandle{
		id:            uuid.NewString(),
		parameterName: parameterName,
		nodeName:      fullNodeName,
		callback:      callback,
	}

	key := callbackKey{parameter: parameterName, node: fullNodeName}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.parameterCallbacks[key] = append([]parameterRegistration{{
		id:     handle.id,
		handle: weak.Make(handle),
	}}, s.parameterCallbacks[key]...)

	return handle
}

// RemoveParameterCallback removes the registration behind a handle.
// The key is rebuilt from the handle's stored, already-resolved pair.
// Removing a handle that is not registered is a caller error.
func (s *ParameterEventsSubscriber) RemoveParameterCallback(handle *ParameterCallbackHandle) error {
	if handle == nil {
		return errors.ErrCallbackNotFound
	}

	key := callbackKey{parameter: handle.parameterName, node: handle.nodeName}

	s.mu.Lock()
	defer s.mu.Unlock()

	regs := s.parameterCallbacks[key]
	for i, reg := range regs {
		if reg.id == handle.id {
			regs = append(regs[:i], regs[i+1:]...)
			if len(regs) == 0 {
				delete(s.parameterCallbacks, key)
			} else {
				s.parameterCallbacks[key] = regs
			}
			return nil
		}
	}
	return errors.ErrCallbackNotFound
}

// RemoveParameterCallbacks drops every registration for a (parameter,
// node) pair at once. This is a bulk unregister: unlike handle removal
// it does not fail when nothing is registered, and the owners of the
// individual handles are not notified.
func (s *ParameterEventsSubscriber) RemoveParameterCallbacks(parameterName, nodeName string) {
	key := callbackKey{parameter: parameterName, node: s.resolvePath(nodeName)}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.parameterCallbacks, key)
}

// GetParameterFromEvent returns the most recent new-or-changed value the
// event carries for a parameter of a node, resolving nodeName the same
// way registration does. The boolean form reports absence as a negative
// result; see MustGetParameterFromEvent for the failing form.
func (s *ParameterEventsSubscriber) GetParameterFromEvent(ev *ParameterEvent, parameterName, nodeName string) (Parameter, bool) {
	return matchParameter(ev, parameterName, s.resolvePath(nodeName))
}

// MustGetParameterFromEvent is the failing form of GetParameterFromEvent
// for callers that always expect the parameter to be present.
func (s *ParameterEventsSubscriber) MustGetParameterFromEvent(ev *ParameterEvent, parameterName, nodeName string) (Parameter, error) {
	p, ok := s.GetParameterFromEvent(ev, parameterName, nodeName)
	if !ok {
		return Parameter{}, errors.Wrapf(errors.ErrParameterNotInEvent,
			"parameter '%s' of node '%s'", parameterName, s.resolvePath(nodeName))
	}
	return p, nil
}

// HandleEvent dispatches one parameter event to all matching live
// callbacks: per-parameter callbacks first, then whole-event callbacks,
// each group most-recently-registered first. Registrations whose handle
// has been discarded are pruned instead of invoked. Callbacks run after
// the registry lock is released, so they may safely call back into the
// subscriber.
func (s *ParameterEventsSubscriber) HandleEvent(ev *ParameterEvent) {
	s.logger.Debug("parameter event received", zap.String("node", ev.Node))

	type parameterInvocation struct {
		callback ParameterCallback
		param    Parameter
	}
	var paramInvocations []parameterInvocation
	var eventInvocations []ParameterEventCallback

	s.mu.Lock()
	for key, regs := range s.parameterCallbacks {
		p, ok := matchParameter(ev, key.parameter, key.node)
		if !ok {
			continue
		}

		live := regs[:0]
		for _, reg := range regs {
			if h := reg.handle.Value(); h != nil {
				paramInvocations = append(paramInvocations, parameterInvocation{h.callback, p})
				live = append(live, reg)
			}
		}
		if len(live) == 0 {
			delete(s.parameterCallbacks, key)
		} else {
			s.parameterCallbacks[key] = live
		}
	}

	liveEvents := s.eventCallbacks[:0]
	for _, reg := range s.eventCallbacks {
		if h := reg.handle.Value(); h != nil {
			eventInvocations = append(eventInvocations, h.callback)
			liveEvents = append(liveEvents, reg)
		}
	}
	s.eventCallbacks = liveEvents
	s.mu.Unlock()

	for _, inv := range paramInvocations {
		inv.callback(inv.param)
	}
	for _, cb := range eventInvocations {
		cb(ev)
	}
}

// resolvePath turns a possibly-relative node name into a fully-qualified
// one. Empty means the local node; a leading separator means the name is
// already fully qualified.
func (s *ParameterEventsSubscriber) resolvePath(path string) string {
	if path == "" {
		return s.info.FullyQualifiedName()
	}
	if path[0] == '/' {
		return path
	}
	ns := s.info.Namespace()
	if ns == "/" {
		return "/" + path
	}
	return ns + "/" + path
}

// TopicStatisticsEnabled reports the resolved tri-state setting.
func (s *ParameterEventsSubscriber) TopicStatisticsEnabled() bool {
	return s.statisticsEnabled
}

// Close drops the topic subscription and discards every registration
// without notifying the owners of the individual handles.
func (s *ParameterEventsSubscriber) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.parameterCallbacks = make(map[callbackKey][]parameterRegistration)
	s.eventCallbacks = nil
	s.mu.Unlock()

	return s.transport.Unsubscribe(ctx, EventsTopic, s.handlerID)
}
