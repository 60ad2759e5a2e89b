package params

import (
	"github.com/rovermesh/rovermesh/pkg/errors"
)

// TopicStatisticsState is the tri-state setting controlling topic
// statistics instrumentation on a subscription. The zero value defers
// to the node-level default.
type TopicStatisticsState int

const (
	// TopicStatisticsNodeDefault defers to the owning node's default.
	TopicStatisticsNodeDefault TopicStatisticsState = iota

	// TopicStatisticsEnabled enables statistics for this subscription.
	TopicStatisticsEnabled

	// TopicStatisticsDisabled disables statistics for this subscription.
	TopicStatisticsDisabled
)

// String returns the canonical name of the state.
func (s TopicStatisticsState) String() string {
	switch s {
	case TopicStatisticsNodeDefault:
		return "node_default"
	case TopicStatisticsEnabled:
		return "enabled"
	case TopicStatisticsDisabled:
		return "disabled"
	default:
		return "invalid"
	}
}

// Resolve combines the subscription-local state with the node-level
// default. A value outside the tri-state is a programming error and is
// reported immediately rather than silently defaulted.
func (s TopicStatisticsState) Resolve(nodeDefault bool) (bool, error) {
	switch s {
	case TopicStatisticsEnabled:
		return true, nil
	case TopicStatisticsDisabled:
		return false, nil
	case TopicStatisticsNodeDefault:
		return nodeDefault, nil
	default:
		return false, errors.NewValidationError(
			"topic_statistics", "unrecognized topic statistics state", int(s))
	}
}

// Reliability is the requested delivery guarantee for the subscription.
// The dispatcher treats it as opaque; it is forwarded to the transport.
type Reliability string

const (
	ReliabilityReliable   Reliability = "reliable"
	ReliabilityBestEffort Reliability = "best_effort"
)

// QoSProfile carries transport quality-of-service hints for the
// parameter events subscription.
type QoSProfile struct {
	Depth       int
	Reliability Reliability
}

// SubscriptionOptions configures a ParameterEventsSubscriber.
type SubscriptionOptions struct {
	QoS             QoSProfile
	TopicStatistics TopicStatisticsState
}

// DefaultSubscriptionOptions returns the options used when none are
// supplied: depth 10, reliable delivery, statistics per node default.
func DefaultSubscriptionOptions() SubscriptionOptions {
	return SubscriptionOptions{
		QoS: QoSProfile{
			Depth:       10,
			Reliability: ReliabilityReliable,
		},
		TopicStatistics: TopicStatisticsNodeDefault,
	}
}
