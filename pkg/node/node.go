package node

import (
	"context"
	"sync"

	"github.com/libp2p/go-libp2p"
	libp2ppubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/p2p/security/noise"
	libp2pquic "github.com/libp2p/go-libp2p/p2p/transport/quic"
	"github.com/libp2p/go-libp2p/p2p/transport/tcp"
	"github.com/multiformats/go-multiaddr"
	"go.uber.org/zap"

	"github.com/rovermesh/rovermesh/pkg/config"
	"github.com/rovermesh/rovermesh/pkg/errors"
	"github.com/rovermesh/rovermesh/pkg/pubsub"
)

// Node is the local mesh participant. It owns the libp2p host, the
// gossipsub router, and the node's identity (name + namespace), and it
// hands out the pubsub Manager other layers subscribe through.
type Node struct {
	cfg    *config.Config
	logger *zap.Logger

	host     host.Host
	libp2pPS *libp2ppubsub.PubSub
	pubsub   *pubsub.Manager

	started bool
	mu      sync.RWMutex
}

// New creates a node from a validated configuration. The transport is
// not started until Start is called.
func New(cfg *config.Config, logger *zap.Logger) (*Node, error) {
	if cfg == nil {
		return nil, errors.ErrInvalidConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Node{
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Start creates the libp2p host and gossipsub router and dials any
// configured bootstrap peers.
func (n *Node) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.started {
		return nil
	}

	h, err := libp2p.New(
		libp2p.ListenAddrStrings(n.cfg.Transport.ListenAddresses...),
		libp2p.Security(noise.ID, noise.New),
		libp2p.DefaultMuxers,
		libp2p.Transport(tcp.NewTCPTransport),
		libp2p.Transport(libp2pquic.NewTransport),
	)
	if err != nil {
		return errors.NewTransportError("", "failed to create libp2p host", err)
	}
	n.host = h

	ps, err := libp2ppubsub.NewGossipSub(ctx, h)
	if err != nil {
		h.Close()
		n.host = nil
		return errors.NewTransportError("", "failed to create gossipsub router", err)
	}
	n.libp2pPS = ps
	n.pubsub = pubsub.NewManager(ps, n.cfg.Transport.TopicPrefix, n.logger)

	n.logger.Info("node started",
		zap.String("node", n.fullyQualifiedNameLocked()),
		zap.String("peer_id", h.ID().String()))

	for _, addr := range n.cfg.Transport.BootstrapPeers {
		if err := n.connectPeer(ctx, addr); err != nil {
			n.logger.Warn("failed to connect bootstrap peer",
				zap.String("addr", addr),
				zap.Error(err))
		}
	}

	n.started = true
	return nil
}

// connectPeer dials a bootstrap peer given as a full p2p multiaddr.
func (n *Node) connectPeer(ctx context.Context, addr string) error {
	ma, err := multiaddr.NewMultiaddr(addr)
	if err != nil {
		return errors.Wrapf(err, "invalid bootstrap multiaddr %s", addr)
	}
	info, err := peer.AddrInfoFromP2pAddr(ma)
	if err != nil {
		return errors.Wrapf(err, "no peer id in multiaddr %s", addr)
	}

	dialCtx := ctx
	if n.cfg.Transport.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, n.cfg.Transport.ConnectTimeout)
		defer cancel()
	}
	return n.host.Connect(dialCtx, *info)
}

// Name returns the node's bare name.
func (n *Node) Name() string {
	return n.cfg.Node.Name
}

// Namespace returns the node's absolute namespace.
func (n *Node) Namespace() string {
	return n.cfg.Node.Namespace
}

// FullyQualifiedName returns the namespace-resolved node name, always
// starting with the path separator.
func (n *Node) FullyQualifiedName() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.fullyQualifiedNameLocked()
}

func (n *Node) fullyQualifiedNameLocked() string {
	ns := n.cfg.Node.Namespace
	if ns == "/" {
		return "/" + n.cfg.Node.Name
	}
	return ns + "/" + n.cfg.Node.Name
}

// TopicStatisticsDefault returns the node-level default consulted when
// a subscription defers its topic statistics setting to the node.
func (n *Node) TopicStatisticsDefault() bool {
	return n.cfg.Params.TopicStatisticsDefault
}

// PubSub returns the node's transport manager, or nil before Start.
func (n *Node) PubSub() *pubsub.Manager {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.pubsub
}

// Host returns the underlying libp2p host, or nil before Start.
func (n *Node) Host() host.Host {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.host
}

// Logger returns the node's logger.
func (n *Node) Logger() *zap.Logger {
	return n.logger
}

// Close tears down the transport. All topic subscriptions are dropped.
func (n *Node) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.started {
		return nil
	}
	n.started = false

	if n.pubsub != nil {
		n.pubsub.Close()
		n.pubsub = nil
	}
	if n.host != nil {
		if err := n.host.Close(); err != nil {
			return errors.Wrap(err, "failed to close host")
		}
		n.host = nil
	}
	return nil
}
