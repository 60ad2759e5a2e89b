package params

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/stretchr/testify/require"

	"github.com/rovermesh/rovermesh/pkg/config"
	"github.com/rovermesh/rovermesh/pkg/node"
)

func startTestNode(t *testing.T, name, namespace string) *node.Node {
	t.Helper()

	cfg := config.DefaultConfig(name)
	cfg.Node.Namespace = namespace
	cfg.Transport.ListenAddresses = []string{"/ip4/127.0.0.1/tcp/0"}

	n, err := node.New(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, n.Start(context.Background()))
	t.Cleanup(func() { n.Close() })
	return n
}

func TestEndToEndAcrossNodes(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mesh integration test in short mode")
	}

	ctx := context.Background()

	rover := startTestNode(t, "rover1", "/fleet")
	watcher := startTestNode(t, "watcher", "/fleet")

	roverHost := rover.Host()
	watcherHost := watcher.Host()
	roverHost.Peerstore().AddAddrs(watcherHost.ID(), watcherHost.Addrs(), time.Hour)
	require.NoError(t, roverHost.Connect(ctx, peer.AddrInfo{ID: watcherHost.ID(), Addrs: watcherHost.Addrs()}))

	sub, err := NewSubscriberForNode(ctx, watcher, DefaultSubscriptionOptions())
	require.NoError(t, err)
	defer sub.Close(ctx)

	received := make(chan Parameter, 1)
	h := sub.AddParameterCallback("speed", "/fleet/rover1", func(p Parameter) {
		select {
		case received <- p:
		default:
		}
	})
	defer runtime.KeepAlive(h)

	pub, err := NewPublisherForNode(rover)
	require.NoError(t, err)

	// Retry the publish until the gossip mesh forms.
	timeout := time.After(10 * time.Second)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			t.Fatal("timed out waiting for parameter event")
		case <-ticker.C:
			_ = pub.PublishChanged(ctx, DoubleParameter("speed", 1.25))
		case p := <-received:
			require.Equal(t, "speed", p.Name)
			require.Equal(t, 1.25, p.Value.DoubleValue)
			return
		}
	}
}
