package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/libp2p/go-libp2p"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/peer"
)

func createTestManager(t *testing.T, prefix string) (*Manager, func()) {
	ctx, cancel := context.WithCancel(context.Background())

	h, err := libp2p.New(libp2p.ListenAddrStrings("/ip4/127.0.0.1/tcp/0"))
	if err != nil {
		t.Fatalf("failed to create libp2p host: %v", err)
	}

	ps, err := pubsub.NewGossipSub(ctx, h)
	if err != nil {
		h.Close()
		t.Fatalf("failed to create gossipsub: %v", err)
	}

	mgr := NewManager(ps, prefix, nil)

	cleanup := func() {
		mgr.Close()
		h.Close()
		cancel()
	}

	return mgr, cleanup
}

func TestManager_TopicPrefix(t *testing.T) {
	mgr, cleanup := createTestManager(t, "test-mesh")
	defer cleanup()

	ctx := context.Background()

	_, err := mgr.Subscribe(ctx, "parameter_events", func(t string, d []byte) error { return nil })
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	mgr.mu.RLock()
	_, exists := mgr.subscriptions["test-mesh.parameter_events"]
	mgr.mu.RUnlock()
	if !exists {
		t.Error("expected subscription for test-mesh.parameter_events to exist")
	}

	topics := mgr.ListTopics()
	if len(topics) != 1 || topics[0] != "parameter_events" {
		t.Errorf("expected topics [parameter_events], got %v", topics)
	}
}

func TestManager_HandlerLifecycle(t *testing.T) {
	mgr, cleanup := createTestManager(t, "test-mesh")
	defer cleanup()

	ctx := context.Background()
	topic := "events"
	fullTopic := "test-mesh.events"

	id1, err := mgr.Subscribe(ctx, topic, func(t string, d []byte) error { return nil })
	if err != nil {
		t.Fatalf("first subscribe failed: %v", err)
	}
	id2, err := mgr.Subscribe(ctx, topic, func(t string, d []byte) error { return nil })
	if err != nil {
		t.Fatalf("second subscribe failed: %v", err)
	}
	if id1 == id2 {
		t.Fatal("expected distinct handler IDs")
	}

	mgr.mu.RLock()
	ts := mgr.subscriptions[fullTopic]
	mgr.mu.RUnlock()
	if len(ts.handlers) != 2 {
		t.Errorf("expected 2 handlers, got %d", len(ts.handlers))
	}

	if err := mgr.Unsubscribe(ctx, topic, id1); err != nil {
		t.Fatalf("unsubscribe failed: %v", err)
	}

	mgr.mu.RLock()
	_, exists := mgr.subscriptions[fullTopic]
	mgr.mu.RUnlock()
	if !exists {
		t.Error("expected subscription to survive while one handler remains")
	}

	if err := mgr.Unsubscribe(ctx, topic, id2); err != nil {
		t.Fatalf("unsubscribe failed: %v", err)
	}

	mgr.mu.RLock()
	_, exists = mgr.subscriptions[fullTopic]
	mgr.mu.RUnlock()
	if exists {
		t.Error("expected subscription to be removed with last handler")
	}

	// Removing an already-removed handler is a no-op.
	if err := mgr.Unsubscribe(ctx, topic, id2); err != nil {
		t.Errorf("unsubscribe of unknown handler should be a no-op, got %v", err)
	}
}

func TestManager_Delivery(t *testing.T) {
	ctx := context.Background()

	h1, _ := libp2p.New(libp2p.ListenAddrStrings("/ip4/127.0.0.1/tcp/0"))
	ps1, _ := pubsub.NewGossipSub(ctx, h1)
	mgr1 := NewManager(ps1, "test", nil)
	defer h1.Close()
	defer mgr1.Close()

	h2, _ := libp2p.New(libp2p.ListenAddrStrings("/ip4/127.0.0.1/tcp/0"))
	ps2, _ := pubsub.NewGossipSub(ctx, h2)
	mgr2 := NewManager(ps2, "test", nil)
	defer h2.Close()
	defer mgr2.Close()

	h1.Peerstore().AddAddrs(h2.ID(), h2.Addrs(), time.Hour)
	if err := h1.Connect(ctx, peer.AddrInfo{ID: h2.ID(), Addrs: h2.Addrs()}); err != nil {
		t.Fatalf("failed to connect hosts: %v", err)
	}

	topic := "events"
	msgData := []byte("param changed")
	received := make(chan []byte, 1)

	_, err := mgr2.Subscribe(ctx, topic, func(t string, d []byte) error {
		received <- d
		return nil
	})
	if err != nil {
		t.Fatalf("mgr2 subscribe failed: %v", err)
	}

	// Wait for the gossip mesh to form by retrying the publish.
	timeout := time.After(5 * time.Second)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

Loop:
	for {
		select {
		case <-timeout:
			t.Fatal("timed out waiting for message")
		case <-ticker.C:
			_ = mgr1.Publish(ctx, topic, msgData)
		case data := <-received:
			if string(data) != string(msgData) {
				t.Errorf("expected %s, got %s", string(msgData), string(data))
			}
			break Loop
		}
	}
}
