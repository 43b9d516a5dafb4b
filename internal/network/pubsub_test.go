package network_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/libp2p/go-libp2p"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/stretchr/testify/require"
	"github.com/whitespur/cardano-sl/internal/network"
	"github.com/whitespur/cardano-sl/internal/testutils"
)

func newHost(t *testing.T) host.Host {
	t.Helper()
	h, err := libp2p.New(libp2p.ListenAddrStrings("/ip4/127.0.0.1/tcp/0"))
	require.NoError(t, err, "creating a loopback host should succeed")
	t.Cleanup(func() { _ = h.Close() })
	return h
}

// TestGossipBroadcasterDeliversTipRequest wires two loopback hosts and
// checks a published tip request reaches a subscriber on the get-headers
// topic with the minimal "newest header only" shape.
func TestGossipBroadcasterDeliversTipRequest(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	sender := newHost(t)
	receiver := newHost(t)

	ps, err := pubsub.NewGossipSub(ctx, receiver)
	require.NoError(t, err)
	topic, err := ps.Join(network.GetHeadersTopic)
	require.NoError(t, err)
	sub, err := topic.Subscribe()
	require.NoError(t, err)

	broadcaster, err := network.NewGossipBroadcaster(ctx, testutils.Logger(t), sender)
	require.NoError(t, err, "broadcaster should join the topic")

	require.NoError(t, sender.Connect(ctx, peer.AddrInfo{
		ID:    receiver.ID(),
		Addrs: receiver.Addrs(),
	}), "hosts should connect over loopback")

	received := make(chan []byte, 1)
	go func() {
		msg, err := sub.Next(ctx)
		if err == nil {
			received <- msg.Data
		}
	}()

	// Republish until the gossip mesh has formed and the message lands.
	var raw []byte
	for raw == nil {
		broadcaster.RequestTipFromAllPeers()
		select {
		case raw = <-received:
		case <-time.After(300 * time.Millisecond):
		case <-ctx.Done():
			t.Fatal("tip request never reached the subscriber")
		}
	}

	var req network.GetHeadersRequest
	require.NoError(t, json.Unmarshal(raw, &req), "payload should be a get-headers request")
	require.Empty(t, req.Checkpoints, "the minimal request carries no checkpoints")
	require.Nil(t, req.To, "the minimal request has no upper bound")
}
