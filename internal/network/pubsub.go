package network

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/rs/zerolog"
)

// GetHeadersTopic is the gossipsub topic tip requests are published on.
const GetHeadersTopic = "/cardano-sl/get-headers/1"

// GetHeadersRequest asks peers to announce headers. With no checkpoints and
// no upper bound it means "send your newest header", which is the minimal
// recovery request the eclipse detector emits.
type GetHeadersRequest struct {
	Checkpoints []common.Hash `json:"checkpoints,omitempty"`
	To          *common.Hash  `json:"to,omitempty"`
}

// GossipBroadcaster publishes tip requests over libp2p gossipsub. It
// implements TipRequester.
type GossipBroadcaster struct {
	logger zerolog.Logger
	ctx    context.Context
	topic  *pubsub.Topic
}

// NewGossipBroadcaster joins the get-headers topic on the given host. The
// context bounds the broadcaster's lifetime.
func NewGossipBroadcaster(ctx context.Context, logger zerolog.Logger, h host.Host) (*GossipBroadcaster, error) {
	ps, err := pubsub.NewGossipSub(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("create gossipsub: %w", err)
	}
	topic, err := ps.Join(GetHeadersTopic)
	if err != nil {
		return nil, fmt.Errorf("join topic %s: %w", GetHeadersTopic, err)
	}
	return &GossipBroadcaster{
		logger: logger.With().Str("component", "tip-broadcaster").Logger(),
		ctx:    ctx,
		topic:  topic,
	}, nil
}

// RequestTipFromAllPeers publishes one tip request. Publish failures are
// logged and swallowed; the caller never depends on delivery.
func (b *GossipBroadcaster) RequestTipFromAllPeers() {
	raw, err := json.Marshal(GetHeadersRequest{})
	if err != nil {
		b.logger.Error().Err(err).Msg("encode tip request")
		return
	}
	if err := b.topic.Publish(b.ctx, raw); err != nil {
		b.logger.Warn().Err(err).Msg("publish tip request")
		return
	}
	b.logger.Info().Msg("requested current tip from all peers")
}
