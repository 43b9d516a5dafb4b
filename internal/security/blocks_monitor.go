package security

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/whitespur/cardano-sl/internal/chain"
	"github.com/whitespur/cardano-sl/internal/core"
	"github.com/whitespur/cardano-sl/internal/identity"
	"github.com/whitespur/cardano-sl/internal/network"
)

// BlocksMonitor detects block withholding: if every recently-produced block
// on the local chain was produced by this node itself, peers are most likely
// suppressing the honest network's traffic.
//
// The monitor only reads chain state. Its one side-effect on detection is a
// tip request broadcast to all peers.
type BlocksMonitor struct {
	logger zerolog.Logger
	cfg    Config
	chain  chain.Reader
	id     identity.Provider
	net    network.TipRequester
}

// NewBlocksMonitor wires a block-staleness monitor.
func NewBlocksMonitor(
	logger zerolog.Logger,
	cfg Config,
	reader chain.Reader,
	id identity.Provider,
	net network.TipRequester,
) *BlocksMonitor {
	return &BlocksMonitor{
		logger: logger.With().Str("component", "block-staleness-monitor").Logger(),
		cfg:    cfg,
		chain:  reader,
		id:     id,
		net:    net,
	}
}

// Name implements Monitor.
func (m *BlocksMonitor) Name() string { return "block-staleness" }

// OnSlot implements Monitor. On a positive detection it warns and requests
// fresh tip information from all known peers.
func (m *BlocksMonitor) OnSlot(ctx context.Context, slot core.SlotID) {
	if !m.IsEclipsed(ctx, slot) {
		return
	}

	m.logger.Warn().Stringer("slot", slot).
		Uint64("threshold_slots", m.cfg.NoBlocksSlotThreshold).
		Msg("recent chain is entirely self-produced, node may be eclipsed; requesting tips from neighbors")
	metricEclipseAlerts.Inc()

	metricTipRequests.Inc()
	m.net.RequestTipFromAllPeers()
}

// IsEclipsed walks backward from the tip looking for a block produced by
// somebody else. It reports true only when the walk covers more than
// NoBlocksSlotThreshold slots of chain time without finding one.
//
// An empty or genesis-rooted short chain is never an eclipse signal, and a
// failed header lookup fails open: a storage inconsistency is a separate,
// more urgent problem than a suspected eclipse.
func (m *BlocksMonitor) IsEclipsed(ctx context.Context, slot core.SlotID) bool {
	tip, err := m.chain.TipHeader(ctx)
	if err != nil {
		if errors.Is(err, chain.ErrEmptyChain) {
			return false
		}
		m.logger.Error().Err(err).Msg("cannot read chain tip")
		metricStorageFaults.Inc()
		return false
	}

	now := slot.Flatten(m.cfg.SlotsPerEpoch)
	self := m.id.StakeholderID()

	for hdr := tip; ; {
		if hdr.Producer != self {
			return false
		}
		produced := hdr.Slot.Flatten(m.cfg.SlotsPerEpoch)
		if produced < now && uint64(now-produced) > m.cfg.NoBlocksSlotThreshold {
			return true
		}
		if hdr.IsGenesisRooted() {
			return false
		}

		parent, err := m.chain.GetHeader(ctx, hdr.ParentHash)
		if err != nil {
			m.logger.Error().Err(err).
				Str("hash", hdr.ParentHash.Hex()).
				Msg("header missing during staleness walk, assuming not eclipsed")
			metricStorageFaults.Inc()
			return false
		}
		hdr = parent
	}
}
