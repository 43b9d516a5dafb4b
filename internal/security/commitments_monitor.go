package security

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/whitespur/cardano-sl/internal/chain"
	"github.com/whitespur/cardano-sl/internal/core"
	"github.com/whitespur/cardano-sl/internal/identity"
)

// EclipseState is the commitment monitor's single mutable cell: the most
// recent epoch in which the node's own commitment was observed on-chain.
//
// The cell is owned by one monitor and accessed tick by tick; the mutex
// keeps it correct even if a scheduler change ever lets ticks overlap. The
// value starts at epoch 0 and never decreases: it is only overwritten with
// the current epoch, and the slot clock visits epochs in non-decreasing
// order.
type EclipseState struct {
	mu                      sync.Mutex
	lastSelfCommitmentEpoch core.EpochIndex
}

// NewEclipseState creates the state cell at its epoch-0 default.
func NewEclipseState() *EclipseState {
	return &EclipseState{}
}

// LastSelfCommitmentEpoch returns the tracked epoch.
func (s *EclipseState) LastSelfCommitmentEpoch() core.EpochIndex {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSelfCommitmentEpoch
}

func (s *EclipseState) observe(epoch core.EpochIndex) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSelfCommitmentEpoch = epoch
}

// CommitmentsMonitor tracks whether the node's own shared-seed commitment
// keeps appearing in accepted blocks. A node whose commitments stop showing
// up on-chain for too many epochs is either being eclipsed or has never
// participated; both deserve a warning. Detection only, no network action.
type CommitmentsMonitor struct {
	logger zerolog.Logger
	cfg    Config
	chain  chain.Reader
	id     identity.Provider
	state  *EclipseState
}

// NewCommitmentsMonitor wires a commitment-staleness monitor around the
// given state cell. The cell must be used by no other component.
func NewCommitmentsMonitor(
	logger zerolog.Logger,
	cfg Config,
	reader chain.Reader,
	id identity.Provider,
	state *EclipseState,
) *CommitmentsMonitor {
	return &CommitmentsMonitor{
		logger: logger.With().Str("component", "commitment-staleness-monitor").Logger(),
		cfg:    cfg,
		chain:  reader,
		id:     id,
		state:  state,
	}
}

// Name implements Monitor.
func (m *CommitmentsMonitor) Name() string { return "commitment-staleness" }

// OnSlot implements Monitor.
func (m *CommitmentsMonitor) OnSlot(ctx context.Context, slot core.SlotID) {
	m.CheckForIgnoredCommitments(ctx, slot)
}

// CheckForIgnoredCommitments scans the retained window of recent blocks for
// the node's own commitment, refreshes the state cell when one is found,
// and reports whether the staleness warning fired for this slot.
//
// A found commitment is recorded under the current epoch, not the block's:
// what matters is when its presence in the retained window was last
// reconfirmed.
func (m *CommitmentsMonitor) CheckForIgnoredCommitments(ctx context.Context, slot core.SlotID) bool {
	self := m.id.StakeholderID()

	for _, res := range m.chain.LoadRecentBlocks(ctx, m.cfg.ChainSecurityDepth) {
		if res.Err != nil {
			m.logger.Debug().Err(res.Err).Msg("skipping unloadable block in commitment scan")
			metricStorageFaults.Inc()
			continue
		}
		if core.HasCommitmentFrom(res.Block.Ssc, self) {
			m.state.observe(slot.Epoch)
		}
	}

	last := m.state.LastSelfCommitmentEpoch()
	if slot.Epoch <= last || uint64(slot.Epoch-last) <= m.cfg.NoCommitmentsEpochThreshold {
		return false
	}

	m.logger.Warn().Stringer("slot", slot).
		Uint64("last_self_commitment_epoch", uint64(last)).
		Uint64("threshold_epochs", m.cfg.NoCommitmentsEpochThreshold).
		Msg("own commitment has not appeared on-chain for too many epochs, node may be eclipsed")
	metricCommitmentAlerts.Inc()
	return true
}
