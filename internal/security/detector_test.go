package security_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"github.com/whitespur/cardano-sl/internal/chain"
	"github.com/whitespur/cardano-sl/internal/core"
	"github.com/whitespur/cardano-sl/internal/security"
	"github.com/whitespur/cardano-sl/internal/slotting"
	"github.com/whitespur/cardano-sl/internal/testutils"
)

// recordingClock captures slot-clock subscriptions so tests can drive the
// callbacks directly.
type recordingClock struct {
	extraDelays []bool
	callbacks   []slotting.Callback
}

func (c *recordingClock) OnEverySlot(extraDelay bool, cb slotting.Callback) {
	c.extraDelays = append(c.extraDelays, extraDelay)
	c.callbacks = append(c.callbacks, cb)
}

func (c *recordingClock) fire(slot core.SlotID) {
	for _, cb := range c.callbacks {
		cb(context.Background(), slot)
	}
}

// faultyReader panics on every access, standing in for a badly broken
// storage layer.
type faultyReader struct{}

func (faultyReader) GetHeader(context.Context, common.Hash) (*core.BlockHeader, error) {
	panic("storage gone")
}

func (faultyReader) TipHeader(context.Context) (*core.BlockHeader, error) {
	panic("storage gone")
}

func (faultyReader) LoadRecentBlocks(context.Context, uint) []chain.LoadResult {
	panic("storage gone")
}

func newDetector(t *testing.T, variant security.ConsensusVariant, reader chain.Reader, net *testutils.RecordingTipRequester) (*security.Detector, *recordingClock) {
	t.Helper()

	clk := &recordingClock{}
	d, err := security.NewDetector(testutils.Logger(t), testConfig(), variant, clk,
		reader, testutils.FixedIdentity{ID: testutils.SomeStakeholder(0x01)}, net)
	require.NoError(t, err, "detector construction should succeed")
	return d, clk
}

// TestDetectorSelectsMonitorsByVariant verifies the variant match decides
// which monitors run.
func TestDetectorSelectsMonitorsByVariant(t *testing.T) {
	store := chain.NewMemStore()

	d, _ := newDetector(t, security.VariantOuroboros, store, &testutils.RecordingTipRequester{})
	require.Len(t, d.Monitors(), 2, "the commitment-based variant runs both monitors")
	require.Equal(t, "block-staleness", d.Monitors()[0].Name())
	require.Equal(t, "commitment-staleness", d.Monitors()[1].Name())

	d, _ = newDetector(t, security.VariantOuroborosBFT, store, &testutils.RecordingTipRequester{})
	require.Len(t, d.Monitors(), 1, "OBFT has no commitment scheme to track")
	require.Equal(t, "block-staleness", d.Monitors()[0].Name())
}

// TestDetectorStartSubscribesWithExtraDelay verifies every monitor is
// registered on the clock with the extra-delay flag set.
func TestDetectorStartSubscribesWithExtraDelay(t *testing.T) {
	d, clk := newDetector(t, security.VariantOuroboros, chain.NewMemStore(), &testutils.RecordingTipRequester{})

	d.Start()
	require.Len(t, clk.callbacks, 2, "each monitor should hold one subscription")
	for _, extra := range clk.extraDelays {
		require.True(t, extra, "monitors should yield the slot boundary to other work")
	}
}

// TestDetectorEndToEndEclipse drives a started detector through a slot tick
// over a purely self-produced chain and expects the corrective broadcast.
func TestDetectorEndToEndEclipse(t *testing.T) {
	us := testutils.SomeStakeholder(0x01)
	builder := testutils.NewChainBuilder(slotsPerEpoch)
	for flat := uint64(9); flat <= 20; flat++ {
		builder.Add(us, flat)
	}

	net := &testutils.RecordingTipRequester{}
	d, clk := newDetector(t, security.VariantOuroborosBFT, builder.Store(), net)

	d.Start()
	clk.fire(slotAt(20))
	require.Equal(t, 1, net.Calls(), "a detected eclipse should request tips from peers")
}

// TestDetectorIsolatesMonitorFaults verifies a monitor whose check panics
// is contained by the subscription wrapper: the tick completes and other
// subscriptions still run.
func TestDetectorIsolatesMonitorFaults(t *testing.T) {
	d, clk := newDetector(t, security.VariantOuroboros, faultyReader{}, &testutils.RecordingTipRequester{})

	d.Start()
	require.NotPanics(t, func() { clk.fire(slotAt(20)) },
		"monitor faults must never reach the clock")
}

// TestDetectorRejectsInvalidConfig verifies threshold validation happens at
// construction.
func TestDetectorRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.NoBlocksSlotThreshold = 0

	_, err := security.NewDetector(testutils.Logger(t), cfg, security.VariantOuroboros,
		&recordingClock{}, chain.NewMemStore(),
		testutils.FixedIdentity{ID: testutils.SomeStakeholder(0x01)},
		&testutils.RecordingTipRequester{})
	require.Error(t, err, "a zero threshold should be rejected")
}

// TestDetectorRejectsUnknownVariant verifies unknown variants fail fast.
func TestDetectorRejectsUnknownVariant(t *testing.T) {
	_, err := security.NewDetector(testutils.Logger(t), testConfig(), security.ConsensusVariant(99),
		&recordingClock{}, chain.NewMemStore(),
		testutils.FixedIdentity{ID: testutils.SomeStakeholder(0x01)},
		&testutils.RecordingTipRequester{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown consensus variant")
}

// TestParseVariant verifies the command-line names.
func TestParseVariant(t *testing.T) {
	v, err := security.ParseVariant("ouroboros")
	require.NoError(t, err)
	require.Equal(t, security.VariantOuroboros, v)

	v, err = security.ParseVariant("obft")
	require.NoError(t, err)
	require.Equal(t, security.VariantOuroborosBFT, v)

	_, err = security.ParseVariant("tendermint")
	require.Error(t, err, "unsupported variants should be rejected")
}

// TestConfigValidate covers the remaining required fields.
func TestConfigValidate(t *testing.T) {
	require.NoError(t, security.DefaultConfig().Validate(), "defaults should be valid")

	cfg := testConfig()
	cfg.SlotsPerEpoch = 0
	require.Error(t, cfg.Validate())

	cfg = testConfig()
	cfg.ChainSecurityDepth = 0
	require.Error(t, cfg.Validate())

	cfg = testConfig()
	cfg.NoCommitmentsEpochThreshold = 0
	require.Error(t, cfg.Validate())
}
