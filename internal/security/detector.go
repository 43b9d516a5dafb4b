package security

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/whitespur/cardano-sl/internal/chain"
	"github.com/whitespur/cardano-sl/internal/core"
	"github.com/whitespur/cardano-sl/internal/identity"
	"github.com/whitespur/cardano-sl/internal/network"
	"github.com/whitespur/cardano-sl/internal/slotting"
)

// Monitor is one periodic health check, invoked once per slot.
type Monitor interface {
	Name() string
	OnSlot(ctx context.Context, slot core.SlotID)
}

// ConsensusVariant selects which monitors apply. The commitment-staleness
// check only makes sense for the variant whose randomness comes from a
// commitment scheme.
type ConsensusVariant int

const (
	// VariantOuroboros is the original protocol with shared-seed-computation
	// commitments. Both monitors run.
	VariantOuroboros ConsensusVariant = iota

	// VariantOuroborosBFT has round-robin leaders and no commitment scheme.
	// Only the block-staleness monitor runs.
	VariantOuroborosBFT
)

// String implements fmt.Stringer.
func (v ConsensusVariant) String() string {
	switch v {
	case VariantOuroboros:
		return "ouroboros"
	case VariantOuroborosBFT:
		return "obft"
	default:
		return fmt.Sprintf("unknown(%d)", int(v))
	}
}

// ParseVariant parses a variant name as accepted on the command line.
func ParseVariant(s string) (ConsensusVariant, error) {
	switch s {
	case "ouroboros":
		return VariantOuroboros, nil
	case "obft":
		return VariantOuroborosBFT, nil
	default:
		return 0, fmt.Errorf("unknown consensus variant %q", s)
	}
}

// Detector is the composition root of the subsystem: it selects the monitor
// set for a consensus variant, owns the commitment monitor's state cell,
// and subscribes the monitors to the slot clock.
type Detector struct {
	logger   zerolog.Logger
	clock    slotting.Clock
	monitors []Monitor
	state    *EclipseState
}

// NewDetector builds a detector for the given consensus variant.
func NewDetector(
	logger zerolog.Logger,
	cfg Config,
	variant ConsensusVariant,
	clk slotting.Clock,
	reader chain.Reader,
	id identity.Provider,
	net network.TipRequester,
) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Detector{
		logger: logger.With().Str("component", "eclipse-detector").Logger(),
		clock:  clk,
		state:  NewEclipseState(),
	}

	switch variant {
	case VariantOuroboros:
		d.monitors = []Monitor{
			NewBlocksMonitor(logger, cfg, reader, id, net),
			NewCommitmentsMonitor(logger, cfg, reader, id, d.state),
		}
	case VariantOuroborosBFT:
		d.monitors = []Monitor{
			NewBlocksMonitor(logger, cfg, reader, id, net),
		}
	default:
		return nil, fmt.Errorf("unknown consensus variant %d", variant)
	}

	return d, nil
}

// Start registers every selected monitor with the slot clock. Monitors run
// with the extra-delay flag so slot-boundary work elsewhere in the node
// settles before the checks fire.
func (d *Detector) Start() {
	for _, m := range d.monitors {
		d.logger.Info().Str("monitor", m.Name()).Msg("starting monitor")
		d.clock.OnEverySlot(true, d.guard(m))
	}
}

// Monitors returns the active monitor set.
func (d *Detector) Monitors() []Monitor {
	return d.monitors
}

// guard contains a monitor's faults: a panicking check is logged and
// dropped, never propagated to the clock, so future ticks and the other
// monitor are unaffected.
func (d *Detector) guard(m Monitor) slotting.Callback {
	return func(ctx context.Context, slot core.SlotID) {
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error().Str("monitor", m.Name()).
					Stringer("slot", slot).Interface("panic", r).
					Msg("monitor check failed")
			}
		}()
		m.OnSlot(ctx, slot)
	}
}
