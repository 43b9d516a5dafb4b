package slotting_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/whitespur/cardano-sl/internal/core"
	"github.com/whitespur/cardano-sl/internal/slotting"
)

// TestScheduleSlotAt verifies instant-to-slot mapping around genesis and
// across epoch boundaries.
func TestScheduleSlotAt(t *testing.T) {
	genesis := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sched := slotting.Schedule{
		GenesisTime:   genesis,
		SlotDuration:  20 * time.Second,
		SlotsPerEpoch: 10,
	}

	require.Equal(t, core.SlotID{}, sched.SlotAt(genesis.Add(-time.Hour)),
		"instants before genesis should map to slot 0/0")
	require.Equal(t, core.SlotID{}, sched.SlotAt(genesis), "genesis itself is slot 0/0")
	require.Equal(t, core.SlotID{Epoch: 0, Slot: 1}, sched.SlotAt(genesis.Add(20*time.Second)))
	require.Equal(t, core.SlotID{Epoch: 1, Slot: 2},
		sched.SlotAt(genesis.Add(12*20*time.Second+5*time.Second)),
		"mid-slot instants belong to the running slot")
}

// TestScheduleStartOf verifies StartOf is consistent with SlotAt.
func TestScheduleStartOf(t *testing.T) {
	sched := slotting.Schedule{
		GenesisTime:   time.Unix(0, 0),
		SlotDuration:  time.Second,
		SlotsPerEpoch: 5,
	}

	for flat := core.FlatSlotID(0); flat < 12; flat++ {
		start := sched.StartOf(flat)
		require.Equal(t, core.UnflattenSlotID(flat, 5), sched.SlotAt(start),
			"a slot should contain its own start instant")
	}
}
