// Package slotting provides the slot clock: a periodic scheduler that fires
// subscriber callbacks once per slot, in non-decreasing slot order.
package slotting

import (
	"time"

	"github.com/whitespur/cardano-sl/internal/core"
)

// Schedule fixes the slot timing of a network: when slot 0/0 started, how
// long a slot lasts, and how many slots an epoch has. All values are
// read-only after construction.
type Schedule struct {
	GenesisTime   time.Time
	SlotDuration  time.Duration
	SlotsPerEpoch uint64
}

// SlotAt returns the slot that contains the given instant. Instants before
// genesis map to slot 0/0.
func (s Schedule) SlotAt(t time.Time) core.SlotID {
	if !t.After(s.GenesisTime) {
		return core.SlotID{}
	}
	flat := core.FlatSlotID(t.Sub(s.GenesisTime) / s.SlotDuration)
	return core.UnflattenSlotID(flat, s.SlotsPerEpoch)
}

// StartOf returns the instant the given flattened slot begins.
func (s Schedule) StartOf(flat core.FlatSlotID) time.Time {
	return s.GenesisTime.Add(time.Duration(flat) * s.SlotDuration)
}
