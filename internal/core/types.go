// Package core defines the basic chain types shared by the health-monitoring
// subsystem: slot identifiers and their flattened ordering, block headers,
// main blocks and their shared-seed-computation (SSC) payloads.
//
// Types in this package are plain values. They carry no behavior beyond
// arithmetic and identity; everything stateful lives in the packages that
// consume them.
package core

import "fmt"

// EpochIndex identifies an epoch. Epochs are numbered from zero and only
// ever grow.
type EpochIndex uint64

// LocalSlotIndex identifies a slot within its epoch, in [0, slotsPerEpoch).
type LocalSlotIndex uint64

// FlatSlotID is a slot identifier flattened onto a single monotone axis,
// epoch*slotsPerEpoch + slotInEpoch. Two slots compare in chain time by
// comparing their flattened forms.
type FlatSlotID uint64

// SlotID identifies a slot as an (epoch, slot-in-epoch) pair. It is
// immutable once delivered by the slot clock.
type SlotID struct {
	Epoch EpochIndex
	Slot  LocalSlotIndex
}

// Flatten maps the slot onto the single monotone slot axis for the given
// epoch length.
func (s SlotID) Flatten(slotsPerEpoch uint64) FlatSlotID {
	return FlatSlotID(uint64(s.Epoch)*slotsPerEpoch + uint64(s.Slot))
}

// UnflattenSlotID is the inverse of Flatten for the given epoch length.
func UnflattenSlotID(flat FlatSlotID, slotsPerEpoch uint64) SlotID {
	return SlotID{
		Epoch: EpochIndex(uint64(flat) / slotsPerEpoch),
		Slot:  LocalSlotIndex(uint64(flat) % slotsPerEpoch),
	}
}

// Before reports whether s precedes other in chain time for the given
// epoch length.
func (s SlotID) Before(other SlotID, slotsPerEpoch uint64) bool {
	return s.Flatten(slotsPerEpoch) < other.Flatten(slotsPerEpoch)
}

// String renders the slot as "epoch/slot", e.g. "14/3077".
func (s SlotID) String() string {
	return fmt.Sprintf("%d/%d", s.Epoch, s.Slot)
}
