package testutils

import (
	"context"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/whitespur/cardano-sl/internal/chain"
	"github.com/whitespur/cardano-sl/internal/core"
)

// SomeStakeholder returns a distinct stakeholder id for the given tag.
func SomeStakeholder(tag byte) core.StakeholderID {
	var h common.Hash
	for i := range h {
		h[i] = tag
	}
	return core.StakeholderID(h)
}

// FixedIdentity is an identity.Provider with a preset stakeholder id.
type FixedIdentity struct {
	ID core.StakeholderID
}

// PublicKey returns a placeholder key matching the id.
func (f FixedIdentity) PublicKey() core.PublicKey {
	return core.PublicKey(common.Hash(f.ID).Bytes())
}

// StakeholderID returns the preset id.
func (f FixedIdentity) StakeholderID() core.StakeholderID {
	return f.ID
}

// RecordingTipRequester counts RequestTipFromAllPeers calls.
type RecordingTipRequester struct {
	calls atomic.Int64
}

// RequestTipFromAllPeers implements network.TipRequester.
func (r *RecordingTipRequester) RequestTipFromAllPeers() {
	r.calls.Add(1)
}

// Calls returns how many tip requests were recorded.
func (r *RecordingTipRequester) Calls() int {
	return int(r.calls.Load())
}

// ChainBuilder assembles a linear chain of main blocks for tests. Hashes
// are deterministic, parents link each block to the one added before it,
// and the first block is genesis-rooted.
type ChainBuilder struct {
	slotsPerEpoch uint64
	blocks        []*core.MainBlock
}

// NewChainBuilder creates a builder for the given epoch length.
func NewChainBuilder(slotsPerEpoch uint64) *ChainBuilder {
	return &ChainBuilder{slotsPerEpoch: slotsPerEpoch}
}

// Add appends a block with no SSC payload at the given flattened slot.
func (b *ChainBuilder) Add(producer core.StakeholderID, flatSlot uint64) *ChainBuilder {
	return b.AddWithPayload(producer, flatSlot, nil)
}

// AddWithPayload appends a block carrying the given SSC payload.
func (b *ChainBuilder) AddWithPayload(producer core.StakeholderID, flatSlot uint64, payload core.SscPayload) *ChainBuilder {
	parent := core.GenesisParentHash
	if n := len(b.blocks); n > 0 {
		parent = b.blocks[n-1].Header.Hash
	}
	b.blocks = append(b.blocks, &core.MainBlock{
		Header: core.BlockHeader{
			Hash:       common.BigToHash(big.NewInt(int64(len(b.blocks) + 1))),
			ParentHash: parent,
			Producer:   producer,
			Slot:       core.UnflattenSlotID(core.FlatSlotID(flatSlot), b.slotsPerEpoch),
		},
		Ssc: payload,
	})
	return b
}

// Blocks returns the assembled chain, oldest first.
func (b *ChainBuilder) Blocks() []*core.MainBlock {
	return b.blocks
}

// Store writes the chain into a fresh in-memory store, tip last.
func (b *ChainBuilder) Store() *chain.MemStore {
	s := chain.NewMemStore()
	for _, blk := range b.blocks {
		_ = s.Append(context.Background(), blk)
	}
	return s
}

// CommitmentFrom builds a commitments payload containing one entry for the
// given stakeholder.
func CommitmentFrom(id core.StakeholderID) core.CommitmentsPayload {
	return core.CommitmentsPayload{
		Commitments: map[core.StakeholderID]core.Commitment{
			id: core.Commitment{0xc0},
		},
	}
}
