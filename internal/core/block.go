package core

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// GenesisParentHash is the distinguished parent hash carried by the first
// block of the chain, meaning "no parent".
var GenesisParentHash = common.Hash{}

// PublicKey is an opaque producer/leader public key in serialized form.
type PublicKey []byte

// StakeholderID identifies a consensus participant. It is derived from the
// participant's public key (see StakeholderIDFromKey) and is what block
// headers and SSC payloads reference.
type StakeholderID common.Hash

// StakeholderIDFromKey derives the participant id for a public key.
func StakeholderIDFromKey(pub PublicKey) StakeholderID {
	return StakeholderID(crypto.Keccak256Hash(pub))
}

// Hex returns the id as a 0x-prefixed hex string.
func (id StakeholderID) Hex() string {
	return common.Hash(id).Hex()
}

// BlockHeader is the header of an adopted main block as seen by the
// monitoring subsystem. Monitors hold headers only transiently during
// traversal and never mutate them.
type BlockHeader struct {
	// Hash identifies the block.
	Hash common.Hash

	// ParentHash is the hash of the preceding block, or GenesisParentHash
	// for the first block of the chain.
	ParentHash common.Hash

	// Producer is the stakeholder that produced (led) the block.
	Producer StakeholderID

	// Slot is the slot the block was produced in.
	Slot SlotID
}

// IsGenesisRooted reports whether the header has no parent.
func (h *BlockHeader) IsGenesisRooted() bool {
	return h.ParentHash == GenesisParentHash
}

// Commitment is an opaque shared-seed commitment submitted by a stakeholder.
type Commitment []byte

// SscPayload is the shared-seed-computation payload carried by a main block.
// It is a closed union: exactly one of the concrete payload shapes below.
// Only CommitmentsPayload is meaningful to the commitment-staleness monitor;
// every other shape carries no commitments and is treated uniformly.
type SscPayload interface {
	isSscPayload()
}

// CommitmentsPayload carries the commitments submitted during the
// commitment phase, keyed by the submitting stakeholder.
type CommitmentsPayload struct {
	Commitments map[StakeholderID]Commitment
}

// OpeningsPayload carries commitment openings. Opaque to the monitors.
type OpeningsPayload struct {
	Openings map[StakeholderID][]byte
}

// SharesPayload carries decrypted secret shares. Opaque to the monitors.
type SharesPayload struct {
	Shares map[StakeholderID][]byte
}

// CertificatesPayload carries VSS certificates only. Opaque to the monitors.
type CertificatesPayload struct {
	Certificates map[StakeholderID][]byte
}

func (CommitmentsPayload) isSscPayload()  {}
func (OpeningsPayload) isSscPayload()     {}
func (SharesPayload) isSscPayload()       {}
func (CertificatesPayload) isSscPayload() {}

// HasCommitmentFrom reports whether the payload is the commitments shape and
// contains an entry for the given stakeholder.
func HasCommitmentFrom(p SscPayload, id StakeholderID) bool {
	cp, ok := p.(CommitmentsPayload)
	if !ok {
		return false
	}
	_, ok = cp.Commitments[id]
	return ok
}

// MainBlock is a full adopted block: its header plus the SSC payload.
// Ssc is nil for consensus variants that carry no SSC payload at all.
type MainBlock struct {
	Header BlockHeader
	Ssc    SscPayload
}
