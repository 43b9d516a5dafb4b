package chain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/whitespur/cardano-sl/internal/core"
)

// SSC payload kind tags used in stored records.
const (
	payloadNone         = ""
	payloadCommitments  = "commitments"
	payloadOpenings     = "openings"
	payloadShares       = "shares"
	payloadCertificates = "certificates"
)

// storedBlock is the JSON record persisted per block. The SSC payload union
// is flattened into a kind tag plus a single entries map; every payload
// shape is a map keyed by stakeholder id.
type storedBlock struct {
	Hash        common.Hash       `json:"hash"`
	ParentHash  common.Hash       `json:"parentHash"`
	Producer    common.Hash       `json:"producer"`
	Epoch       uint64            `json:"epoch"`
	Slot        uint64            `json:"slot"`
	PayloadKind string            `json:"payloadKind,omitempty"`
	Entries     map[string][]byte `json:"entries,omitempty"`
}

func newStoredBlock(b *core.MainBlock) storedBlock {
	rec := storedBlock{
		Hash:       b.Header.Hash,
		ParentHash: b.Header.ParentHash,
		Producer:   common.Hash(b.Header.Producer),
		Epoch:      uint64(b.Header.Slot.Epoch),
		Slot:       uint64(b.Header.Slot.Slot),
	}
	switch p := b.Ssc.(type) {
	case nil:
		rec.PayloadKind = payloadNone
	case core.CommitmentsPayload:
		rec.PayloadKind = payloadCommitments
		rec.Entries = make(map[string][]byte, len(p.Commitments))
		for id, c := range p.Commitments {
			rec.Entries[id.Hex()] = c
		}
	case core.OpeningsPayload:
		rec.PayloadKind = payloadOpenings
		rec.Entries = encodeEntries(p.Openings)
	case core.SharesPayload:
		rec.PayloadKind = payloadShares
		rec.Entries = encodeEntries(p.Shares)
	case core.CertificatesPayload:
		rec.PayloadKind = payloadCertificates
		rec.Entries = encodeEntries(p.Certificates)
	}
	return rec
}

func (rec storedBlock) toBlock() (*core.MainBlock, error) {
	b := &core.MainBlock{
		Header: core.BlockHeader{
			Hash:       rec.Hash,
			ParentHash: rec.ParentHash,
			Producer:   core.StakeholderID(rec.Producer),
			Slot: core.SlotID{
				Epoch: core.EpochIndex(rec.Epoch),
				Slot:  core.LocalSlotIndex(rec.Slot),
			},
		},
	}
	switch rec.PayloadKind {
	case payloadNone:
	case payloadCommitments:
		commitments := make(map[core.StakeholderID]core.Commitment, len(rec.Entries))
		for hex, c := range rec.Entries {
			commitments[core.StakeholderID(common.HexToHash(hex))] = c
		}
		b.Ssc = core.CommitmentsPayload{Commitments: commitments}
	case payloadOpenings:
		b.Ssc = core.OpeningsPayload{Openings: decodeEntries(rec.Entries)}
	case payloadShares:
		b.Ssc = core.SharesPayload{Shares: decodeEntries(rec.Entries)}
	case payloadCertificates:
		b.Ssc = core.CertificatesPayload{Certificates: decodeEntries(rec.Entries)}
	default:
		return nil, fmt.Errorf("unknown payload kind %q in block %s", rec.PayloadKind, rec.Hash.Hex())
	}
	return b, nil
}

func encodeEntries(m map[core.StakeholderID][]byte) map[string][]byte {
	out := make(map[string][]byte, len(m))
	for id, v := range m {
		out[id.Hex()] = v
	}
	return out
}

func decodeEntries(m map[string][]byte) map[core.StakeholderID][]byte {
	out := make(map[core.StakeholderID][]byte, len(m))
	for hex, v := range m {
		out[core.StakeholderID(common.HexToHash(hex))] = v
	}
	return out
}
