// Package identity exposes the local node's consensus identity: its public
// key and the stakeholder id derived from it.
package identity

import (
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/whitespur/cardano-sl/internal/core"
)

// Provider answers who the local node is. Implementations are immutable
// after construction and safe for concurrent use.
type Provider interface {
	// PublicKey returns the node's own producer public key.
	PublicKey() core.PublicKey

	// StakeholderID returns the participant id derived from the key.
	StakeholderID() core.StakeholderID
}

// Local is a Provider backed by an in-memory public key.
type Local struct {
	pub core.PublicKey
	id  core.StakeholderID
}

// NewLocal wraps an existing public key.
func NewLocal(pub core.PublicKey) *Local {
	return &Local{
		pub: pub,
		id:  core.StakeholderIDFromKey(pub),
	}
}

// Generate creates a fresh identity. Intended for local runs and tests;
// production deployments load keys from the node's keystore.
func Generate() (*Local, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return NewLocal(crypto.FromECDSAPub(&key.PublicKey)), nil
}

// PublicKey returns the node's own producer public key.
func (l *Local) PublicKey() core.PublicKey {
	return l.pub
}

// StakeholderID returns the participant id derived from the key.
func (l *Local) StakeholderID() core.StakeholderID {
	return l.id
}
