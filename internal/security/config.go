// Package security implements the node's eclipse-attack detection: periodic
// slot-synchronized monitors that notice when peers are withholding blocks
// or when the node's own commitments stop appearing on-chain.
package security

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Config holds the detection thresholds and chain parameters. All values
// are fixed per network configuration and read-only at runtime.
type Config struct {
	// SlotsPerEpoch is the number of slots in one epoch.
	SlotsPerEpoch uint64 `validate:"required,gt=0"`

	// NoBlocksSlotThreshold is how many slots the recent chain may consist
	// solely of self-produced blocks before the node considers itself
	// eclipsed.
	NoBlocksSlotThreshold uint64 `validate:"required,gt=0"`

	// NoCommitmentsEpochThreshold is how many epochs may pass without the
	// node's own commitment appearing on-chain before a warning is raised.
	NoCommitmentsEpochThreshold uint64 `validate:"required,gt=0"`

	// ChainSecurityDepth is how many recent blocks the commitment monitor
	// loads per check. It bounds the scan window, matching the depth beyond
	// which the chain is considered stable.
	ChainSecurityDepth uint `validate:"required,gt=0"`
}

// DefaultConfig returns mainnet-like parameters.
func DefaultConfig() Config {
	return Config{
		SlotsPerEpoch:               21600,
		NoBlocksSlotThreshold:       18,
		NoCommitmentsEpochThreshold: 3,
		ChainSecurityDepth:          2160,
	}
}

// Validate checks the configuration for completeness and consistency.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid security config: %w", err)
	}
	return nil
}
