// Package chain provides read access to the locally adopted block chain.
//
// The monitoring subsystem consumes the Reader interface only. Two
// implementations are provided: MemStore, an in-memory chain used in tests
// and lightweight wiring, and Store, a Badger-backed persistent store.
package chain

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/whitespur/cardano-sl/internal/core"
)

// ErrNotFound is returned when a block referenced by hash is not present in
// local storage.
var ErrNotFound = errors.New("block not found")

// ErrEmptyChain is returned by TipHeader when no block has been adopted yet.
var ErrEmptyChain = errors.New("chain is empty")

// LoadResult is one element of a recent-blocks window: either a loaded block
// or the error that prevented loading it.
type LoadResult struct {
	Block *core.MainBlock
	Err   error
}

// Reader is a read-only view over locally stored blocks. Implementations
// must support concurrent readers without external locking.
type Reader interface {
	// GetHeader returns the header of the block with the given hash, or
	// ErrNotFound if the block is not stored locally.
	GetHeader(ctx context.Context, hash common.Hash) (*core.BlockHeader, error)

	// TipHeader returns the header of the current chain tip, or
	// ErrEmptyChain if nothing has been adopted.
	TipHeader(ctx context.Context) (*core.BlockHeader, error)

	// LoadRecentBlocks loads up to depth blocks walking back from the tip,
	// ordered most-recent first. A block that cannot be loaded yields a
	// LoadResult carrying the error; since its parent is then unknown, the
	// walk ends there.
	LoadRecentBlocks(ctx context.Context, depth uint) []LoadResult
}

// Writer extends Reader with chain growth. Only the block-import path uses
// it; the monitors never do.
type Writer interface {
	Reader

	// Append adopts a block as the new tip.
	Append(ctx context.Context, b *core.MainBlock) error
}
