package chain

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/whitespur/cardano-sl/internal/core"
)

// MemStore is an in-memory chain store.
//
// It implements Writer and is safe for concurrent use. Tests use it to
// build arbitrary chain shapes, including inconsistent ones via Forget.
type MemStore struct {
	mu     sync.RWMutex
	blocks map[common.Hash]*core.MainBlock
	tip    common.Hash
}

// NewMemStore creates an empty in-memory chain store.
func NewMemStore() *MemStore {
	return &MemStore{
		blocks: make(map[common.Hash]*core.MainBlock),
	}
}

// Append adopts a block as the new tip.
func (s *MemStore) Append(_ context.Context, b *core.MainBlock) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blocks[b.Header.Hash] = b
	s.tip = b.Header.Hash
	return nil
}

// Forget drops a stored block without touching the tip pointer. It exists
// to simulate a storage inconsistency: a header whose parent reference
// dangles.
func (s *MemStore) Forget(hash common.Hash) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blocks, hash)
}

// GetHeader returns the header of the block with the given hash.
func (s *MemStore) GetHeader(_ context.Context, hash common.Hash) (*core.BlockHeader, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blocks[hash]
	if !ok {
		return nil, ErrNotFound
	}
	hdr := b.Header
	return &hdr, nil
}

// TipHeader returns the header of the current tip.
func (s *MemStore) TipHeader(_ context.Context) (*core.BlockHeader, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blocks[s.tip]
	if !ok {
		return nil, ErrEmptyChain
	}
	hdr := b.Header
	return &hdr, nil
}

// LoadRecentBlocks walks back from the tip, most-recent first.
func (s *MemStore) LoadRecentBlocks(_ context.Context, depth uint) []LoadResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]LoadResult, 0, depth)
	next := s.tip
	for uint(len(results)) < depth {
		if next == core.GenesisParentHash {
			break
		}
		b, ok := s.blocks[next]
		if !ok {
			results = append(results, LoadResult{Err: ErrNotFound})
			break
		}
		results = append(results, LoadResult{Block: b})
		next = b.Header.ParentHash
	}
	return results
}
