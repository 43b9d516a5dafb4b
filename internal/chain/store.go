package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/whitespur/cardano-sl/internal/core"
)

var tipKey = []byte("chain/tip")

func blockKey(hash common.Hash) []byte {
	return append([]byte("chain/block/"), hash.Bytes()...)
}

// Store is a Badger-backed persistent chain store implementing Writer.
//
// Blocks are stored as JSON records keyed by hash, with a single tip
// pointer. Badger serves concurrent readers without external locking, which
// is all the monitors require.
type Store struct {
	logger zerolog.Logger
	db     *badger.DB
}

// Open opens (or creates) a chain store in the given directory.
func Open(logger zerolog.Logger, dir string) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open chain db at %s: %w", dir, err)
	}
	return &Store{
		logger: logger.With().Str("component", "chain-store").Logger(),
		db:     db,
	}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append adopts a block as the new tip.
func (s *Store) Append(_ context.Context, b *core.MainBlock) error {
	raw, err := json.Marshal(newStoredBlock(b))
	if err != nil {
		return fmt.Errorf("encode block %s: %w", b.Header.Hash.Hex(), err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(blockKey(b.Header.Hash), raw); err != nil {
			return err
		}
		return txn.Set(tipKey, b.Header.Hash.Bytes())
	})
	if err != nil {
		return fmt.Errorf("append block %s: %w", b.Header.Hash.Hex(), err)
	}
	return nil
}

// GetHeader returns the header of the block with the given hash.
func (s *Store) GetHeader(ctx context.Context, hash common.Hash) (*core.BlockHeader, error) {
	b, err := s.getBlock(hash)
	if err != nil {
		return nil, err
	}
	hdr := b.Header
	return &hdr, nil
}

// TipHeader returns the header of the current tip.
func (s *Store) TipHeader(ctx context.Context) (*core.BlockHeader, error) {
	var tip common.Hash
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(tipKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			tip = common.BytesToHash(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrEmptyChain
	}
	if err != nil {
		return nil, fmt.Errorf("read tip pointer: %w", err)
	}
	return s.GetHeader(ctx, tip)
}

// LoadRecentBlocks walks back from the tip, most-recent first.
func (s *Store) LoadRecentBlocks(ctx context.Context, depth uint) []LoadResult {
	tip, err := s.TipHeader(ctx)
	if errors.Is(err, ErrEmptyChain) {
		return nil
	}
	if err != nil {
		return []LoadResult{{Err: err}}
	}

	results := make([]LoadResult, 0, depth)
	next := tip.Hash
	for uint(len(results)) < depth {
		if next == core.GenesisParentHash {
			break
		}
		b, err := s.getBlock(next)
		if err != nil {
			results = append(results, LoadResult{Err: err})
			break
		}
		results = append(results, LoadResult{Block: b})
		next = b.Header.ParentHash
	}
	return results
}

func (s *Store) getBlock(hash common.Hash) (*core.MainBlock, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(blockKey(hash))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read block %s: %w", hash.Hex(), err)
	}

	var rec storedBlock
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode block %s: %w", hash.Hex(), err)
	}
	return rec.toBlock()
}
