package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"

	"github.com/cloudx-io/auctionledger/core"
)

// snapshot is the on-disk shape of the store state. CBOR keeps the encoding
// compact and stable across fields with no schema migration machinery.
type snapshot struct {
	Auctions map[uint64]core.AuctionRecord `json:"auctions"`
	ByOwner  map[core.Principal][]uint64   `json:"by_owner"`
	NextID   uint64                        `json:"next_id"`
}

// SaveSnapshot writes the full store state to path. The write is atomic:
// the snapshot goes to a temp file in the same directory and is renamed
// over the target, so a crash mid-write never corrupts the previous
// snapshot.
func (s *MemoryStore) SaveSnapshot(path string) error {
	s.mu.RLock()
	snap := snapshot{
		Auctions: make(map[uint64]core.AuctionRecord, len(s.auctions)),
		ByOwner:  make(map[core.Principal][]uint64, len(s.byOwner)),
		NextID:   s.nextID,
	}
	for id, rec := range s.auctions {
		snap.Auctions[id] = rec
	}
	for owner, ids := range s.byOwner {
		cp := make([]uint64, len(ids))
		copy(cp, ids)
		snap.ByOwner[owner] = cp
	}
	s.mu.RUnlock()

	data, err := cbor.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create snapshot temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a snapshot from path into a fresh store. A missing
// file is not an error; it yields an empty store so first boot needs no
// special casing.
func LoadSnapshot(path string) (*MemoryStore, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewMemoryStore(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap snapshot
	if err := cbor.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	s := NewMemoryStore()
	if snap.Auctions != nil {
		s.auctions = snap.Auctions
	}
	if snap.ByOwner != nil {
		s.byOwner = snap.ByOwner
	}
	s.nextID = snap.NextID
	return s, nil
}
