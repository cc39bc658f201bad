// Package store provides the registry's durable state: an in-memory
// implementation of the core store interface plus CBOR snapshots so a server
// restart keeps every auction record.
package store

import (
	"sync"

	"github.com/cloudx-io/auctionledger/core"
)

// MemoryStore keeps all auction records and per-owner id lists in maps. The
// registry serializes its own calls, but the store carries its own lock so
// snapshots can run alongside serving.
type MemoryStore struct {
	mu       sync.RWMutex
	auctions map[uint64]core.AuctionRecord
	byOwner  map[core.Principal][]uint64
	nextID   uint64
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		auctions: make(map[uint64]core.AuctionRecord),
		byOwner:  make(map[core.Principal][]uint64),
	}
}

// GetAuction returns the record stored under id, if any.
func (s *MemoryStore) GetAuction(id uint64) (core.AuctionRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.auctions[id]
	return rec, ok
}

// PutAuction stores or replaces the record under rec.ID.
func (s *MemoryStore) PutAuction(rec core.AuctionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auctions[rec.ID] = rec
}

// AppendOwnerAuction appends id to the owner's creation-ordered list.
func (s *MemoryStore) AppendOwnerAuction(owner core.Principal, id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byOwner[owner] = append(s.byOwner[owner], id)
}

// OwnerAuctions returns the owner's auction ids in insertion order.
func (s *MemoryStore) OwnerAuctions(owner core.Principal) []uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byOwner[owner]
}

// NextAuctionID allocates the next registry-wide identifier.
func (s *MemoryStore) NextAuctionID() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	return id
}

var _ core.Store = (*MemoryStore)(nil)
