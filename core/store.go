package core

// Store is the durable registry state: the auction mapping, the per-owner
// id lists, and the identifier counter. The registry is the sole writer;
// implementations only need to be safe for the single-caller access pattern
// the registry's own serialization guarantees. The interface exists so tests
// can substitute an in-memory fake and so persistence stays outside the
// state machine.
type Store interface {
	// GetAuction returns the record stored under id, if any.
	GetAuction(id uint64) (AuctionRecord, bool)

	// PutAuction stores or replaces the record under rec.ID.
	PutAuction(rec AuctionRecord)

	// AppendOwnerAuction appends id to the owner's creation-ordered list.
	AppendOwnerAuction(owner Principal, id uint64)

	// OwnerAuctions returns the owner's auction ids in insertion order.
	// The caller must not mutate the returned slice.
	OwnerAuctions(owner Principal) []uint64

	// NextAuctionID allocates the next registry-wide identifier. Ids are
	// assigned 0, 1, 2, ... across all owners and never reused.
	NextAuctionID() uint64
}
